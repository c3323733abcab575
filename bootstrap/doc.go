// Package bootstrap runs an httpaccess binary through a uniform lifecycle:
// start components, run hooks, report a startup summary, then either block
// until a signal (Run) or execute a finite task (RunTask) before shutting the
// components down in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(httpaccess.NewComponent(settings))
//	err = app.RunTask(ctx, func(ctx context.Context) error { ... })
package bootstrap
