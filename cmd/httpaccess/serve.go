package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbukum/httpaccess/bootstrap"
	"github.com/kbukum/httpaccess/httpaccess"
	"github.com/kbukum/httpaccess/observability"
	"github.com/kbukum/httpaccess/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := newServeApp(cmd.Context(), opts, addr, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.host and server.port")
	return cmd
}

// newServeApp wires telemetry, the httpaccess component and the status
// server into an application ready to Run.
func newServeApp(ctx context.Context, opts *rootOptions, addr string, summary io.Writer) (*bootstrap.App[*appConfig], *server.Server, error) {
	app, settings, err := opts.newApp(summary)
	if err != nil {
		return nil, nil, err
	}
	if addr != "" {
		if err := applyAddr(&app.Cfg.Server, addr); err != nil {
			return nil, nil, err
		}
	}

	providers, err := observability.Setup(ctx, app.Name, app.Cfg.Observability)
	if err != nil {
		return nil, nil, fmt.Errorf("observability setup: %w", err)
	}
	app.OnStop(providers.Shutdown)

	accessOpts := []httpaccess.Option{httpaccess.WithLogger(app.Logger.WithComponent("httpaccess"))}
	srv := server.New(app.Cfg.Server, app.Logger)
	if providers.Tracer != nil && providers.Meter != nil {
		accessOpts = append(accessOpts,
			httpaccess.WithTracerProvider(providers.Tracer),
			httpaccess.WithMeterProvider(providers.Meter),
		)
		metrics, err := observability.NewServerMetrics(providers.Meter.Meter("httpaccess/server"))
		if err != nil {
			return nil, nil, err
		}
		srv.ApplyMiddleware(providers.Tracer.Tracer("httpaccess/server"), metrics)
	} else {
		srv.ApplyMiddleware(nil, nil)
	}

	access := httpaccess.NewComponent(settings, accessOpts...)
	srv.RegisterEndpoints(app.Name, app.Components.HealthAll, access.Service)

	if err := app.RegisterComponent(access); err != nil {
		return nil, nil, err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, nil, err
	}
	return app, srv, nil
}

func applyAddr(cfg *server.Config, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid --addr port %q: %w", port, err)
	}
	cfg.Host = host
	cfg.Port = p
	return cfg.Validate()
}
