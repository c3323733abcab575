package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/httpaccess/httpaccess"
	"github.com/kbukum/httpaccess/logger"
	"github.com/kbukum/httpaccess/resilience"
)

type fetchResult struct {
	Status int
	Valid  bool
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var (
		method  string
		retries int
	)
	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Send requests through the configured proxy and report their status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, settings, err := opts.newApp(nil)
			if err != nil {
				return err
			}
			access := httpaccess.NewComponent(settings, httpaccess.WithLogger(app.Logger.WithComponent("httpaccess")))
			if err := app.RegisterComponent(access); err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				f := &fetcher{
					svc:    access.Service(),
					log:    app.Logger,
					method: method,
					retry:  retryConfig(retries, app.Logger),
				}
				return f.fetchAll(ctx, cmd.OutOrStdout(), args)
			})
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().IntVar(&retries, "retries", 0, "extra attempts for transient failures")
	return cmd
}

func retryConfig(retries int, log *logger.Logger) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = retries + 1
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("Retrying request", logger.Fields("attempt", attempt, logger.FieldError, err.Error(), "backoff", backoff.String()))
	}
	return cfg
}

type fetcher struct {
	svc    *httpaccess.Service
	log    *logger.Logger
	method string
	retry  resilience.RetryConfig
}

// fetchAll prints one tab separated line per URL. It fails when any request
// errors or its status is not accepted.
func (f *fetcher) fetchAll(ctx context.Context, w io.Writer, urls []string) error {
	failed := 0
	for _, u := range urls {
		res, err := resilience.Retry(ctx, f.retry, func() (fetchResult, error) {
			return f.fetchOne(ctx, u)
		})
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(w, "%s\terror\t%v\n", u, err)
		case res.Valid:
			fmt.Fprintf(w, "%s\t%d\taccepted\n", u, res.Status)
		default:
			failed++
			fmt.Fprintf(w, "%s\t%d\trejected\n", u, res.Status)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(urls))
	}
	return nil
}

func (f *fetcher) fetchOne(ctx context.Context, rawURL string) (fetchResult, error) {
	m, err := httpaccess.NewMethod(ctx, f.method, rawURL)
	if err != nil {
		return fetchResult{}, err
	}
	client, err := f.svc.Client(m)
	if err != nil {
		return fetchResult{}, err
	}
	defer f.svc.Release(client, m)

	resp, err := client.Do(m)
	if err != nil {
		return fetchResult{}, err
	}
	f.log.Debug("Fetched", logger.Fields(logger.FieldURL, rawURL, logger.FieldStatus, resp.StatusCode, logger.FieldSlot, client.Slot().String()))
	return fetchResult{Status: resp.StatusCode, Valid: f.svc.Validate(resp.StatusCode)}, nil
}
