package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/httpaccess/bootstrap"
	"github.com/kbukum/httpaccess/config"
	"github.com/kbukum/httpaccess/httpaccess"
	"github.com/kbukum/httpaccess/observability"
	"github.com/kbukum/httpaccess/server"
)

const serviceName = "httpaccess"

// appConfig is the structured part of the configuration. The httpAccess.*
// keys are read separately through a PropertyStore.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config        `yaml:"server" mapstructure:"server"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
}

func (c *appConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

type rootOptions struct {
	configFile string
	envFile    string
}

func (o *rootOptions) loaderOptions() []config.LoaderOption {
	var opts []config.LoaderOption
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		opts = append(opts, config.WithEnvFile(o.envFile))
	}
	return opts
}

// newApp loads both configuration views and builds the application.
func (o *rootOptions) newApp(summary io.Writer) (*bootstrap.App[*appConfig], *httpaccess.Settings, error) {
	var cfg appConfig
	if err := config.LoadConfig(serviceName, &cfg, o.loaderOptions()...); err != nil {
		return nil, nil, err
	}
	props, err := config.LoadProperties(serviceName, o.loaderOptions()...)
	if err != nil {
		return nil, nil, err
	}

	app, err := bootstrap.NewApp(&cfg, bootstrap.WithSummaryOutput(summary))
	if err != nil {
		return nil, nil, err
	}
	settings, err := httpaccess.LoadSettings(props)
	if err != nil {
		return nil, nil, fmt.Errorf("httpAccess settings: %w", err)
	}
	return app, settings, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Managed outbound HTTP access through a forward proxy",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: search standard locations)")
	root.PersistentFlags().StringVar(&opts.envFile, "env", "", ".env file (default: search standard locations)")

	root.AddCommand(
		newFetchCmd(opts),
		newServeCmd(opts),
		newMatchCmd(),
		newVersionCmd(),
	)
	return root
}
