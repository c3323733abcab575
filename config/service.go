package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/httpaccess/logger"
)

var environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every httpaccess binary needs.
// The proxy and pool settings themselves are read through a PropertyStore.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults names the service httpaccess and runs in development unless
// configured otherwise.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "httpaccess"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the environment name and the logging section.
func (c *ServiceConfig) Validate() error {
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// GetServiceConfig lets types embedding ServiceConfig satisfy interfaces
// that need the base fields.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}
