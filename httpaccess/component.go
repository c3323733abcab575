package httpaccess

import (
	"context"
	"sync"

	"github.com/kbukum/httpaccess/component"
)

// Component wraps a Service with lifecycle management.
type Component struct {
	settings *Settings
	opts     []Option

	mu  sync.RWMutex
	svc *Service
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a component; the Service is built in Start.
func NewComponent(settings *Settings, opts ...Option) *Component {
	return &Component{settings: settings, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string { return componentName }

// Start builds the Service.
func (c *Component) Start(_ context.Context) error {
	svc, err := New(c.settings, c.opts...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	return nil
}

// Stop closes idle connections.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		c.svc.Close()
		c.svc = nil
	}
	return nil
}

// Health is healthy once started.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.Service() == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe returns the component description for the startup summary.
func (c *Component) Describe() component.Description {
	d := component.Description{Name: "HTTP access", Type: "http-client"}
	if c.settings != nil {
		d.Details = c.settings.Summary()
	}
	return d
}

// Service returns the running Service, or nil before Start.
func (c *Component) Service() *Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.svc
}
