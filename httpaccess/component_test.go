package httpaccess

import (
	"context"
	"testing"

	"github.com/kbukum/httpaccess/component"
)

func TestComponent_Lifecycle(t *testing.T) {
	s := &Settings{ProxyHost: "proxy.internal", ProxyPort: 8080}
	c := NewComponent(s, WithLogger(quietLogger()))

	if c.Name() != "httpaccess" {
		t.Errorf("Name() = %q", c.Name())
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if c.Service() != nil {
		t.Error("service should not exist before Start")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.Service() == nil {
		t.Fatal("expected service after Start")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	d := c.Describe()
	if d.Type != "http-client" || d.Details != "proxy=proxy.internal:8080 bypass=0 pool=off" {
		t.Errorf("unexpected description %+v", d)
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c.Service() != nil {
		t.Error("service should be cleared by Stop")
	}
}

func TestComponent_StartFailsWithoutSettings(t *testing.T) {
	c := NewComponent(nil)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail without settings")
	}
	if d := c.Describe(); d.Details != "" {
		t.Errorf("unexpected details %q", d.Details)
	}
}

func TestComponent_InRegistry(t *testing.T) {
	reg := component.NewRegistry()
	c := NewComponent(&Settings{}, WithLogger(quietLogger()))
	if err := reg.Register(c); err != nil {
		t.Fatal(err)
	}
	if err := reg.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = reg.StopAll(context.Background()) }()

	for _, h := range reg.HealthAll(context.Background()) {
		if h.Name == componentName && h.Status != component.StatusHealthy {
			t.Errorf("registry reports %s", h.Status)
		}
	}
}
