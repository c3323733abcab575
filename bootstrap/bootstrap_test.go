package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/httpaccess/component"
	"github.com/kbukum/httpaccess/config"
	"github.com/kbukum/httpaccess/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Type: "http-client", Details: "proxy=none"}
}

func (d *describedComponent) Routes() []component.Route {
	return []component.Route{{Method: "GET", Path: "/status", Handler: "status"}}
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func newTestApp(t *testing.T, out io.Writer) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc"}}
	app, err := NewApp(cfg,
		WithLogger(logger.NewWithWriter(io.Discard, "error", "test")),
		WithSummaryOutput(out),
		WithGracefulTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, nil)
	if app.Name != "test-svc" {
		t.Errorf("name = %q", app.Name)
	}
	if app.Version == "" {
		t.Error("expected version")
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("graceful timeout = %v", app.gracefulTimeout)
	}
}

func TestNewAppInvalidConfig(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "moon"}}
	if _, err := NewApp(cfg, WithLogger(logger.NewWithWriter(io.Discard, "error", "test"))); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	comp := &describedComponent{mockComponent: *healthy("httpaccess")}
	if err := app.RegisterComponent(comp); err != nil {
		t.Fatalf("RegisterComponent: %v", err)
	}

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		order = append(order, "configure:"+a.Name)
		return nil
	})
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := "start,configure:test-svc,ready,task,stop"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if !comp.started || !comp.stopped {
		t.Error("expected component started and stopped")
	}
	for _, s := range []string{"test-svc", "[http-client] httpaccess", "/status", "1/1 healthy"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("summary missing %q:\n%s", s, out.String())
		}
	}
}

func TestRunTaskErrorWins(t *testing.T) {
	app := newTestApp(t, nil)
	comp := healthy("c")
	comp.stopErr = errors.New("stop failed")
	app.RegisterComponent(comp)

	taskErr := errors.New("task failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); !errors.Is(err, taskErr) {
		t.Errorf("expected task error, got %v", err)
	}

	app = newTestApp(t, nil)
	comp = healthy("c")
	comp.stopErr = errors.New("stop failed")
	app.RegisterComponent(comp)
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Error("expected stop error when task succeeds")
	}
}

func TestStartupFailures(t *testing.T) {
	app := newTestApp(t, nil)
	app.RegisterComponent(&mockComponent{name: "broken", startErr: errors.New("boom")})
	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil || ran {
		t.Fatalf("expected start failure before the task, err=%v ran=%v", err, ran)
	}

	app = newTestApp(t, nil)
	comp := healthy("ok")
	app.RegisterComponent(comp)
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("wiring") })
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected configure failure")
	}
	if !comp.stopped {
		t.Error("expected started component rolled back")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t, nil)
	app.RegisterComponent(healthy("a"))
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app.RegisterComponent(&mockComponent{name: "b", health: component.Health{
		Name: "b", Status: component.StatusUnhealthy, Message: "not listening",
	}})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "b=unhealthy(not listening)") {
		t.Errorf("unexpected ready error %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t, nil)
	comp := healthy("c")
	app.RegisterComponent(comp)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !comp.stopped {
		t.Error("expected component stopped")
	}
}
