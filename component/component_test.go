package component

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "httpaccess"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "httpaccess"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "server"}
	r.Register(c)
	if r.Get("server") != c {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestStartAllThenStopAllReverseOrder(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	for _, name := range []string{"httpaccess", "server"} {
		r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if strings.Join(started, ",") != "httpaccess,server" {
		t.Errorf("start order %v", started)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if strings.Join(stopped, ",") != "server,httpaccess" {
		t.Errorf("stop order %v", stopped)
	}
}

func TestStartAllRollsBackOnFailure(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "b", startOrder: &started, stopOrder: &stopped, startErr: fmt.Errorf("bad config")})
	r.Register(&mockComponent{name: "c", startOrder: &started, stopOrder: &stopped})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to start b") {
		t.Fatalf("unexpected error %v", err)
	}
	if strings.Join(started, ",") != "a,b" {
		t.Errorf("expected start to halt at b, got %v", started)
	}
	if strings.Join(stopped, ",") != "a" {
		t.Errorf("expected a to be rolled back, got %v", stopped)
	}

	stopped = nil
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(stopped) != 0 {
		t.Errorf("expected nothing left to stop, got %v", stopped)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("x")})
	r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("y")})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to stop a") || !strings.Contains(err.Error(), "failed to stop b") {
		t.Errorf("expected both stop errors, got %q", err.Error())
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "b", health: Health{Name: "b", Status: StatusDegraded, Message: "slow"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != StatusDegraded || results[1].Message != "slow" {
		t.Errorf("unexpected health %+v", results[1])
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{
		mockComponent: mockComponent{name: "httpaccess"},
		desc:          Description{Type: "http-client", Details: "direct"},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "httpaccess" {
		t.Errorf("expected name defaulted from component, got %q", descs[0].Name)
	}
}

type routedComponent struct {
	mockComponent
	routes []Route
}

func (rc *routedComponent) Routes() []Route { return rc.routes }

func TestRoutes(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&routedComponent{
		mockComponent: mockComponent{name: "server"},
		routes:        []Route{{Method: "GET", Path: "/status"}, {Method: "GET", Path: "/health"}},
	})

	routes := r.Routes()
	if len(routes) != 2 || routes[0].Path != "/status" {
		t.Errorf("unexpected routes %+v", routes)
	}
}
