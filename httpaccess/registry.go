package httpaccess

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/httpaccess/logger"
)

// Slot identifies one of the two cached pooled clients.
type Slot int

const (
	// SlotProxied serves requests that go through the proxy, and all
	// requests when no proxy is configured.
	SlotProxied Slot = iota
	// SlotDirect serves requests whose host is on the bypass list.
	SlotDirect
)

func slotFor(bypassed bool) Slot {
	if bypassed {
		return SlotDirect
	}
	return SlotProxied
}

func (s Slot) String() string {
	switch s {
	case SlotProxied:
		return "proxied"
	case SlotDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// SlotState is the build state of a slot.
type SlotState int32

const (
	StateEmpty SlotState = iota
	StateBuilding
	StateReady
)

func (s SlotState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

type slotEntry struct {
	state  atomic.Int32
	client atomic.Pointer[PooledClient]
}

// BuildHook observes every client the Registry constructs.
type BuildHook func(slot Slot, pooled bool, took time.Duration)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBuildHook registers a hook called after each client build.
func WithBuildHook(h BuildHook) RegistryOption {
	return func(r *Registry) { r.onBuild = h }
}

// WithRegistryPoolRejectHook forwards h to the shared ConnectionManager.
func WithRegistryPoolRejectHook(h func()) RegistryOption {
	return func(r *Registry) { r.onReject = h }
}

// WithRegistryLogger sets the registry's logger.
func WithRegistryLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// Registry caches at most one pooled client per Slot, all bound to a single
// shared ConnectionManager. Slots are filled on first use and never evicted.
// With pooling disabled nothing is cached: every call builds a fresh
// unpooled client.
type Registry struct {
	pool PoolSettings

	mu      sync.Mutex
	manager atomic.Pointer[ConnectionManager]
	slots   [2]slotEntry

	onBuild  BuildHook
	onReject func()
	log      *logger.Logger
}

// NewRegistry creates an empty Registry for the given pool settings.
func NewRegistry(pool PoolSettings, opts ...RegistryOption) *Registry {
	if pool.Enabled {
		pool = pool.withDefaults()
	}
	r := &Registry{pool: pool}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get(componentName)
	}
	return r
}

// GetOrCreate returns the client for the bypass state. A Ready slot is
// returned as is. An Empty slot is built under the registry lock, so
// concurrent callers observe exactly one build per slot and one
// ConnectionManager overall. A failed build leaves the slot Empty.
func (r *Registry) GetOrCreate(bypassed bool) (*PooledClient, error) {
	slot := slotFor(bypassed)
	if !r.pool.Enabled {
		return r.buildUnpooled(slot)
	}

	e := &r.slots[slot]
	if c := e.client.Load(); c != nil {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c := e.client.Load(); c != nil {
		return c, nil
	}

	start := time.Now()
	e.state.Store(int32(StateBuilding))

	m := r.manager.Load()
	if m == nil {
		var err error
		var opts []ManagerOption
		if r.onReject != nil {
			opts = append(opts, WithPoolRejectHook(r.onReject))
		}
		if m, err = NewConnectionManager(r.pool, opts...); err != nil {
			e.state.Store(int32(StateEmpty))
			r.log.Error("Connection manager build failed", logger.ErrorFields("build", err))
			return nil, err
		}
		r.manager.Store(m)
	}

	c := newPooledClient(slot, m)
	e.client.Store(c)
	e.state.Store(int32(StateReady))

	took := time.Since(start)
	r.log.Info("Pooled client built", logger.Fields(
		logger.FieldSlot, slot.String(),
		"max_total", r.pool.MaxTotalConnections,
		"max_per_host", r.pool.MaxConnectionsPerHost,
	))
	if r.onBuild != nil {
		r.onBuild(slot, true, took)
	}
	return c, nil
}

func (r *Registry) buildUnpooled(slot Slot) (*PooledClient, error) {
	start := time.Now()
	m, err := NewConnectionManager(PoolSettings{})
	if err != nil {
		return nil, err
	}
	if r.onBuild != nil {
		r.onBuild(slot, false, time.Since(start))
	}
	return newPooledClient(slot, m), nil
}

// State returns the build state of slot. Without pooling every slot stays
// Empty.
func (r *Registry) State(slot Slot) SlotState {
	if slot != SlotProxied && slot != SlotDirect {
		return StateEmpty
	}
	return SlotState(r.slots[slot].state.Load())
}

// Manager returns the shared ConnectionManager, or nil before the first
// pooled build.
func (r *Registry) Manager() *ConnectionManager {
	return r.manager.Load()
}

// RegistrySnapshot is a JSON-friendly view of a Registry.
type RegistrySnapshot struct {
	Pooled bool              `json:"pooled"`
	Slots  map[string]string `json:"slots"`
	Pool   *PoolStats        `json:"pool,omitempty"`
}

// Snapshot returns the current slot states and pool statistics.
func (r *Registry) Snapshot() RegistrySnapshot {
	snap := RegistrySnapshot{
		Pooled: r.pool.Enabled,
		Slots: map[string]string{
			SlotProxied.String(): r.State(SlotProxied).String(),
			SlotDirect.String():  r.State(SlotDirect).String(),
		},
	}
	if m := r.Manager(); m != nil {
		stats := m.Stats()
		snap.Pool = &stats
	}
	return snap
}

// Close closes idle connections of the shared ConnectionManager. Cached
// clients stay usable; new connections are dialed on demand.
func (r *Registry) Close() {
	if m := r.Manager(); m != nil {
		m.CloseIdleConnections()
	}
}
