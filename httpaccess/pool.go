package httpaccess

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"github.com/kbukum/httpaccess/errors"
	"github.com/kbukum/httpaccess/resilience"
)

const (
	defaultDialTimeout = 30 * time.Second
	defaultKeepAlive   = 30 * time.Second
	// poolWaitTimeout bounds how long a dial waits for a free pool slot.
	poolWaitTimeout = 10 * time.Second
	// reclaimInterval is how often a waiting dial closes idle connections.
	reclaimInterval = 100 * time.Millisecond
)

// ManagerOption configures a ConnectionManager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	onReject func()
}

// WithPoolRejectHook registers a hook called whenever a dial is refused
// because the pool stayed full.
func WithPoolRejectHook(h func()) ManagerOption {
	return func(o *managerOptions) { o.onReject = h }
}

// ConnectionManager owns the transport and its connection pool. One
// ConnectionManager serves every pooled client of a Registry; unpooled
// clients each get their own.
type ConnectionManager struct {
	transport *http.Transport
	pool      PoolSettings
	conns     *resilience.Bulkhead
}

// PoolStats is a point-in-time view of a ConnectionManager.
type PoolStats struct {
	Pooled                bool `json:"pooled"`
	MaxTotalConnections   int  `json:"max_total_connections,omitempty"`
	MaxConnectionsPerHost int  `json:"max_connections_per_host,omitempty"`
	OpenConnections       int  `json:"open_connections"`
}

// NewConnectionManager builds a transport from the pool settings. When
// pool.Enabled is false the transport keeps Go's default sizing and the
// caller is expected to close idle connections after each exchange.
//
// A pooled dial that finds every connection in use first closes idle
// connections, to any host, and then waits for a slot. Idle connections
// are closed again while it waits.
func NewConnectionManager(pool PoolSettings, opts ...ManagerOption) (*ConnectionManager, error) {
	var o managerOptions
	for _, opt := range opts {
		opt(&o)
	}
	m := &ConnectionManager{pool: pool}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = proxyFromParams
	t.GetProxyConnectHeader = proxyConnectHeader
	dial := resilience.DialFunc(dialWithParams)

	if pool.Enabled {
		pool = pool.withDefaults()
		m.pool = pool
		t.MaxIdleConns = pool.MaxTotalConnections
		t.MaxIdleConnsPerHost = pool.MaxConnectionsPerHost
		t.MaxConnsPerHost = pool.MaxConnectionsPerHost
		cfg := resilience.BulkheadConfig{
			Name:            "httpaccess-pool",
			MaxConcurrent:   pool.MaxTotalConnections,
			MaxWait:         poolWaitTimeout,
			Reclaim:         t.CloseIdleConnections,
			ReclaimInterval: reclaimInterval,
		}
		if o.onReject != nil {
			cfg.OnReject = func(string) { o.onReject() }
		}
		m.conns = resilience.NewBulkhead(cfg)
		dial = poolExhaustedAsAppError(m.conns.DialContext(dial), pool.MaxTotalConnections)
	}
	t.DialContext = dial

	if _, err := http2.ConfigureTransports(t); err != nil {
		return nil, errors.Internal(err)
	}
	m.transport = t
	return m, nil
}

// Transport returns the underlying round tripper.
func (m *ConnectionManager) Transport() http.RoundTripper {
	return m.transport
}

// Pooled reports whether the manager enforces pool sizing.
func (m *ConnectionManager) Pooled() bool {
	return m.pool.Enabled
}

// CloseIdleConnections closes every connection not currently carrying a
// request.
func (m *ConnectionManager) CloseIdleConnections() {
	m.transport.CloseIdleConnections()
}

// Stats returns the manager's sizing and, when pooled, the number of open
// connections.
func (m *ConnectionManager) Stats() PoolStats {
	s := PoolStats{Pooled: m.pool.Enabled}
	if m.pool.Enabled {
		s.MaxTotalConnections = m.pool.MaxTotalConnections
		s.MaxConnectionsPerHost = m.pool.MaxConnectionsPerHost
	}
	if m.conns != nil {
		s.OpenConnections = m.conns.InUse()
	}
	return s
}

func proxyFromParams(req *http.Request) (*url.URL, error) {
	p, _ := paramsFrom(req.Context())
	return p.Proxy, nil
}

// proxyConnectHeader authenticates CONNECT tunnels. A tunnel cannot be
// replayed after a 407, so credentials always go on the CONNECT request.
func proxyConnectHeader(ctx context.Context, proxyURL *url.URL, target string) (http.Header, error) {
	p, ok := paramsFrom(ctx)
	if !ok {
		return nil, nil
	}
	auth, err := p.authorization()
	if err != nil || auth == "" {
		return nil, err
	}
	return http.Header{"Proxy-Authorization": {auth}}, nil
}

func dialWithParams(ctx context.Context, network, addr string) (net.Conn, error) {
	return dialerFor(ctx).DialContext(ctx, network, addr)
}

// dialerFor returns the dialer for one connection attempt, bounded by the
// request's connection timeout when it has one.
func dialerFor(ctx context.Context) *net.Dialer {
	d := &net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}
	if p, ok := paramsFrom(ctx); ok && p.ConnectionTimeout > 0 {
		d.Timeout = p.ConnectionTimeout
	}
	return d
}

func poolExhaustedAsAppError(dial resilience.DialFunc, limit int) resilience.DialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if stderrors.Is(err, resilience.ErrBulkheadFull) || stderrors.Is(err, resilience.ErrBulkheadTimeout) {
			return nil, errors.PoolExhausted(limit).WithCause(err)
		}
		return conn, err
	}
}
