package resilience

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// Common bulkhead errors.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead for metrics/logging.
	Name string
	// MaxConcurrent is the maximum number of slots held at once.
	MaxConcurrent int
	// MaxWait is how long to wait for a slot. 0 means fail immediately.
	MaxWait time.Duration
	// Reclaim is called once when the bulkhead is full, before waiting. It
	// may free slots held by idle holders, such as keep-alive connections.
	Reclaim func()
	// ReclaimInterval repeats Reclaim while waiting. 0 calls it only once.
	ReclaimInterval time.Duration
	// OnReject is called when a slot request is rejected.
	OnReject func(name string)
}

// Bulkhead limits how many slots may be held concurrently.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}
}

// DialFunc matches net.Dialer.DialContext and http.Transport.DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Acquire takes a slot, waiting up to MaxWait. The returned function gives
// the slot back; calling it more than once has no further effect.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	if err := b.acquire(ctx); err != nil {
		if b.config.OnReject != nil {
			b.config.OnReject(b.config.Name)
		}
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-b.sem })
	}, nil
}

// DialContext wraps dial so that every open connection holds one slot. The
// slot is released when the connection is closed or the dial fails.
func (b *Bulkhead) DialContext(dial DialFunc) DialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		release, err := b.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		conn, err := dial(ctx, network, addr)
		if err != nil {
			release()
			return nil, err
		}
		return &slotConn{Conn: conn, release: release}, nil
	}
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if b.tryAcquire() {
		return nil
	}
	if b.config.Reclaim != nil {
		b.config.Reclaim()
		if b.tryAcquire() {
			return nil
		}
	}

	if b.config.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	var reclaim <-chan time.Time
	if b.config.Reclaim != nil && b.config.ReclaimInterval > 0 {
		ticker := time.NewTicker(b.config.ReclaimInterval)
		defer ticker.Stop()
		reclaim = ticker.C
	}

	for {
		select {
		case b.sem <- struct{}{}:
			return nil
		case <-reclaim:
			b.config.Reclaim()
		case <-timer.C:
			return ErrBulkheadTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bulkhead) tryAcquire() bool {
	select {
	case b.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int {
	return len(b.sem)
}

// slotConn gives its bulkhead slot back on Close.
type slotConn struct {
	net.Conn
	release func()
}

func (c *slotConn) Close() error {
	err := c.Conn.Close()
	c.release()
	return err
}
