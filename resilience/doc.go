// Package resilience provides the concurrency and retry guards used around
// outbound connections.
//
// Bulkhead caps the number of concurrently held slots. A slot can cover a
// single call (Acquire) or the lifetime of a network connection
// (DialContext), which is how a connection pool's total size is enforced.
// Reclaim lets a full pool close idle connections before a dial waits:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
//		Name:          "pool",
//		MaxConcurrent: 20,
//		Reclaim:       transport.CloseIdleConnections,
//	})
//	transport.DialContext = bh.DialContext(dialer.DialContext)
//
// Retry retries transient failures with exponential backoff. The HTTP access
// layer never retries on its own; callers opt in.
package resilience
