package httpaccess

import (
	"context"
	"net/url"
	"time"
)

// Params are the transport settings of one acquisition. They travel with
// each request through its context; the shared transport never stores them.
type Params struct {
	// Proxy is the forward proxy, nil for a direct connection.
	Proxy *url.URL
	// Credentials authenticate against Proxy. Nil means none.
	Credentials Credentials
	// AuthScope is the proxy endpoint the credentials are bound to.
	AuthScope AuthScope
	// Preemptive sends credentials on the first request instead of waiting
	// for a 407 challenge.
	Preemptive bool
	// ContentCharset encodes string bodies.
	ContentCharset string
	// ElementCharset encodes non-ASCII header values.
	ElementCharset string
	// SocketTimeout bounds each wait for response data, not the exchange.
	SocketTimeout time.Duration
	// ConnectionTimeout bounds establishing a connection.
	ConnectionTimeout time.Duration
}

// authorization returns the Proxy-Authorization value, or "" when the
// params carry no credentials for the proxy in use.
func (p Params) authorization() (string, error) {
	if p.Credentials == nil || p.Proxy == nil {
		return "", nil
	}
	if p.AuthScope.Host != "" && !p.AuthScope.Matches(p.Proxy.Host) {
		return "", nil
	}
	return p.Credentials.Authorization()
}

type paramsKey struct{}

func withParams(ctx context.Context, p Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, p)
}

func paramsFrom(ctx context.Context) (Params, bool) {
	p, ok := ctx.Value(paramsKey{}).(Params)
	return p, ok
}
