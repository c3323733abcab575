package httpaccess

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sync"
	"time"

	"github.com/kbukum/httpaccess/errors"
)

// PooledClient is the long-lived half of a client: an http.Client bound to
// a ConnectionManager. It holds no per-request state.
type PooledClient struct {
	slot    Slot
	manager *ConnectionManager
	http    *http.Client
}

func newPooledClient(slot Slot, m *ConnectionManager) *PooledClient {
	return &PooledClient{
		slot:    slot,
		manager: m,
		http:    &http.Client{Transport: m.Transport()},
	}
}

// Slot returns the slot the client was built for.
func (pc *PooledClient) Slot() Slot { return pc.slot }

// Manager returns the ConnectionManager the client is bound to.
func (pc *PooledClient) Manager() *ConnectionManager { return pc.manager }

// With pairs the pooled client with the params of one acquisition.
func (pc *PooledClient) With(p Params) *Client {
	return &Client{pooled: pc, params: p, http: pc.http}
}

// Client is one acquisition: a pooled client plus the Params that apply to
// the requests sent through it. It is cheap and may be discarded after use.
type Client struct {
	pooled *PooledClient
	params Params
	http   *http.Client
}

// Do sends m.Request and records the response on m. Status codes are not
// checked; use Service.Validate.
//
// With non-preemptive params, a plain-HTTP request answered by 407 is sent
// once more with credentials if its body can be replayed. NTLM credentials
// only contribute the negotiate message: a proxy that answers it with an
// NTLM challenge leaves the exchange at 407.
//
// A positive SocketTimeout bounds each wait for response data, from the end
// of the request write to the headers and then every body read. A slow but
// steady body is never cut off.
func (c *Client) Do(m *Method) (*http.Response, error) {
	if m == nil || m.Request == nil {
		return nil, errors.InvalidInput("method", "request is required")
	}
	if err := m.prepare(c.params); err != nil {
		return nil, err
	}

	p := c.params
	if !m.DoAuthentication {
		p.Credentials = nil
	}
	req := m.Request.Clone(withParams(m.Request.Context(), p))
	viaPlainProxy := p.Proxy != nil && req.URL.Scheme == "http"

	if viaPlainProxy && p.Preemptive {
		if err := setProxyAuthorization(req, p); err != nil {
			return nil, err
		}
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusProxyAuthRequired && viaPlainProxy && !p.Preemptive &&
		p.Credentials != nil && m.replayable() {
		resp, err = c.retryWithCredentials(req, resp, p)
		if err != nil {
			return nil, err
		}
	}

	m.setResponse(resp)
	return resp, nil
}

func (c *Client) retryWithCredentials(req *http.Request, challenged *http.Response, p Params) (*http.Response, error) {
	_, _ = io.Copy(io.Discard, challenged.Body)
	_ = challenged.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Internal(err)
		}
		retry.Body = body
	}
	if err := setProxyAuthorization(retry, p); err != nil {
		return nil, err
	}

	return c.send(retry)
}

var errSocketTimeout = stderrors.New("socket timeout: no data received")

// send executes req under the acquisition's socket timeout.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	d := c.params.SocketTimeout
	if d <= 0 {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, classifyError(req, err)
		}
		return resp, nil
	}

	ctx, cancel := context.WithCancelCause(req.Context())
	w := newReadWatchdog(d, func() { cancel(errSocketTimeout) })
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { w.armForHeaders() },
	})

	resp, err := c.http.Do(req.WithContext(ctx))
	w.gotHeaders()
	if err != nil {
		if stderrors.Is(context.Cause(ctx), errSocketTimeout) {
			err = errSocketTimeout
		}
		cancel(nil)
		return nil, classifyError(req, err)
	}
	resp.Body = &watchedBody{
		ReadCloser: resp.Body,
		watchdog:   w,
		ctx:        ctx,
		cancel:     cancel,
		op:         req.Method + " " + req.URL.Redacted(),
	}
	return resp, nil
}

// readWatchdog fires when one wait for data outlasts the timeout.
type readWatchdog struct {
	timeout time.Duration
	timer   *time.Timer

	mu          sync.Mutex
	headersDone bool
}

func newReadWatchdog(timeout time.Duration, fire func()) *readWatchdog {
	t := time.AfterFunc(timeout, fire)
	t.Stop()
	return &readWatchdog{timeout: timeout, timer: t}
}

// armForHeaders starts the wait for the response headers. A server may
// answer before the request is fully written; the late call is ignored.
func (w *readWatchdog) armForHeaders() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.headersDone {
		w.timer.Reset(w.timeout)
	}
}

func (w *readWatchdog) gotHeaders() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.headersDone = true
	w.timer.Stop()
}

func (w *readWatchdog) arm()    { w.timer.Reset(w.timeout) }
func (w *readWatchdog) disarm() { w.timer.Stop() }

// watchedBody arms the watchdog for the duration of each Read, so time the
// caller spends between reads does not count.
type watchedBody struct {
	io.ReadCloser
	watchdog *readWatchdog
	ctx      context.Context
	cancel   context.CancelCauseFunc
	op       string
	once     sync.Once
}

func (b *watchedBody) Read(p []byte) (int, error) {
	b.watchdog.arm()
	n, err := b.ReadCloser.Read(p)
	b.watchdog.disarm()
	if err != nil && err != io.EOF && stderrors.Is(context.Cause(b.ctx), errSocketTimeout) {
		return n, errors.Timeout(b.op, errSocketTimeout)
	}
	return n, err
}

func (b *watchedBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		b.watchdog.disarm()
		b.cancel(nil)
	})
	return err
}

func setProxyAuthorization(req *http.Request, p Params) error {
	auth, err := p.authorization()
	if err != nil {
		return errors.Internal(err)
	}
	if auth != "" {
		req.Header.Set("Proxy-Authorization", auth)
	}
	return nil
}

func classifyError(req *http.Request, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	var netErr net.Error
	if stderrors.Is(err, errSocketTimeout) || stderrors.Is(err, context.DeadlineExceeded) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Timeout(req.Method+" "+req.URL.Redacted(), err)
	}
	return errors.ConnectionFailed(req.URL.Host, err)
}

// CloseIdleConnections closes the idle connections of the client's
// ConnectionManager.
func (c *Client) CloseIdleConnections() {
	c.pooled.manager.CloseIdleConnections()
}

// Proxy returns a copy of the proxy URL, or nil for direct connections.
func (c *Client) Proxy() *url.URL {
	if c.params.Proxy == nil {
		return nil
	}
	u := *c.params.Proxy
	return &u
}

// Credentials returns the proxy credentials, or nil.
func (c *Client) Credentials() Credentials { return c.params.Credentials }

// AuthScope returns the scope the credentials are bound to.
func (c *Client) AuthScope() AuthScope { return c.params.AuthScope }

// Params returns the acquisition's params.
func (c *Client) Params() Params { return c.params }

// Pooled reports whether the client shares a pooled ConnectionManager.
func (c *Client) Pooled() bool { return c.pooled.manager.Pooled() }

// Slot returns the slot of the underlying pooled client.
func (c *Client) Slot() Slot { return c.pooled.slot }

// Manager returns the ConnectionManager behind the client.
func (c *Client) Manager() *ConnectionManager { return c.pooled.manager }
