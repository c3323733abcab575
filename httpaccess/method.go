package httpaccess

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/httpaccess/errors"
)

// maxDrainBytes caps how much of an unread body Release reads so the
// connection can be reused.
const maxDrainBytes = 64 << 10

// Method is one outbound request and, after Client.Do, its response. The
// caller owns it; the Service only adjusts it while handing out a client.
type Method struct {
	// ID correlates log lines for this request.
	ID string
	// Request is sent by Client.Do.
	Request *http.Request
	// DoAuthentication allows proxy credentials to be sent. Service.Client
	// sets it when credentials apply to this request.
	DoAuthentication bool

	body           *string
	headersEncoded bool
	mu             sync.Mutex
	response       *http.Response
	released       bool
}

// NewMethod creates a Method for method and rawURL.
func NewMethod(ctx context.Context, method, rawURL string) (*Method, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, errors.InvalidInput("url", err.Error()).WithCause(err)
	}
	return NewMethodFromRequest(req), nil
}

// NewMethodFromRequest wraps an existing request.
func NewMethodFromRequest(req *http.Request) *Method {
	return &Method{ID: uuid.NewString(), Request: req}
}

// SetStringBody sets a text body. It is encoded with the acquisition's
// content charset when the request is sent.
func (m *Method) SetStringBody(body string) {
	m.body = &body
}

// Host returns the target host without port.
func (m *Method) Host() (string, error) {
	if m == nil || m.Request == nil || m.Request.URL == nil {
		return "", fmt.Errorf("method has no request URL")
	}
	host := m.Request.URL.Hostname()
	if host == "" {
		return "", fmt.Errorf("request URL %q has no host", m.Request.URL.String())
	}
	return host, nil
}

// Response returns the response recorded by Client.Do, or nil.
func (m *Method) Response() *http.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.response
}

func (m *Method) setResponse(resp *http.Response) {
	m.mu.Lock()
	m.response = resp
	m.released = false
	m.mu.Unlock()
}

// Release drains and closes the response body. It is safe to call more than
// once and on a Method that was never sent.
func (m *Method) Release() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released || m.response == nil {
		m.released = true
		return
	}
	m.released = true
	if body := m.response.Body; body != nil {
		_, _ = io.CopyN(io.Discard, body, maxDrainBytes)
		_ = body.Close()
	}
}

// prepare applies the acquisition's charsets to the request: a pending
// string body is encoded with the content charset and non-ASCII header
// values with the element charset.
func (m *Method) prepare(p Params) error {
	req := m.Request
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if m.body != nil {
		encoded, err := encodeString(p.ContentCharset, *m.body)
		if err != nil {
			return errors.InvalidInput("body", err.Error()).WithCause(err)
		}
		req.Body = io.NopCloser(strings.NewReader(encoded))
		req.ContentLength = int64(len(encoded))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(encoded)), nil
		}
		if p.ContentCharset != "" {
			req.Header.Set("Content-Type", withCharset(req.Header.Get("Content-Type"), p.ContentCharset))
		}
		m.body = nil
	}

	if p.ElementCharset == "" || m.headersEncoded {
		return nil
	}
	m.headersEncoded = true
	for name, values := range req.Header {
		for i, v := range values {
			if isASCII(v) {
				continue
			}
			encoded, err := encodeString(p.ElementCharset, v)
			if err != nil {
				return errors.InvalidInput(name, err.Error()).WithCause(err)
			}
			values[i] = encoded
		}
	}
	return nil
}

// replayable reports whether the request body can be sent a second time.
func (m *Method) replayable() bool {
	return m.Request.Body == nil || m.Request.Body == http.NoBody || m.Request.GetBody != nil
}
