// Package httpclient is the transport used to reach the risk service: a thin
// net/http wrapper whose cross-cutting behaviour lives in an explicit,
// ordered Middleware chain.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/errors"
)

// maxResponseBody caps how much of a response is buffered.
const maxResponseBody = 8 << 20

// Request is an outgoing call as seen by middlewares. Path is relative to
// the client's base URL.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is a fully buffered reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Handler performs a Request. A non-2xx reply yields both a Response and a
// ClientError; a failure to get any reply yields only the error.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware decorates a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h so that mws[0] is the outermost middleware.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Client issues JSON requests against a base URL.
type Client struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	middlewares []Middleware
	handler     Handler
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client timeout
// still bounds every request sent through it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMiddleware appends middlewares; the first one given runs first.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

// New creates a Client. A non-positive timeout falls back to the default.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.handler = Chain(c.send, c.middlewares...)
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get is Do with GET and no body.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post is Do with POST.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do sends body as JSON (when non-nil) and decodes a 2xx JSON reply into out
// (when non-nil). Every failure is a ClientError.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	req := &Request{
		Method: method,
		Path:   path,
		Header: http.Header{},
	}
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.New(errors.KindValidation, "request body could not be encoded").WithCause(err)
		}
		req.Body = data
	}

	resp, err := c.handler(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return errors.ErrDecode(resp.StatusCode, io.ErrUnexpectedEOF)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return errors.ErrDecode(resp.StatusCode, err)
	}
	return nil
}

// send is the innermost Handler: the actual network round trip.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, errors.ErrNetwork(err)
	}
	httpReq.Header = req.Header.Clone()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.ErrNetwork(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, errors.ErrNetwork(err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, errors.ErrHTTP(httpResp.StatusCode, serverMessage(data))
	}
	return resp, nil
}

// serverMessage extracts the "error" field of a JSON error body.
func serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
