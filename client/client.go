// Package client provides the configured HTTP client of the pipeline:
// a pooled JSON-first client in front of the intercepting Transport
// that performs bearer attach, refresh and single retry transparently.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain"

	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024
)

// Clienter is the request surface consumers depend on.
type Clienter interface {
	Request(method, url string, body any, opts ...func(*RequestOption)) (*http.Response, error)
}

// Client is an HTTP client with request option and buffer pooling. URLs
// passed to its methods may be paths; they are resolved against the
// configured base URL.
type Client struct {
	client         *http.Client
	baseURL        string
	requestOptPool sync.Pool
	bufferPool     sync.Pool
}

// Option configures the client.
type Option func(*Client)

// WithClient sets a custom *http.Client. Install the intercepting
// Transport on it to get the full pipeline.
func WithClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTransport installs a round tripper on the client in use.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.client.Transport = rt
		}
	}
}

// WithBaseURL sets the base URL path-only request URLs resolve against.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		client: &http.Client{},
		requestOptPool: sync.Pool{
			New: func() any {
				return &RequestOption{
					header: make(map[string]string, 8),
				}
			},
		},
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RequestOption holds per-request settings.
type RequestOption struct {
	ctx      context.Context
	header   map[string]string
	response any
}

// WithContext sets the request context.
func WithContext(ctx context.Context) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.ctx = ctx
	}
}

// WithHeader merges headers into the request.
func WithHeader(header map[string]string) func(*RequestOption) {
	return func(opt *RequestOption) {
		maps.Copy(opt.header, header)
	}
}

// WithResponse sets the target the response body is decoded into. The
// body is consumed and closed when set.
func WithResponse(response any) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.response = response
	}
}

func (opt *RequestOption) reset() {
	opt.ctx = nil
	for k := range opt.header {
		delete(opt.header, k)
	}
	opt.header["Content-Type"] = ContentTypeJSON
	opt.response = nil
}

// Request sends an HTTP request. A non-nil body that is not an
// io.Reader is JSON-encoded.
func (c *Client) Request(method, url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	opt := c.getRequestOption()
	defer c.putRequestOption(opt)

	for _, o := range opts {
		o(opt)
	}

	req, err := c.createRequest(method, c.resolve(url), body)
	if err != nil {
		return nil, err
	}

	for k, v := range opt.header {
		req.Header.Set(k, v)
	}
	if opt.ctx != nil {
		req = req.WithContext(opt.ctx)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	return c.processResponse(resp, opt.response)
}

// Get performs a GET request.
func (c *Client) Get(url string, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodGet, url, nil, opts...)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPost, url, body, opts...)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPut, url, body, opts...)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodPatch, url, body, opts...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(url string, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(http.MethodDelete, url, nil, opts...)
}

// resolve prefixes path-only URLs with the base URL.
func (c *Client) resolve(url string) string {
	if c.baseURL == "" || strings.Contains(url, "://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return c.baseURL + url
}

func (c *Client) getRequestOption() *RequestOption {
	opt := c.requestOptPool.Get().(*RequestOption)
	opt.reset()
	return opt
}

func (c *Client) putRequestOption(opt *RequestOption) {
	c.requestOptPool.Put(opt)
}

func (c *Client) createRequest(method, url string, body any) (*http.Request, error) {
	switch v := body.(type) {
	case nil:
		return http.NewRequest(method, url, nil)
	case io.Reader:
		return http.NewRequest(method, url, v)
	default:
		return c.createJSONRequest(method, url, v)
	}
}

func (c *Client) createJSONRequest(method, url string, body any) (*http.Request, error) {
	buf := c.getBuffer()
	defer c.putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}

	return http.NewRequest(method, url, bytes.NewReader(buf.Bytes()))
}

func (c *Client) getBuffer() *bytes.Buffer {
	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (c *Client) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		c.bufferPool.Put(buf)
	}
}

func (c *Client) processResponse(resp *http.Response, dest any) (*http.Response, error) {
	if dest == nil {
		return resp, nil
	}

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return nil, fmt.Errorf("client: decode response: %w", err)
	}

	return resp, nil
}
