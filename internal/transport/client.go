// Package transport is the JSON over HTTPS client used to talk to platform
// endpoints. It binds authentication, the per-kind header set, TLS policy and
// the connect/read timeout pair, and maps failures onto pkg/errors.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/workloadsec/aiomigrate/pkg/constants"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
)

// Client provides HTTP client functionality with authentication.
type Client struct {
	http     *http.Client
	auth     Authenticator
	apiKey   string
	label    string
	requests *RequestBuilder
}

// Option configures a Client.
type Option func(*options)

type options struct {
	label          string
	apiKey         string
	headers        http.Header
	insecure       bool
	connectTimeout time.Duration
	readTimeout    time.Duration
	httpClient     *http.Client
}

// WithLabel names the platform in errors and logs, e.g. "swp#1".
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// WithAPIKey sets the key handed to the Authenticator.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(h http.Header) Option {
	return func(o *options) { o.headers = h }
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *options) { o.insecure = skip }
}

// WithTimeouts sets the connect and read timeouts. Zero keeps the default.
func WithTimeouts(connect, read time.Duration) Option {
	return func(o *options) {
		if connect > 0 {
			o.connectTimeout = connect
		}
		if read > 0 {
			o.readTimeout = read
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. TLS and timeout
// options are ignored when set.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New creates a new transport client for baseURL.
func New(baseURL string, auth Authenticator, opts ...Option) *Client {
	o := &options{
		connectTimeout: constants.ConnectTimeout,
		readTimeout:    constants.ReadTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if auth == nil {
		auth = &NoAuth{}
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Transport: newHTTPTransport(o)}
	}

	return &Client{
		http:     hc,
		auth:     auth,
		apiKey:   o.apiKey,
		label:    o.label,
		requests: NewRequestBuilder(baseURL, o.headers),
	}
}

func newHTTPTransport(o *options) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{Timeout: o.connectTimeout}).DialContext
	t.TLSHandshakeTimeout = o.connectTimeout
	t.ResponseHeaderTimeout = o.readTimeout
	if o.insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per endpoint
	}
	return t
}

// Label returns the platform label used in errors.
func (c *Client) Label() string {
	return c.label
}

// Get performs a GET request and decodes the JSON answer into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the answer into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch sends body as JSON and decodes the answer into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Do performs one request. out may be nil to discard the answer.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", path, err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.requests.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.WrapResource("create", "request", method+" "+url, err)
	}
	c.requests.AddHeaders(req)
	c.auth.Apply(req, c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logging.FromContext(ctx).Error().
			Str("platform", c.label).
			Str("method", method).
			Str("path", path).
			Err(err).
			Msg("Request failed")
		return &errors.TransportError{
			Platform: c.label,
			Method:   method,
			Endpoint: path,
			Timeout:  isTimeout(err),
			Err:      err,
		}
	}

	logging.FromContext(ctx).Trace().
		Str("platform", c.label).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request completed")

	return DecodeResponse(resp, out, c.label)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
