// Package httpclient is the authenticated REST client of the Roommaster API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every request end to end.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 4 << 20
)

// Config describes the remote API and client-side limits.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests; zero disables throttling.
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Request is a transport-neutral description of one API call.
type Request struct {
	Method string
	Path   string // relative to Config.BaseURL
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	Header http.Header
	// Anonymous requests carry no bearer and are never refreshed-and-retried.
	Anonymous bool
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the whole body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// DecodeData unmarshals the {"data": ...} envelope used by the API into v.
func (r *Response) DecodeData(v any) error {
	env := struct {
		Data any `json:"data"`
	}{Data: v}
	return r.DecodeJSON(&env)
}

// Doer sends a Request and returns the response or a classified error.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// outcome is the typed result of one exchange at the adapter boundary.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeUnauthorized
	outcomeFailed
)

type result struct {
	kind outcome
	resp *Response
	err  error
}

// Transport sends requests to the API without any credential handling.
type Transport struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	ua      string
	log     *zap.Logger
}

var _ Doer = (*Transport)(nil)

// TransportOption customizes a Transport.
type TransportOption func(*Transport)

// WithHTTPClient replaces the underlying *http.Client (its Timeout is kept as is).
// The client is copied; its Transport gets wrapped with logging and recovery.
func WithHTTPClient(h *http.Client) TransportOption {
	return func(t *Transport) { t.http = h }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) TransportOption {
	return func(t *Transport) { t.log = l }
}

// NewTransport validates cfg and builds a Transport.
func NewTransport(cfg Config, opts ...TransportOption) (*Transport, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &Transport{
		base: base,
		http: &http.Client{Timeout: timeout},
		ua:   cfg.UserAgent,
		log:  zap.NewNop(),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, o := range opts {
		o(t)
	}

	hc := *t.http
	rt := hc.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	hc.Transport = RecoverRoundTripper(t.log, LoggingRoundTripper(t.log, rt))
	t.http = &hc
	return t, nil
}

// Do sends req as is and maps every non-2xx status to *StatusError.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	res := t.exchange(ctx, req, "")
	if res.kind != outcomeSuccess {
		return nil, res.err
	}
	return res.resp, nil
}

// exchange performs one HTTP round trip, attaching bearer when non-empty.
func (t *Transport) exchange(ctx context.Context, req *Request, bearer string) result {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return result{kind: outcomeFailed, err: fmt.Errorf("throttle: %w", err)}
		}
	}

	hr, err := t.build(ctx, req, bearer)
	if err != nil {
		return result{kind: outcomeFailed, err: err}
	}

	resp, err := t.http.Do(hr)
	if err != nil {
		return result{kind: outcomeFailed, err: &NetworkError{Method: req.Method, Path: req.Path, Err: err}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return result{kind: outcomeFailed, err: &NetworkError{Method: req.Method, Path: req.Path, Err: err}}
	}
	if len(body) > maxBodyBytes {
		return result{kind: outcomeFailed, err: fmt.Errorf("%s %s: %w (over %d bytes)",
			req.Method, req.Path, ErrResponseTooLarge, maxBodyBytes)}
	}

	r := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return result{kind: outcomeSuccess, resp: r}
	case resp.StatusCode == http.StatusUnauthorized:
		return result{kind: outcomeUnauthorized, resp: r, err: statusError(req, r)}
	default:
		return result{kind: outcomeFailed, resp: r, err: statusError(req, r)}
	}
}

func (t *Transport) build(ctx context.Context, req *Request, bearer string) (*http.Request, error) {
	if req.Method == "" {
		return nil, errors.New("request method required")
	}
	u := t.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")
	if t.ua != "" {
		hr.Header.Set("User-Agent", t.ua)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}
	if bearer != "" {
		hr.Header.Set("Authorization", "Bearer "+bearer)
	}
	return hr, nil
}

func statusError(req *Request, r *Response) *StatusError {
	return &StatusError{Method: req.Method, Path: req.Path, StatusCode: r.StatusCode, Body: r.Body}
}
