// Package api is the HTTP client for the inventory backend.
//
// Every call attaches the session's bearer token and an X-Request-ID. A 401
// response clears the session, fires the client's unauthorized hook, and
// returns an error matching ErrUnauthorized; callers never see nil data
// from a rejected request.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/metrics"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is kept as the message.
const maxErrorBody = 512

// Credentials supplies the bearer token and forgets it on 401.
// *session.Store satisfies it.
type Credentials interface {
	Token() string
	Clear() error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCredentials sets the token source.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithUnauthorizedHook sets a callback run after a 401 cleared the session.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// Client talks to one backend.
type Client struct {
	base           string
	http           *http.Client
	timeout        time.Duration
	creds          Credentials
	onUnauthorized func()
}

// NewClient returns a client for baseURL, e.g. http://localhost:7745/api.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:           strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		timeout:        15 * time.Second,
		onUnauthorized: func() {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// call describes one request.
type call struct {
	op     string // metric and error name; ids are templated out
	method string
	path   string
	query  url.Values
	body   any
	out    any
	anon   bool // send no token and leave the session alone on 401

	// keepSession sends the token but leaves the session alone on 401.
	keepSession bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqID := uuid.NewString()
	fail := func(kind Kind, status int, msg string, err error) error {
		metrics.Endpoint(cl.op).RecordError()
		return &Error{Kind: kind, Op: cl.op, Status: status, Message: msg, RequestID: reqID, Err: err}
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fail(KindValidation, 0, "", fmt.Errorf("encoding request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	target := c.base + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fail(KindTransport, 0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, reqID)
	if !cl.anon && c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	metrics.Endpoint(cl.op).Record(elapsed)
	if err != nil {
		debug.Log("api: %s %s failed after %v: %v", cl.method, cl.path, elapsed, err)
		return fail(KindTransport, 0, "", err)
	}
	defer resp.Body.Close()
	debug.Log("api: %s %s -> %d (%v, %s)", cl.method, cl.path, resp.StatusCode, elapsed, reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := kindForStatus(resp.StatusCode)
		msg := errorMessage(resp.Body)
		if kind == KindUnauthorized && !cl.anon && !cl.keepSession {
			c.unauthorized()
		}
		return fail(kind, resp.StatusCode, msg, nil)
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(KindTransport, resp.StatusCode, "", fmt.Errorf("reading response: %w", err))
	}
	if err := decode(data, cl.out); err != nil {
		return fail(KindServer, resp.StatusCode, "invalid response from server", err)
	}
	return nil
}

func (c *Client) unauthorized() {
	if c.creds != nil {
		if err := c.creds.Clear(); err != nil {
			debug.Log("api: clearing session after 401: %v", err)
		}
	}
	c.onUnauthorized()
}

// decode unmarshals data into out. go-json can panic on some malformed
// input, so a panic is turned into an error.
func decode(data []byte, out any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding response: %v", r)
		}
	}()
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("decoding response: empty body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": ...} or {"message": ...} from an error
// body, falling back to its trimmed text.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if decode(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if data[0] == '{' || data[0] == '[' {
		return ""
	}
	return string(data)
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
