package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds a single request when neither the transport nor
	// the request sets one.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodyBytes caps a response body. A 1000x1000 floor encodes
	// to roughly 60 MB.
	DefaultMaxBodyBytes = 128 << 20

	defaultBaseURL   = "https://localhost:7219"
	defaultUserAgent = "mapgrid/0.1"
	maxTextMessage   = 300
)

// Config configures a Transport.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	HTTPClient   *http.Client
	Logger       *logrus.Logger
	MaxBodyBytes int64 // zero means DefaultMaxBodyBytes
}

// Transport performs JSON requests against a single base URL.
type Transport struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	timeout   time.Duration
	maxBody   int64
	log       *logrus.Entry
}

// Request describes one call. The zero value is a GET with the transport's
// default timeout.
type Request struct {
	Method  string
	Query   url.Values
	Header  http.Header
	Body    any // JSON-encoded when non-nil
	Timeout time.Duration
}

// Result holds a successful response that carried a body.
type Result struct {
	Status      int
	ContentType string
	JSON        json.RawMessage
	Text        string
}

// IsJSON reports whether the response body was JSON.
func (r *Result) IsJSON() bool {
	return r != nil && r.JSON != nil
}

// Decode unmarshals a JSON body into dest.
func (r *Result) Decode(dest any) error {
	if r == nil {
		return fmt.Errorf("decode response: empty result")
	}
	if r.JSON == nil {
		return fmt.Errorf("decode response: content type %q is not JSON", r.ContentType)
	}
	if err := json.Unmarshal(r.JSON, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// New builds a Transport from cfg, filling defaults for empty fields.
func New(cfg Config) (*Transport, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Transport{
		baseURL:   base,
		http:      client,
		userAgent: userAgent,
		timeout:   timeout,
		maxBody:   maxBody,
		log:       logger.WithField("component", "transport"),
	}, nil
}

// BaseURL returns a copy of the configured base URL.
func (t *Transport) BaseURL() *url.URL {
	u := *t.baseURL
	return &u
}

// Do sends the request and classifies the outcome. A nil Result with a nil
// error means the server answered 204 No Content.
func (t *Transport) Do(ctx context.Context, path string, req Request) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("transport is nil")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := t.resolve(path, req.Query)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.userAgent)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	started := time.Now()
	entry := t.log.WithFields(logrus.Fields{"method": method, "url": target})

	resp, err := t.http.Do(httpReq)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return nil, &Error{Op: method, URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	entry = entry.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(started).Round(time.Millisecond),
	})
	entry.Debug("request completed")

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, &Error{Op: "read response", URL: target, Err: err}
	}
	if int64(len(raw)) > t.maxBody {
		entry.WithField("limit", t.maxBody).Warn("response body too large")
		return nil, &Error{Op: "read response", URL: target, Err: &TooLargeError{Limit: t.maxBody}}
	}

	contentType := resp.Header.Get("Content-Type")
	isJSON := strings.Contains(strings.ToLower(contentType), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRemoteError(method, target, resp.StatusCode, contentType, isJSON, raw)
	}

	result := &Result{Status: resp.StatusCode, ContentType: contentType}
	if isJSON {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("decode response: invalid JSON from %s", target)
		}
		result.JSON = json.RawMessage(raw)
	} else {
		result.Text = string(raw)
	}
	return result, nil
}

func (t *Transport) resolve(path string, query url.Values) string {
	u := *t.baseURL
	u.Path = joinPath(t.baseURL.Path, path)
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func joinPath(base, path string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + path
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
