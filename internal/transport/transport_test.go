package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("maps.test:1234/backend/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/backend" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL returned nil error for missing host")
	}
}

func TestResolve_AvoidsDuplicateSeparators(t *testing.T) {
	tr, err := New(Config{BaseURL: "http://maps.test/backend/"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	tests := []struct {
		path string
		want string
	}{
		{"/api/map", "http://maps.test/backend/api/map"},
		{"api/map", "http://maps.test/backend/api/map"},
		{"//api/map", "http://maps.test/backend/api/map"},
		{"", "http://maps.test/backend"},
	}
	for _, tt := range tests {
		if got := tr.resolve(tt.path, nil); got != tt.want {
			t.Errorf("resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDo_DecodesJSONAndSetsHeaders(t *testing.T) {
	t.Parallel()

	var gotAccept, gotUA, gotContentType, gotBody, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query().Get("name")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"id":7,"name":"Lobby"}`))
	}))
	t.Cleanup(server.Close)

	tr, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := tr.Do(context.Background(), "/api/map", Request{
		Method: http.MethodPost,
		Query:  map[string][]string{"name": {"Lobby"}},
		Body:   map[string]string{"name": "Lobby"},
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if !res.IsJSON() {
		t.Fatalf("IsJSON = false, want true")
	}
	var payload struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := res.Decode(&payload); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if payload.ID != 7 || payload.Name != "Lobby" {
		t.Fatalf("payload = %#v, want id=7 name=Lobby", payload)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}
	if !strings.HasPrefix(gotUA, "mapgrid/") {
		t.Fatalf("User-Agent = %q, want mapgrid/*", gotUA)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"name":"Lobby"}` {
		t.Fatalf("body = %q", gotBody)
	}
	if gotQuery != "Lobby" {
		t.Fatalf("query name = %q, want Lobby", gotQuery)
	}
}

func TestDo_NoContentReturnsNilResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	tr, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := tr.Do(context.Background(), "/api/map/1", Request{Method: http.MethodDelete})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if res != nil {
		t.Fatalf("result = %#v, want nil", res)
	}
}

func TestDo_TextBodyIsKeptRaw(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	t.Cleanup(server.Close)

	tr, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := tr.Do(context.Background(), "ping", Request{})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if res.IsJSON() || res.Text != "pong" {
		t.Fatalf("result = %#v, want text pong", res)
	}
	if err := res.Decode(&struct{}{}); err == nil {
		t.Fatalf("Decode on text result returned nil error")
	}
}

func TestDo_ClassifiesRemoteErrors(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 400)
	// 150 runes, 300 bytes.
	accented := strings.Repeat("é", 150)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"db down","code":17}`))
		case "/json-no-message":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"title":"bad"}`))
		case "/text":
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("floor not found"))
		case "/accented":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(accented))
		case "/long":
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(long))
		}
	}))
	t.Cleanup(server.Close)

	tr, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/json", 500, "db down"},
		{"/json-no-message", 400, "HTTP 400 Bad Request"},
		{"/text", 404, "floor not found"},
		{"/accented", 409, accented},
		{"/long", 502, "HTTP 502 Bad Gateway"},
	}
	for _, tt := range tests {
		_, err := tr.Do(context.Background(), tt.path, Request{})
		var remote *RemoteError
		if !errors.As(err, &remote) {
			t.Fatalf("%s: error = %v, want RemoteError", tt.path, err)
		}
		if remote.Status != tt.status || remote.Message != tt.message {
			t.Fatalf("%s: got status=%d message=%q, want %d %q", tt.path, remote.Status, remote.Message, tt.status, tt.message)
		}
		if err.Error() != tt.message {
			t.Fatalf("%s: Error() = %q, want %q", tt.path, err.Error(), tt.message)
		}
		if StatusOf(err) != tt.status {
			t.Fatalf("%s: StatusOf = %d, want %d", tt.path, StatusOf(err), tt.status)
		}
	}

	_, err = tr.Do(context.Background(), "/json", Request{})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
	var body struct {
		Code int `json:"code"`
	}
	if err := remote.DecodeBody(&body); err != nil || body.Code != 17 {
		t.Fatalf("DecodeBody = %v code=%d, want code 17", err, body.Code)
	}
}

func TestDo_OversizedBodyIsRejected(t *testing.T) {
	t.Parallel()

	payload := `{"cells":[` + strings.Repeat(`{"x":0,"y":0},`, 100) + `{"x":0,"y":0}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	small, err := New(Config{BaseURL: server.URL, MaxBodyBytes: 64})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = small.Do(context.Background(), "floor", Request{})
	var transportErr *Error
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if !errors.Is(err, ErrTooLarge) || !strings.Contains(err.Error(), "response exceeds 64 bytes") {
		t.Fatalf("error = %v, want response exceeds 64 bytes", err)
	}
	if StatusOf(err) != 0 {
		t.Fatalf("StatusOf = %d, want 0", StatusOf(err))
	}

	exact, err := New(Config{BaseURL: server.URL, MaxBodyBytes: int64(len(payload))})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := exact.Do(context.Background(), "floor", Request{})
	if err != nil {
		t.Fatalf("Do at the limit returned error: %v", err)
	}
	if !res.IsJSON() {
		t.Fatalf("result = %#v, want JSON", res)
	}
}

func TestDo_TimeoutSurfacesTransportError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	tr, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = tr.Do(context.Background(), "/slow", Request{Timeout: 20 * time.Millisecond})
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if !terr.Timeout() {
		t.Fatalf("Timeout() = false, want true (err=%v)", terr)
	}
	if StatusOf(err) != 0 {
		t.Fatalf("StatusOf = %d, want 0", StatusOf(err))
	}
}

func TestDo_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	tr, err := New(Config{BaseURL: addr})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = tr.Do(context.Background(), "/api/map", Request{})
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if terr.Timeout() {
		t.Fatalf("Timeout() = true for refused connection")
	}
}
