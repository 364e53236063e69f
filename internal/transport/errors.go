package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Error reports a request that never produced an HTTP response: DNS and
// connection failures, cancellation, and timeouts.
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the request was aborted because its deadline passed.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ErrTooLarge matches every TooLargeError via errors.Is.
var ErrTooLarge = errors.New("response too large")

// TooLargeError reports a response body over the transport's size cap.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("response exceeds %d bytes", e.Limit)
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}

// RemoteError reports a non-2xx response.
type RemoteError struct {
	Method      string
	URL         string
	Status      int
	Message     string
	ContentType string
	Body        []byte
}

func (e *RemoteError) Error() string {
	return e.Message
}

// IsJSON reports whether the error body was JSON.
func (e *RemoteError) IsJSON() bool {
	return strings.Contains(strings.ToLower(e.ContentType), "application/json")
}

// DecodeBody unmarshals a JSON error body into dest.
func (e *RemoteError) DecodeBody(dest any) error {
	if !e.IsJSON() {
		return fmt.Errorf("decode error body: content type %q is not JSON", e.ContentType)
	}
	if err := json.Unmarshal(e.Body, dest); err != nil {
		return fmt.Errorf("decode error body: %w", err)
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a
// RemoteError.
func StatusOf(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status
	}
	return 0
}

func newRemoteError(method, target string, status int, contentType string, isJSON bool, body []byte) *RemoteError {
	return &RemoteError{
		Method:      method,
		URL:         target,
		Status:      status,
		Message:     remoteMessage(status, isJSON, body),
		ContentType: contentType,
		Body:        body,
	}
}

func remoteMessage(status int, isJSON bool, body []byte) string {
	if isJSON {
		var payload struct {
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != nil {
			return *payload.Message
		}
	} else {
		text := string(body)
		if trimmed := strings.TrimSpace(text); trimmed != "" && utf8.RuneCountInString(text) < maxTextMessage {
			return trimmed
		}
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}
