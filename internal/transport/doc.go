// Package transport is the request/response layer beneath the map API client.
//
// # Overview
//
// A Transport owns one base URL and turns (path, Request) pairs into HTTP
// calls. It joins paths onto the base URL without doubling separators,
// attaches the standard headers, bounds every call with a timeout, and sorts
// the outcome into one of three shapes:
//
//   - (*Result, nil): a 2xx response with a body, JSON or text
//   - (nil, nil): 204 No Content
//   - (nil, error): a *RemoteError or *Error, described below
//
// # Errors
//
// RemoteError carries a non-2xx status together with the raw body. Its
// message is chosen in order of preference:
//
//  1. the "message" string of a JSON error body
//  2. a non-JSON body shorter than 300 characters
//  3. "HTTP <status> <status text>"
//
// Error wraps failures that never produced a response (DNS, refused or reset
// connections, cancellation, timeouts). It has no status code; Timeout
// reports whether the deadline fired.
//
// # Timeouts
//
// The default timeout is 15 seconds. Config.Timeout replaces the default for
// the transport and Request.Timeout replaces it for a single call. The
// deadline is applied to the request context so the caller's own cancellation
// still works.
//
// # Usage
//
//	t, err := transport.New(transport.Config{BaseURL: "https://localhost:7219"})
//	if err != nil {
//		return err
//	}
//	res, err := t.Do(ctx, "/api/map", transport.Request{})
//	if err != nil {
//		var remote *transport.RemoteError
//		if errors.As(err, &remote) {
//			log.Printf("api answered %d: %s", remote.Status, remote.Message)
//		}
//		return err
//	}
//	var maps []mapapi.Map
//	err = res.Decode(&maps)
//
// # Thread Safety
//
// A Transport is immutable after New and safe for concurrent use.
package transport
