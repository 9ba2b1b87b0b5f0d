package api

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// NetworkError is a transport failure: the request never produced an HTTP
// response (refused connection, DNS failure, timeout).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response from the collection resource.
type ServerError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s %s: HTTP %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// DecodeError is a 2xx response whose body is not the expected JSON.
type DecodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("api: %s %s: decoding response: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func IsServer(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// IsNotFound reports whether err is a 404 from the collection resource.
func IsNotFound(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusNotFound
}

// parseServerError keeps the server's message when the body is the usual
// {"error": "..."} or {"message": "..."} object, and the raw body otherwise.
func parseServerError(method, path string, statusCode int, body []byte) *ServerError {
	out := &ServerError{Method: method, Path: path, StatusCode: statusCode}
	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := decodeJSON(body, &wire); err == nil && (wire.Error != "" || wire.Message != "") {
		out.Message = wire.Message
		if out.Message == "" {
			out.Message = wire.Error
		}
		return out
	}
	out.Message = truncate(string(body), 200)
	return out
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
