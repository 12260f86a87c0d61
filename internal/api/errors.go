package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Fallback messages when the server's response carries no usable detail.
const (
	msgRequestFailed = "Erro na requisição"
	msgNoConnection  = "Erro de conexão. Verifique sua internet."
	msgUnknown       = "Erro desconhecido"
)

// Status values outside the HTTP range.
const (
	// StatusNoResponse means the request went out but no response arrived
	// (connection refused, DNS failure, timeout).
	StatusNoResponse = 0
	// StatusClientFault means the request never left the client
	// (marshal failure, malformed request).
	StatusClientFault = -1
)

// Error is the uniform failure shape every client operation returns.
// Status is the HTTP status when a response was received, otherwise one of
// the sentinel values above. Callers must not assume anything beyond
// Message and Status.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

func networkError(err error) *Error {
	_ = err // transport detail is not surfaced to the user
	return &Error{Message: msgNoConnection, Status: StatusNoResponse}
}

func clientFault(err error) *Error {
	msg := msgUnknown
	if err != nil {
		msg = err.Error()
	}
	return &Error{Message: msg, Status: StatusClientFault}
}

// IsNetworkError reports whether err is a request that got no response.
func IsNetworkError(err error) bool { return statusOf(err) == StatusNoResponse }

// IsUnauthorized reports an authentication failure (invalid credentials,
// missing or expired token).
func IsUnauthorized(err error) bool { return statusOf(err) == http.StatusUnauthorized }

// IsPermissionDenied reports a server-side authorization rejection, e.g. a
// non-author editing a topic. Distinct from a validation failure.
func IsPermissionDenied(err error) bool { return statusOf(err) == http.StatusForbidden }

func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return StatusClientFault - 1 // matches nothing
}

// errorBody is the backend's error envelope: detail is either a plain
// string or a list of validation entries carrying a msg each.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// decodeDetail extracts the human-readable message from an error response
// body, preferring the first validation detail message when detail is a list.
func decodeDetail(body []byte) string {
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return msgRequestFailed
	}

	var asString string
	if err := json.Unmarshal(envelope.Detail, &asString); err == nil && asString != "" {
		return asString
	}

	var asList []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &asList); err == nil {
		for _, entry := range asList {
			if entry.Msg != "" {
				return entry.Msg
			}
		}
	}
	return msgRequestFailed
}
