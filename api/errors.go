package api

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a response that could not be interpreted as the
// vendor's API envelope.
var ErrMalformed = errors.New("unexpected API response format")

// Status is the vendor status triple returned with every API response.
type Status struct {
	Code  int
	Key   string
	Value string
}

func (s Status) String() string {
	return fmt.Sprintf("%s(%d): %s", s.Key, s.Code, s.Value)
}

// ConnectError wraps transport-level failures: connection problems, non-2xx
// HTTP statuses and unreadable bodies. The underlying transport error is
// available via Unwrap but never crosses the session boundary undecorated.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("error connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError indicates rejected credentials or a missing refresh token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// CallError indicates a well-formed response whose vendor status code
// signals failure. The status triple is kept for diagnostics.
type CallError struct {
	Endpoint string
	Status   Status
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s failed with %s", e.Endpoint, e.Status)
}
