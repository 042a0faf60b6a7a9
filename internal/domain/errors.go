package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Error types for consistent error handling across the dashboard.

// ErrAuthenticationRequired is any 401/403 from the backend. The session has
// already been cleared by the time a caller sees it.
type ErrAuthenticationRequired struct {
	Status int
}

func (e *ErrAuthenticationRequired) Error() string {
	return fmt.Sprintf("authentication required (status %d): please sign in again", e.Status)
}

// ErrHTTP is any other non-2xx response; it carries the raw body.
type ErrHTTP struct {
	Status int
	Body   []byte
}

func (e *ErrHTTP) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Message extracts the human-readable "message" of a JSON body, or "".
func (e *ErrHTTP) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Message
}

// ErrRejected is a 2xx response whose envelope says success:false.
type ErrRejected struct {
	Message string
}

func (e *ErrRejected) Error() string {
	if e.Message == "" {
		return "request rejected by backend"
	}
	return e.Message
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a transport-level failure talking to the backend.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation is a client-local validation failure. Fields holds one
// message per offending form field when more than one failed.
type ErrValidation struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) > 1 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("'%s' %s", k, e.Fields[k]))
		}
		return "validation error: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates there is no session, or sign-in was refused.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrIllegalTransition indicates an action is not available from the
// request's current status.
type ErrIllegalTransition struct {
	Action string
	From   RequestStatus
	To     RequestStatus
}

func (e *ErrIllegalTransition) Error() string {
	if e.To != "" {
		return fmt.Sprintf("action %s cannot move request from %q to %q", e.Action, e.From, e.To)
	}
	return fmt.Sprintf("action %s is not available in status %q", e.Action, e.From)
}

// ErrInFlight indicates an action is already running for the request.
type ErrInFlight struct {
	RequestID ID
}

func (e *ErrInFlight) Error() string {
	return fmt.Sprintf("an action is already in progress for request %s", e.RequestID)
}
