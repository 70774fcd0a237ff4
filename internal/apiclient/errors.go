package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSessionExpired matches any error produced when a token refresh fails.
var ErrSessionExpired = errors.New("session expired")

// NetworkError reports a transport failure where no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("execute request %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a 4xx/5xx response. Body holds the raw response body.
type HTTPStatusError struct {
	Method string
	Path   string
	Code   int
	Body   []byte
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
	if server := serverMessage(e.Body); server != "" {
		msg += ": " + server
	}
	return msg
}

// Message returns the server-provided message, or a generic description of the
// status when the body carries none.
func (e *HTTPStatusError) Message() string {
	if server := serverMessage(e.Body); server != "" {
		return server
	}
	return fmt.Sprintf("request failed with status code %d", e.Code)
}

// SessionExpiredError is returned when the refresh call itself fails. The
// credential store has already been cleared when callers see it.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	if e.Err == nil {
		return ErrSessionExpired.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSessionExpired, e.Err)
}

func (e *SessionExpiredError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSessionExpired) succeed.
func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

// ValidationError carries field-keyed problems with a create/update payload,
// either found locally or reported by the service in a 4xx response.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message != "" {
			return e.Message
		}
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	prefix := "validation failed"
	if e.Message != "" {
		prefix = e.Message
	}
	return prefix + " (" + strings.Join(parts, "; ") + ")"
}

// Field returns the message recorded for name, if any.
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// ValidationFromStatus converts a 400/422 HTTPStatusError whose body carries an
// `errors` object into a ValidationError.
func ValidationFromStatus(err error) (*ValidationError, bool) {
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		return nil, false
	}
	if statusErr.Code != 400 && statusErr.Code != 422 {
		return nil, false
	}
	var payload struct {
		Message string                     `json:"message"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if jsonErr := json.Unmarshal(statusErr.Body, &payload); jsonErr != nil || len(payload.Errors) == 0 {
		return nil, false
	}
	fields := make(map[string]string, len(payload.Errors))
	for name, raw := range payload.Errors {
		fields[name] = fieldMessage(raw)
	}
	return &ValidationError{Message: payload.Message, Fields: fields}, true
}

// IsStatus reports whether err is an HTTPStatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}

// Message renders err as the short text controllers record in their error field.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		validationErr *ValidationError
		statusErr     *HTTPStatusError
		networkErr    *NetworkError
	)
	switch {
	case errors.Is(err, ErrSessionExpired):
		return "session expired, please log in again"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &statusErr):
		return statusErr.Message()
	case errors.As(err, &networkErr):
		return fmt.Sprintf("network error: %v", networkErr.Err)
	default:
		return err.Error()
	}
}

// serverMessage extracts a message from common JSON error envelopes:
// {"message": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	if len(payload.Error) > 0 {
		return fieldMessage(payload.Error)
	}
	return ""
}

func fieldMessage(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
		return strings.TrimSpace(nested.Message)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
