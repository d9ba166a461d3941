package ai

import (
	"errors"
	"fmt"
)

// ConfigError reports missing or invalid vendor configuration. It is fatal
// at construction time, never a per-request condition.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return "ai: missing configuration: " + e.Field
}

// TransportError wraps a network or socket failure while talking to a
// vendor.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ai: transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError reports a non-zero status code carried inside a vendor
// payload.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai: provider error %d: %s", e.Code, e.Message)
}

// StatusError reports a non-2xx HTTP response from a vendor.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ai: vendor returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("ai: vendor returned status %d: %s", e.StatusCode, e.Body)
}

// ErrMissingResult indicates a 2xx vendor payload that lacked the expected
// result field.
var ErrMissingResult = errors.New("ai: vendor payload missing expected result")

// ErrTaskPending indicates an asynchronous image task that was still pending
// after the single allowed poll. Treated as soft degradation, not a hard
// failure.
var ErrTaskPending = errors.New("ai: image task still pending after poll")
