package repositories

import "fmt"

// CounterError wraps sequence-counter failures so callers can report the
// counter involved without parsing the message.
type CounterError struct {
	CounterID string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *CounterError) Error() string {
	if e == nil {
		return ""
	}
	if e.CounterID != "" {
		return fmt.Sprintf("counter %s: %s", e.CounterID, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying error, if any.
func (e *CounterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
