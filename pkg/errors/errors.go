package errors

import "fmt"

// Kind classifies daemon errors by their handling policy.
type Kind string

const (
	KindSignal      Kind = "signal"      // recoverable probe failure, substitute a safe default
	KindConfig      Kind = "config"      // invalid configuration or store mutation
	KindHardware    Kind = "hardware"    // brightness device access failure
	KindProtocol    Kind = "protocol"    // malformed control-channel framing or payload
	KindPersistence Kind = "persistence" // profile or state file write failure
	KindStartup     Kind = "startup"     // fatal initialization failure
)

// DaemonError represents a classified daemon error
type DaemonError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *DaemonError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates a new DaemonError
func New(kind Kind, message string) *DaemonError {
	return &DaemonError{Kind: kind, Message: message}
}

// Newf creates a new DaemonError with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *DaemonError {
	return &DaemonError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails adds details to an error
func WithDetails(err *DaemonError, details string) *DaemonError {
	return &DaemonError{Kind: err.Kind, Message: err.Message, Details: details}
}

// IsDaemonError checks if an error is a DaemonError
func IsDaemonError(err error) bool {
	_, ok := err.(*DaemonError)
	return ok
}

// KindOf returns the kind of an error, or KindStartup for unclassified errors
func KindOf(err error) Kind {
	if de, ok := err.(*DaemonError); ok {
		return de.Kind
	}
	return KindStartup
}

// IsRecoverable reports whether the loop may continue after this error.
// Signal and persistence failures degrade behavior, they do not stop ticks.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindSignal, KindPersistence, KindHardware:
		return true
	}
	return false
}

// IsConfigError reports whether the error came from config or store validation
func IsConfigError(err error) bool {
	return KindOf(err) == KindConfig
}

// IsProtocolError reports whether the error came from control-channel framing
func IsProtocolError(err error) bool {
	return KindOf(err) == KindProtocol
}
