package glide

import "fmt"

// Error represents a Glide protocol or session error
type Error struct {
	// Type is the error type
	Type ErrorType

	// Message is a human-readable error message
	Message string
}

// ErrorType categorizes Glide errors
type ErrorType int

const (
	// ErrConnectionClosed indicates the peer closed the connection.
	// Fatal: the session cannot continue.
	ErrConnectionClosed ErrorType = iota

	// ErrMalformedFrame indicates a frame that could not be decoded.
	// Aborts the current command only.
	ErrMalformedFrame

	// ErrValidationRejected indicates input that failed local validation
	// before reaching the network.
	ErrValidationRejected

	// ErrServerRejected indicates the server answered the current command
	// with an unexpected or negative response.
	ErrServerRejected

	// ErrLocalIO indicates a local file could not be opened, read, or
	// written.
	ErrLocalIO
)

func (e *Error) Error() string {
	return fmt.Sprintf("glide %s: %s", e.Type, e.Message)
}

func (t ErrorType) String() string {
	switch t {
	case ErrConnectionClosed:
		return "connection closed"
	case ErrMalformedFrame:
		return "malformed frame"
	case ErrValidationRejected:
		return "validation rejected"
	case ErrServerRejected:
		return "server rejected"
	case ErrLocalIO:
		return "local I/O error"
	default:
		return "unknown error"
	}
}

// NewError creates a new Glide error
func NewError(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Errorf creates a new Glide error with a formatted message
func Errorf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsConnectionClosed checks if an error means the peer went away
func IsConnectionClosed(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrConnectionClosed
	}
	return false
}

// IsMalformedFrame checks if an error is a frame decode error
func IsMalformedFrame(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrMalformedFrame
	}
	return false
}

// IsRecoverable reports whether the session loop may continue after err.
// Only a closed connection ends the session.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok {
		return e.Type != ErrConnectionClosed
	}
	return false
}
