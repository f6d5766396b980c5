package apperrors

import (
	"errors"
	"net/http"
)

// Error defines a standard application error.
type Error struct {
	Kind    Kind
	Message string
	// Wrapped underlying error.
	WrappedErr error
}

// Error returns the message, falling back to the wrapped error.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.WrappedErr != nil {
		return e.WrappedErr.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.WrappedErr
}

// Kind defines the kind or class of an error.
type Kind uint8

// Transport agnostic error "kinds"
const (
	Other        Kind = iota // Unclassified error
	Internal                 // Internal error
	Conflict                 // Entity already exists or is in a terminal state
	Invalid                  // Invalid input, validation error etc
	NotFound                 // Entity does not exist
	Unauthorized             // Missing or bad credentials
	Forbidden                // Authenticated but not allowed
	ExternalIO               // A remote dependency failed
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal error"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid input"
	case NotFound:
		return "entity not found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case ExternalIO:
		return "external service error"
	default:
		return "unclassified error"
	}
}

// StatusCode maps a kind onto an HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case Invalid, ExternalIO:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// E builds an *Error from any mix of Kind, error and string arguments.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.WrappedErr = arg
		case string:
			e.Message = arg
		}
	}
	return e
}

func NewInternalError(msg string, err error) error { return E(Internal, msg, err) }

func NewNotFoundError(msg string) error { return E(NotFound, msg) }

func NewInvalidError(msg string) error { return E(Invalid, msg) }

func NewUnauthorizedError(msg string) error { return E(Unauthorized, msg) }

func NewForbiddenError(msg string) error { return E(Forbidden, msg) }

func NewConflictError(msg string) error { return E(Conflict, msg) }

// KindOf returns the kind of the first *Error in err's chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

var (
	As = errors.As
	Is = errors.Is
)
