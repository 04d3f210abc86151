package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error is a failure that is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error    { return &Error{Kind: KindValidation, Message: msg} }
func Authorization(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error      { return &Error{Kind: KindConflict, Message: msg} }

// Wrap attaches a cause to a client-facing error while keeping errors.Is
// working against the original sentinel.
func Wrap(sentinel *Error, cause error) error {
	return &wrapped{sentinel: sentinel, cause: cause}
}

type wrapped struct {
	sentinel *Error
	cause    error
}

func (w *wrapped) Error() string {
	return w.sentinel.Message + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.sentinel, w.cause}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// MessageOf returns the client-facing message, or fallback for unexpected errors.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}

// HTTPStatus maps a kind onto the status code the API responds with.
// Conflicts answer 400 to stay compatible with existing clients.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
