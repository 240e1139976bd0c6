// Package apperror defines the error taxonomy shared by services and handlers.
// Services return *Error values; handlers map the Kind to an HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller should react to it.
type Kind int

const (
	// KindInternal is the zero value: anything not classified below.
	KindInternal Kind = iota
	KindValidation
	KindNoOpenCashSession
	KindInvalidState
	KindNotFound
	KindForbidden
	KindUnauthorized
	// KindIntegrity covers constraint violations and storage failures. The
	// whole unit of work was rolled back and must be retried from scratch.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNoOpenCashSession:
		return "no_open_cash_session"
	case KindInvalidState:
		return "invalid_state"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindIntegrity:
		return "integrity"
	default:
		return "internal"
	}
}

// Error is an application error with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNoOpenCashSession)
// works for wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// ErrNoOpenCashSession is returned by sale registration when the drawer is closed.
var ErrNoOpenCashSession = &Error{
	Kind:    KindNoOpenCashSession,
	Message: "Não existe caixa aberto. Abra o caixa para registrar vendas.",
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func NotFound(resource string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " não encontrado", Err: err}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Integrity wraps a storage-level failure.
func Integrity(err error) *Error {
	return &Error{Kind: KindIntegrity, Message: "falha de integridade ao gravar", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
