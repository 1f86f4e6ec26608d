package services

import "errors"

// Sentinel kinds. Handlers map these onto HTTP status codes with
// errors.Is; the message carried alongside goes to the client verbatim.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBadRequest        = errors.New("bad request")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.kind }

func notFound(msg string) error          { return &serviceError{kind: ErrNotFound, msg: msg} }
func forbidden(msg string) error         { return &serviceError{kind: ErrForbidden, msg: msg} }
func invalidTransition(msg string) error { return &serviceError{kind: ErrInvalidTransition, msg: msg} }
func badRequest(msg string) error        { return &serviceError{kind: ErrBadRequest, msg: msg} }
