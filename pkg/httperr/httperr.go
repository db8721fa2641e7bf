package httperr

import "errors"

// Request-level error kinds the browse handlers map to HTTP statuses:
// bad request (400), not found / ambiguous match (404), upstream failure (502/500).

type BadRequestError struct {
	msg string
}

func (e *BadRequestError) Error() string { return e.msg }

func NewBadRequest(msg string) error { return &BadRequestError{msg: msg} }

func IsBadRequest(err error) bool {
	_, ok := errors.AsType[*BadRequestError](err)
	return ok
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func NewNotFound(msg string) error { return &NotFoundError{msg: msg} }

func IsNotFound(err error) bool {
	_, ok := errors.AsType[*NotFoundError](err)
	return ok
}

// AmbiguousMatchError signals a lookup that was expected to identify exactly
// one citation but matched several.
type AmbiguousMatchError struct {
	msg     string
	Matches int
}

func (e *AmbiguousMatchError) Error() string { return e.msg }

func NewAmbiguousMatch(msg string, matches int) error {
	return &AmbiguousMatchError{msg: msg, Matches: matches}
}

func IsAmbiguousMatch(err error) bool {
	_, ok := errors.AsType[*AmbiguousMatchError](err)
	return ok
}

// UpstreamError wraps a failure of an external lookup source.
type UpstreamError struct {
	msg   string
	cause error
}

func (e *UpstreamError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *UpstreamError) Unwrap() error { return e.cause }

func NewUpstream(msg string, cause error) error { return &UpstreamError{msg: msg, cause: cause} }

func IsUpstream(err error) bool {
	_, ok := errors.AsType[*UpstreamError](err)
	return ok
}
