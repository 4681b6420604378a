package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidOTP   = errors.New("invalid otp")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrHashFormat   = errors.New("malformed password hash")
	ErrInternal     = errors.New("internal")
)

// MessageError carries a client facing message next to one of the sentinels above.
type MessageError struct {
	kind error
	msg  string
}

func (e *MessageError) Error() string {
	return e.kind.Error() + ": " + e.msg
}

func (e *MessageError) Unwrap() error {
	return e.kind
}

func (e *MessageError) Message() string {
	return e.msg
}

func WithMessage(kind error, msg string) error {
	return &MessageError{kind: kind, msg: msg}
}

// MessageOf returns the client facing message attached to err, if any.
func MessageOf(err error) (string, bool) {
	var me *MessageError
	if errors.As(err, &me) {
		return me.msg, true
	}
	return "", false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
