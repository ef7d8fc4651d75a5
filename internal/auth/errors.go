package auth

import "fmt"

// Kind classifies an authentication failure. The set is closed: handlers
// switch over it to pick an HTTP status and never inspect error strings.
type Kind int

const (
	KindValidation Kind = iota
	KindInvalidCredentials
	KindAccountLocked
	KindInvalidToken
	KindInternal
)

// Error is the failure type returned by the auth core. Message is safe to
// show to callers; internal detail stays in logs.
type Error struct {
	Kind    Kind
	Message string

	// RetryAfterMinutes is set only for KindAccountLocked.
	RetryAfterMinutes int
}

func (e *Error) Error() string {
	return e.Message
}

// The unknown-identifier and wrong-password cases must produce byte-identical
// responses so callers cannot enumerate registered emails.
const invalidCredentialsMessage = "invalid credentials"

func errValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func errInvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: invalidCredentialsMessage}
}

func errAccountLocked(minutes int) *Error {
	return &Error{
		Kind:              KindAccountLocked,
		Message:           fmt.Sprintf("account is locked, try again in %d minutes", minutes),
		RetryAfterMinutes: minutes,
	}
}

// ErrInvalidToken is returned by token verification for every failure mode:
// bad signature, wrong algorithm, missing claims, expiry.
var ErrInvalidToken = &Error{Kind: KindInvalidToken, Message: "invalid or expired token"}

func errInternal() *Error {
	return &Error{Kind: KindInternal, Message: "internal error"}
}

// AsError unwraps err into an *Error, falling back to KindInternal so a
// handler always has a Kind to switch on.
func AsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return errInternal()
}
