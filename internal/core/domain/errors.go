package domain

import "errors"

// Error kinds. Every error produced by the core wraps exactly one of them so the
// transport layer can classify it with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// Error is a classified domain error. Its message is safe to show to callers.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Invalid builds a validation error with a caller-facing message.
func Invalid(msg string) error {
	return newError(ErrValidation, msg)
}

var (
	ErrPasswordMismatch   = newError(ErrValidation, "passwords do not match")
	ErrPasswordTooLong    = newError(ErrValidation, "password must be at most 72 bytes")
	ErrWrongPassword      = newError(ErrValidation, "current password is incorrect")
	ErrEmptyPatch         = newError(ErrValidation, "no fields to update")
	ErrInvalidStatus      = newError(ErrValidation, "invalid task status")
	ErrInvalidRole        = newError(ErrValidation, "invalid role")
	ErrCannotDeleteSelf   = newError(ErrValidation, "admins cannot delete their own account")
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = newError(ErrUnauthenticated, "invalid token")
	ErrUserExists         = newError(ErrConflict, "user already exists")
	ErrTagExists          = newError(ErrConflict, "tag already exists")
	ErrNotPermitted       = newError(ErrForbidden, "access forbidden")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrProjectNotFound    = newError(ErrNotFound, "project not found")
	ErrTaskNotFound       = newError(ErrNotFound, "task not found")
	ErrTagNotFound        = newError(ErrNotFound, "tag not found")

	// ErrEmailTaken is the registration form of ErrUserExists. Sign-up reports
	// a taken email as a bad request.
	ErrEmailTaken = newError(ErrValidation, "user already exists")

	// ErrInvalidActivationCode is an authorization failure that is reported to
	// clients as 401.
	ErrInvalidActivationCode = newError(ErrForbidden, "invalid admin activation code")
)
