package domain

import "errors"

// InternalErrorMessage is the only text unexpected failures surface to the
// identity platform; the real cause is logged server-side first.
const InternalErrorMessage = "An unexpected error has occurred and has been logged."

// Provisioning errors.
var (
	ErrProvisioningFailed = errors.New("user provisioning failed")
)

// Token errors.
var (
	ErrTokenGeneration = errors.New("service token generation failed")
	ErrSigningKeyEmpty = errors.New("signing key is empty")
)

// External service errors.
var (
	ErrSecretUnavailable = errors.New("signing secret unavailable")
)

// ErrInternal is the sanitized catch-all returned at the orchestrator
// boundary for anything not recognized as safe to surface.
var ErrInternal = errors.New(InternalErrorMessage)

// ConflictError reports that the user-management API already has a user for
// this identity. Its message comes verbatim from the API response and is
// safe to surface to the platform caller.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
