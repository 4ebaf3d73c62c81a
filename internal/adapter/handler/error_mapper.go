package handler

import (
	"errors"
	"net/http"

	"identity-hook/internal/domain"
)

// errorResponse is the error channel shape consumed by the identity
// platform's trigger mechanism.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapDomainError converts a registration error into the status and body
// surfaced to the platform. Conflicts keep their verbatim message with the
// already-exists code; everything else collapses to the fixed internal
// message, so no cause detail crosses this boundary.
func mapDomainError(err error) (int, errorResponse) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict, errorResponse{
			Code:    "already-exists",
			Message: conflict.Message,
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Code:    "internal",
		Message: domain.InternalErrorMessage,
	}
}
