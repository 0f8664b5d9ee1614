package sessions

import (
	"errors"
	"net/http"
)

// Domain errors for session operations.
var (
	ErrNotFound              = errors.New("session not found")
	ErrSessionExpired        = errors.New("session expired")
	ErrSessionNotActive      = errors.New("session is not active")
	ErrInvalidProfile        = errors.New("invalid business profile")
	ErrInvalidStepTransition = errors.New("invalid step transition")
	ErrTooManyVariants       = errors.New("variant set exceeds maximum size")
	ErrInvalidVariant        = errors.New("invalid variant")
	ErrInvalidNameSet        = errors.New("invalid name suggestion set")
	ErrInvalidAnalysis       = errors.New("invalid analysis result")
	ErrMissingPriorStep      = errors.New("prior step data missing")
	ErrVariantNotFound       = errors.New("variant not found in current set")
	ErrConcurrentUpdate      = errors.New("session updated concurrently")
)

// MapHTTPStatus maps session domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVariantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, ErrSessionNotActive),
		errors.Is(err, ErrInvalidStepTransition),
		errors.Is(err, ErrMissingPriorStep):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidProfile),
		errors.Is(err, ErrTooManyVariants),
		errors.Is(err, ErrInvalidVariant),
		errors.Is(err, ErrInvalidNameSet),
		errors.Is(err, ErrInvalidAnalysis):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
