package generation

import (
	"errors"
	"net/http"

	"github.com/men16922/brandy-serverless-sub000/internal/sessions"
)

var (
	// ErrNotGenerationStep indicates the session is not on a step that
	// produces image variants.
	ErrNotGenerationStep = errors.New("session is not on an image generation step")

	// ErrInvalidAction indicates an unrecognized request action.
	ErrInvalidAction = errors.New("action must be \"generate\" or \"select\"")
)

// MapHTTPStatus maps generation errors to HTTP status codes, deferring to
// the session mapping for errors raised while committing.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotGenerationStep):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidAction):
		return http.StatusBadRequest
	default:
		return sessions.MapHTTPStatus(err)
	}
}
