package kvstore

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the requested key does not exist or has expired.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict indicates a concurrent writer updated the record
	// between read and write-back.
	ErrVersionConflict = errors.New("record version conflict")
	// ErrEmptyKey indicates an empty store key was provided.
	ErrEmptyKey = errors.New("store key must not be empty")
)

// MapHTTPStatus maps store errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrVersionConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyKey) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
