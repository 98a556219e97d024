// Package apperr defines the error taxonomy shared by the service and
// handler layers. Handlers translate these sentinels into HTTP statuses.
package apperr

import "errors"

var (
	ErrValidation           = errors.New("invalid request")
	ErrConflict             = errors.New("resource already exists")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrExternal             = errors.New("external service failure")
)
