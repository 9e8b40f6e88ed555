package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/schooldesk/reservations-api/internal/reservations"
)

// mapEngineError converts the engine's error kinds into HTTP failures.
// Infrastructure errors never leak their details to the caller.
func mapEngineError(err error) error {
	var engineErr *reservations.Error
	if !errors.As(err, &engineErr) {
		return huma.Error500InternalServerError("Internal error")
	}

	switch engineErr.Kind {
	case reservations.KindValidation:
		return huma.Error400BadRequest(engineErr.Message)
	case reservations.KindInvalidCredential:
		return huma.Error401Unauthorized(engineErr.Message)
	case reservations.KindNotFound:
		return huma.Error404NotFound(engineErr.Message)
	case reservations.KindDeadlineExceeded:
		return huma.Error403Forbidden(engineErr.Message)
	case reservations.KindConflict:
		return huma.Error503ServiceUnavailable("Please retry: " + engineErr.Message)
	default:
		return huma.Error500InternalServerError(engineErr.Message)
	}
}
