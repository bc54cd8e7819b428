package response

import (
	"errors"

	"servetix/internal/shared/apperror"
)

type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}

func asAppError(err error) (*apperror.Error, bool) {
	var appErr *apperror.Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
