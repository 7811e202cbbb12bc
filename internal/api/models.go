package api

import apperrors "parkeasy/internal/errors"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message string                 `json:"message"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
