package handler

import "github.com/lexflow/backend/internal/interfaces/http/dto"

// Envelopes below exist for the generated OpenAPI document only; handlers
// write dto.Response directly.

// APIResponse is the success envelope with a typed payload
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data,omitempty"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
