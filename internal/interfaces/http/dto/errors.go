package dto

import (
	"net/http"
	"strings"
)

// API error codes. Every code carries the ERR_ prefix; field-level domain
// codes such as INVALID_AMOUNT surface as ERR_INVALID_AMOUNT.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeInactive     = "ERR_INACTIVE"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Lifecycle: a step was asked for out of order, or before its inputs exist
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodePreconditionFailed = "ERR_PRECONDITION_FAILED"
	// DocuSign or Stripe failed or refused the call
	ErrCodeGateway = "ERR_GATEWAY"
)

// ErrorCodeHTTPStatus is the status written for each API code
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeInactive:     http.StatusForbidden,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodePreconditionFailed: http.StatusBadRequest,
	ErrCodeGateway:            http.StatusBadGateway,
}

// GetHTTPStatus looks up code; unlisted ERR_INVALID_* codes are 400 and
// everything else unknown is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates shared.DomainError codes to API codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHENTICATED":      ErrCodeUnauthorized,
	"UNAUTHORIZED":         ErrCodeForbidden,
	"FORBIDDEN":            ErrCodeForbidden,
	"INACTIVE":             ErrCodeInactive,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"PRECONDITION_FAILED":  ErrCodePreconditionFailed,
	"GATEWAY_ERROR":        ErrCodeGateway,
	"PAYLOAD_TOO_LARGE":    ErrCodePayloadTooLarge,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode maps a domain code to its API code. INVALID_* codes
// gain the ERR_ prefix; anything else passes through.
func NormalizeErrorCode(code string) string {
	if mapped, ok := LegacyErrorCodeMapping[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "INVALID_") {
		return "ERR_" + code
	}
	return code
}
