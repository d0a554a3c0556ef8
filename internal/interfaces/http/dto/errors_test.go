package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCodesResolveToStatus(t *testing.T) {
	tests := []struct {
		domainCode string
		apiCode    string
		status     int
	}{
		{"NOT_FOUND", ErrCodeNotFound, http.StatusNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists, http.StatusConflict},
		{"INVALID_INPUT", ErrCodeInvalidInput, http.StatusBadRequest},
		{"INVALID_STATE", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"UNAUTHENTICATED", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"UNAUTHORIZED", ErrCodeForbidden, http.StatusForbidden},
		{"INACTIVE", ErrCodeInactive, http.StatusForbidden},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"PRECONDITION_FAILED", ErrCodePreconditionFailed, http.StatusBadRequest},
		{"GATEWAY_ERROR", ErrCodeGateway, http.StatusBadGateway},
		{"PAYLOAD_TOO_LARGE", ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"INVALID_AMOUNT", "ERR_INVALID_AMOUNT", http.StatusBadRequest},
		{"INVALID_FORM_NAME", "ERR_INVALID_FORM_NAME", http.StatusBadRequest},
		{"PASSWORD_HASH_ERROR", "PASSWORD_HASH_ERROR", http.StatusInternalServerError},
		{ErrCodeRateLimited, ErrCodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			code := NormalizeErrorCode(tt.domainCode)
			assert.Equal(t, tt.apiCode, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestEveryMappedCodeHasAStatus(t *testing.T) {
	for domain, api := range LegacyErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[api]
		assert.True(t, ok, "%s maps to %s which has no status", domain, api)
	}
	for code := range ErrorCodeHTTPStatus {
		assert.Regexp(t, `^ERR_[A-Z_]+$`, code)
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Submission not found", "req-123")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Submission not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.False(t, resp.Error.Timestamp.Before(before))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")
	assert.Equal(t, "ERR_NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-789", []ValidationDetail{
		{Field: "email", Message: "Must be a valid email address"},
		{Field: "retainer_amount", Message: "Must be a non-negative amount"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "retainer_amount", resp.Error.Details[1].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name               string
		total              int64
		page, pageSize     int
		wantPage, wantSize int
		wantPages          int
	}{
		{"exact pages", 100, 1, 10, 1, 10, 10},
		{"partial last page", 101, 2, 10, 2, 10, 11},
		{"empty", 0, 1, 10, 1, 10, 0},
		{"default size", 100, 1, 0, 1, 20, 5},
		{"negative size", 100, 1, -1, 1, 20, 5},
		{"page floor", 5, 0, 10, 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, tt.page, tt.pageSize)
			assert.True(t, resp.Success)
			assert.Nil(t, resp.Error)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.total, resp.Meta.Total)
			assert.Equal(t, tt.wantPage, resp.Meta.Page)
			assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
			assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
		})
	}
}
