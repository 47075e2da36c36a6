package dto

import (
	"net/http"
	"strings"
)

// Error codes returned in the error envelope. Domain codes pass through
// unchanged, so most of these mirror shared.Code* values.

// General error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ACCOUNT_DISABLED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeTokenMaxRefresh    = "TOKEN_MAX_REFRESH"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// Upload error codes
const (
	ErrCodeFileTooLarge          = "FILE_TOO_LARGE"
	ErrCodeDisallowedContentType = "DISALLOWED_CONTENT_TYPE"
	ErrCodeStorageUnavailable    = "STORAGE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDisabled:    http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeTokenMaxRefresh:    http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	"VERSION_CONFLICT":         http.StatusConflict,
	"OPTIMISTIC_LOCK_FAILED":   http.StatusConflict,
	"CONCURRENT_MODIFICATION":  http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	"TOO_MANY_IMAGES":        http.StatusUnprocessableEntity,

	ErrCodeFileTooLarge:          http.StatusBadRequest,
	ErrCodeDisallowedContentType: http.StatusBadRequest,
	ErrCodeStorageUnavailable:    http.StatusServiceUnavailable,
	"UPLOAD_NOT_FOUND":           http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field-level domain codes (INVALID_EMAIL, INVALID_PRICE, ...) are input
// errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// codeAliases folds historical spellings into the canonical codes
var codeAliases = map[string]string{
	"ERR_NOT_FOUND":         ErrCodeNotFound,
	"ERR_VALIDATION":        ErrCodeValidation,
	"VALIDATION_ERRORS":     ErrCodeValidation,
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode maps aliases to canonical codes; other codes pass through
func NormalizeErrorCode(code string) string {
	if normalized, ok := codeAliases[code]; ok {
		return normalized
	}
	return code
}
