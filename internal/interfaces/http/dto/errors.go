package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidSort is used for an unknown sort key
	ErrCodeInvalidSort = "ERR_INVALID_SORT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a product or session is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeDispatchInProgress is used when the same action is already loading
	ErrCodeDispatchInProgress = "ERR_DISPATCH_IN_PROGRESS"
)

// Catalog error codes
const (
	// ErrCodeCatalogUnavailable is used when no catalog snapshot is loaded
	ErrCodeCatalogUnavailable = "ERR_CATALOG_UNAVAILABLE"
	// ErrCodeInvalidCatalog is used when a catalog document cannot be built
	ErrCodeInvalidCatalog = "ERR_INVALID_CATALOG"
)

// Integration error codes
const (
	// ErrCodeIntegration is used for a non-2xx reply from n8n or Notion
	ErrCodeIntegration = "ERR_INTEGRATION"
	// ErrCodeTransport is used for a network failure or timeout
	ErrCodeTransport = "ERR_TRANSPORT"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidSort: http.StatusBadRequest,

	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeDispatchInProgress: http.StatusConflict,

	ErrCodeCatalogUnavailable: http.StatusServiceUnavailable,
	ErrCodeInvalidCatalog:     http.StatusBadRequest,

	// Remote failures are reported as a bad gateway
	ErrCodeIntegration: http.StatusBadGateway,
	ErrCodeTransport:   http.StatusBadGateway,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_SORT":        ErrCodeInvalidSort,
	"INVALID_PRODUCT":     ErrCodeInvalidCatalog,
	"INVALID_DOCUMENT":    ErrCodeInvalidCatalog,
	"INVALID_CATALOG":     ErrCodeInvalidCatalog,
	"DUPLICATE_PRODUCT":   ErrCodeInvalidCatalog,
	"CONFLICT":            ErrCodeConflict,
	"INVALID_STATE":       ErrCodeConflict,
	"UNAVAILABLE":         ErrCodeCatalogUnavailable,
	"CATALOG_UNAVAILABLE": ErrCodeCatalogUnavailable,
	"VALIDATION_ERROR":    ErrCodeValidation,
	"BAD_REQUEST":         ErrCodeBadRequest,
	"INTERNAL_ERROR":      ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
