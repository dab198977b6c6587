package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Is matches domain errors by code so wrapped copies compare equal to the
// package-level values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConflict     = NewDomainError("CONFLICT", "Operation conflicts with one already in progress")
	ErrUnavailable  = NewDomainError("UNAVAILABLE", "Resource is not available")
)
