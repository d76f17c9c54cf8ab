package shared

// DomainError represents a domain-level error. Each error carries a stable
// code that the HTTP layer maps deterministically to a status; control flow
// never crosses component boundaries via panics.
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

// Stable domain error codes. The HTTP dto layer owns the code -> status map.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeConfiguration  = "CONFIGURATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeInvalidState   = "INVALID_STATE"
	CodeCarrierError   = "CARRIER_ERROR"
	CodeCarrierTimeout = "CARRIER_TIMEOUT"
	CodeInternal       = "INTERNAL_ERROR"
)

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeValidation, "Invalid input provided")
	ErrUnauthorized = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden    = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)
