package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthLoginFailed    ErrorCode = "AUTH-001"
	ErrCodeAuthAccessDenied   ErrorCode = "AUTH-002"
	ErrCodeAuthSessionExpired ErrorCode = "AUTH-003"
	ErrCodeAuthRefreshFailed  ErrorCode = "AUTH-004"
	ErrCodeAuthNotLoggedIn    ErrorCode = "AUTH-005"
	ErrCodeAuthTokenMalformed ErrorCode = "AUTH-006"

	// Session store errors (SESSION-001 to SESSION-099)
	ErrCodeSessionCorrupt  ErrorCode = "SESSION-001"
	ErrCodeSessionPersist  ErrorCode = "SESSION-002"
	ErrCodeSessionRestore  ErrorCode = "SESSION-003"
	ErrCodeSessionNotReady ErrorCode = "SESSION-004"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequestFailed  ErrorCode = "API-001"
	ErrCodeAPIBadStatus      ErrorCode = "API-002"
	ErrCodeAPIDecodeFailed   ErrorCode = "API-003"
	ErrCodeAPIEncodeFailed   ErrorCode = "API-004"
	ErrCodeAPIRetryExhausted ErrorCode = "API-005"
	ErrCodeAPIUnreachable    ErrorCode = "API-006"

	// Product errors (PRODUCT-001 to PRODUCT-099)
	ErrCodeProductNotFound     ErrorCode = "PRODUCT-001"
	ErrCodeProductInvalid      ErrorCode = "PRODUCT-002"
	ErrCodeProductUploadFailed ErrorCode = "PRODUCT-003"
	ErrCodeProductTooManyFiles ErrorCode = "PRODUCT-004"

	// Contact errors (CONTACT-001 to CONTACT-099)
	ErrCodeContactInvalid    ErrorCode = "CONTACT-001"
	ErrCodeContactSendFailed ErrorCode = "CONTACT-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"
	ErrCodeConfigBadURL   ErrorCode = "CONFIG-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// MaisonError represents an enhanced error with code, suggestions, and documentation
type MaisonError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *MaisonError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *MaisonError) Unwrap() error {
	return e.Cause
}

// New creates a new MaisonError
func New(code ErrorCode, message string) *MaisonError {
	return &MaisonError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new MaisonError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *MaisonError {
	return &MaisonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *MaisonError) WithSuggestion(suggestion string) *MaisonError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *MaisonError) WithSuggestions(suggestions ...string) *MaisonError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *MaisonError) WithDocs(url string) *MaisonError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewAccessDeniedError creates an admin-only access error.
//
// Raised when login succeeds at the network level but the returned
// account does not carry the administrative role.
func NewAccessDeniedError(role string) *MaisonError {
	return New(ErrCodeAuthAccessDenied, fmt.Sprintf("Access denied: admin only (role %q)", role)).
		WithSuggestion("Log in with an administrator account").
		WithSuggestion("Contact the store owner if you believe you should have access")
}

// NewSessionExpiredError creates a session expired error
func NewSessionExpiredError() *MaisonError {
	return New(ErrCodeAuthSessionExpired, "Session expired. Please login again.").
		WithSuggestion("Run 'maison auth login' to start a new session")
}

// NewNotLoggedInError creates a not-logged-in error
func NewNotLoggedInError() *MaisonError {
	return New(ErrCodeAuthNotLoggedIn, "not logged in").
		WithSuggestion("Run 'maison auth login --email <email>' first")
}

// NewProductNotFoundError creates a product not found error
func NewProductNotFoundError(id string) *MaisonError {
	return New(ErrCodeProductNotFound, fmt.Sprintf("product not found: %s", id)).
		WithSuggestion("Run 'maison browse' to list available products").
		WithSuggestion("Check that the product ID is correct")
}

// NewTooManyImagesError creates an upload limit error
func NewTooManyImagesError(count, max int) *MaisonError {
	return New(ErrCodeProductTooManyFiles, fmt.Sprintf("too many gallery images: %d (maximum %d)", count, max)).
		WithSuggestion(fmt.Sprintf("Attach at most %d images in addition to the thumbnail", max))
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *MaisonError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check ~/.maison/config.yaml for syntax errors").
		WithSuggestion("Run 'maison config show' to inspect the effective configuration")
}
