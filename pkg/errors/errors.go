package errors

import (
	"fmt"
	"net/http"
)

// NotFoundMessage is the generic message returned whenever a caller asks for
// something that does not exist or that they are not allowed to see. The two
// cases are deliberately indistinguishable so that organization-scoped
// existence never leaks.
const NotFoundMessage = "The requested URL was not found on the server. " +
	"If you entered the URL manually please check your spelling and try again."

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewNotFoundOrForbidden creates the existence-hiding 404. Used both when a
// row is genuinely missing and when the caller lacks the admin role for the
// owning organization.
func NewNotFoundOrForbidden() *AppError {
	return NewError(http.StatusNotFound, "NOT_FOUND", NotFoundMessage)
}

// NewValidationError creates a 400 for malformed tokens or ids
func NewValidationError(message string) *AppError {
	return NewError(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// NewPermissionPrecondition creates a 409 for workflow-ordering violations,
// e.g. approving a reply whose parent comment is still unapproved. This is
// not an authorization failure.
func NewPermissionPrecondition(message string) *AppError {
	return NewError(http.StatusConflict, "PERMISSION_PRECONDITION", message)
}

// NewNotFoundError creates a plain 404 for lookups that are not organization
// scoped (no existence to hide).
func NewNotFoundError(message string) *AppError {
	return NewError(http.StatusNotFound, "NOT_FOUND", message)
}

// NewExternalServiceDegraded creates a 503. Callers on the fail-open paths
// log this and proceed; it is never returned from a moderation mutation.
func NewExternalServiceDegraded(service string, err error) *AppError {
	return NewError(http.StatusServiceUnavailable, "EXTERNAL_SERVICE_DEGRADED",
		fmt.Sprintf("%s is unavailable: %v", service, err))
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(code string, message string) *AppError {
	return NewError(http.StatusUnauthorized, code, message)
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// FromError converts a standard error to an AppError
// If the error is already an AppError, it is returned as-is
// Otherwise, it is wrapped as an internal server error
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalServerError("SERVER_ERROR", err.Error())
}

// Is checks if the target error is an AppError with the same code
func Is(err error, target *AppError) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == target.Code
}

// GetStatusCode extracts the HTTP status code, returns 500 if not an AppError
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode extracts the error code, returns "UNKNOWN_ERROR" if not an AppError
func GetErrorCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}
