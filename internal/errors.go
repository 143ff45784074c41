package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeTransient    ErrorType = "TRANSIENT_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidCSV       ErrorCode = "INVALID_CSV"
	ErrCodeNegativeTotal    ErrorCode = "NEGATIVE_TOTAL"
	ErrCodeSameProductName  ErrorCode = "SAME_PRODUCT_NAME"
	ErrCodeUnknownSetting   ErrorCode = "UNKNOWN_SETTING"
	ErrCodeInvalidBackup    ErrorCode = "INVALID_BACKUP"

	ErrCodeDuplicateValue ErrorCode = "DUPLICATE_VALUE"

	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeEquipmentNotFound ErrorCode = "EQUIPMENT_NOT_FOUND"
	ErrCodeLicenseNotFound   ErrorCode = "LICENSE_NOT_FOUND"
	ErrCodeProductNotFound   ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeNotPending        ErrorCode = "NOT_PENDING"

	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidTwoFactorCode   ErrorCode = "INVALID_2FA_CODE"
	ErrCodeTwoFactorNotConfigured ErrorCode = "2FA_NOT_CONFIGURED"
	ErrCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired           ErrorCode = "TOKEN_EXPIRED"

	ErrCodeAccessDenied     ErrorCode = "ACCESS_DENIED"
	ErrCodeSelfDelete       ErrorCode = "SELF_DELETE"
	ErrCodeLastAdmin        ErrorCode = "LAST_ADMIN"
	ErrCodeRoleNotGrantable ErrorCode = "ROLE_NOT_GRANTABLE"

	ErrCodeIntegrationNotConfigured ErrorCode = "INTEGRATION_NOT_CONFIGURED"
	ErrCodeProviderCredentials      ErrorCode = "PROVIDER_CREDENTIALS"
	ErrCodeProviderUnavailable      ErrorCode = "PROVIDER_UNAVAILABLE"

	ErrCodeDatabaseUnavailable ErrorCode = "DATABASE_UNAVAILABLE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Field returns the field named by the first validation detail, if any.
func (e *AppError) Field() string {
	if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
		return validationErrors.Errors[0].Field
	}
	return ""
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewInternalError is the fatal class: the cause is logged, never serialized.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewConstraintError reports a unique-key collision on a named field.
func NewConstraintError(field, message string) *AppError {
	return NewConflictError(message, ErrCodeDuplicateValue).WithDetails(ValidationErrors{
		Errors: []ValidationError{
			{Field: field, Message: message, Code: string(ErrCodeDuplicateValue)},
		},
	})
}

func NewTransientError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransient,
		Code:       ErrCodeDatabaseUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials   = NewUnauthorizedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidTwoFactorCode = NewUnauthorizedError("invalid verification code", ErrCodeInvalidTwoFactorCode)
	ErrInvalidToken         = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired         = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrUnauthenticated      = NewUnauthorizedError("authentication required", ErrCodeInvalidToken)

	ErrEquipmentNotFound = NewNotFoundError("equipment not found", ErrCodeEquipmentNotFound)
	ErrLicenseNotFound   = NewNotFoundError("license not found", ErrCodeLicenseNotFound)
	ErrUserNotFound      = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrNotPending        = NewNotFoundError("record is not pending approval", ErrCodeNotPending)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
