package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Reimbursement Lifecycle (REQ) ----

func ErrInvalidAmount() *AppError {
	return New("REQ_001", "Amount must be a positive number with at most 2 decimal places", http.StatusBadRequest)
}

func ErrMissingAttachment() *AppError {
	return New("REQ_002", "At least one attachment is required", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("REQ_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrForbidden() *AppError {
	return New("REQ_004", "Not allowed to modify this request", http.StatusForbidden)
}

func ErrInvalidState(current string) *AppError {
	return New("REQ_005", fmt.Sprintf("Request already processed (status %s)", current), http.StatusConflict)
}

func ErrInvalidDecision() *AppError {
	return New("REQ_006", "Decision must be APPROVED or REJECTED", http.StatusBadRequest)
}

// ---- Fund Ledger (LED) ----

func ErrLedgerWrite(err error) *AppError {
	return Wrap("LED_001", "Could not commit ledger update", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAdminRequired() *AppError {
	return New("AUTH_004", "Administrator role required", http.StatusForbidden)
}

func ErrWrongPassword() *AppError {
	return New("AUTH_005", "Current password is incorrect", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request-validation error.
func Validation(message string) *AppError {
	return New("REQ_000", message, http.StatusBadRequest)
}
