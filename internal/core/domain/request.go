package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus represents the lifecycle state of a reimbursement request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusWithdrawn RequestStatus = "WITHDRAWN"
)

// Request represents a single reimbursement claim submitted by a user.
// Every field except Status, ReviewerID and ProcessedAt is immutable after
// creation; Status moves from PENDING to exactly one terminal state.
type Request struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	Purpose     string          `json:"purpose"`
	Attachments []string        `json:"attachments"` // Ordered, opaque blob-store references
	Status      RequestStatus   `json:"status"`
	ReviewerID  *uuid.UUID      `json:"reviewer_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the request has reached a final state.
func (r *Request) IsTerminal() bool {
	return r.Status == RequestStatusApproved ||
		r.Status == RequestStatusRejected ||
		r.Status == RequestStatusWithdrawn
}

// IsDecision reports whether s is a valid review outcome.
func IsDecision(s RequestStatus) bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// Amount validation errors, mapped to client errors at the service boundary.
var (
	ErrAmountFormat      = errors.New("amount must be a decimal with at most 2 fractional digits")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// Integers or decimals with up to 2 digits; negatives and extra precision
// fall through. Allowed: 1, 1.2, 1.23, 0.01.
var amountRe = regexp.MustCompile(`^\d+(?:\.\d{1,2})?$`)

// ParseAmount validates a raw amount string and returns its decimal value.
// The format check runs before the numeric check, so "abc" and "1.234" fail
// with ErrAmountFormat while "0" fails with ErrAmountNotPositive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !amountRe.MatchString(raw) {
		return decimal.Zero, ErrAmountFormat
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountFormat
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	return d, nil
}
