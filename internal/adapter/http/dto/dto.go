package dto

import (
	"time"

	"reimbursement-hub/internal/core/domain"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   UserResponse `json:"user"`
}

// CreateReimbursementRequest is the request body for submitting a claim.
// Amount stays a string so the server, not the client's JSON library,
// decides what counts as a valid money value.
type CreateReimbursementRequest struct {
	Amount      string   `json:"amount" binding:"required"`
	Purpose     string   `json:"purpose" binding:"required,max=500"`
	Attachments []string `json:"attachments"`
}

// ReviewRequest is the request body for an admin decision.
type ReviewRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// SetFundsRequest is the request body for the fund balance override.
type SetFundsRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// FundsResponse carries the remaining shared balance.
type FundsResponse struct {
	Balance string `json:"balance"`
}

// ReimbursementResponse is the public view of a reimbursement request.
type ReimbursementResponse struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Amount      string   `json:"amount"`
	Purpose     string   `json:"purpose"`
	Attachments []string `json:"attachments"`
	Status      string   `json:"status"`
	ReviewerID  *string  `json:"reviewer_id,omitempty"`
	CreatedAt   string   `json:"created_at"`
	ProcessedAt *string  `json:"processed_at,omitempty"`
}

// AuditRecordResponse is the public view of an audit record.
type AuditRecordResponse struct {
	ID           string   `json:"id"`
	RequestID    string   `json:"request_id"`
	OwnerName    string   `json:"owner_name"`
	Amount       string   `json:"amount"`
	Purpose      string   `json:"purpose"`
	Attachments  []string `json:"attachments"`
	Decision     string   `json:"decision"`
	ReviewerRole string   `json:"reviewer_role"`
	CreatedAt    string   `json:"created_at"`
}

// FromUser maps a domain user to its response form.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Role:     string(u.Role),
	}
}

// FromReimbursement maps a domain request to its response form.
func FromReimbursement(r *domain.Request) ReimbursementResponse {
	resp := ReimbursementResponse{
		ID:          r.ID.String(),
		OwnerID:     r.OwnerID.String(),
		Amount:      r.Amount.StringFixed(2),
		Purpose:     r.Purpose,
		Attachments: r.Attachments,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ReviewerID != nil {
		id := r.ReviewerID.String()
		resp.ReviewerID = &id
	}
	if r.ProcessedAt != nil {
		ts := r.ProcessedAt.UTC().Format(time.RFC3339)
		resp.ProcessedAt = &ts
	}
	return resp
}

// FromReimbursements maps a slice of domain requests.
func FromReimbursements(rs []domain.Request) []ReimbursementResponse {
	out := make([]ReimbursementResponse, 0, len(rs))
	for i := range rs {
		out = append(out, FromReimbursement(&rs[i]))
	}
	return out
}

// FromAuditRecord maps a domain audit record to its response form.
func FromAuditRecord(rec *domain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:           rec.ID.String(),
		RequestID:    rec.RequestID.String(),
		OwnerName:    rec.OwnerName,
		Amount:       rec.Amount.StringFixed(2),
		Purpose:      rec.Purpose,
		Attachments:  rec.Attachments,
		Decision:     string(rec.Decision),
		ReviewerRole: string(rec.ReviewerRole),
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromAuditRecords maps a slice of domain audit records.
func FromAuditRecords(recs []domain.AuditRecord) []AuditRecordResponse {
	out := make([]AuditRecordResponse, 0, len(recs))
	for i := range recs {
		out = append(out, FromAuditRecord(&recs[i]))
	}
	return out
}
