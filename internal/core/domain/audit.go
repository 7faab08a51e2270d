package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditRecord is the ledger-of-record entry emitted once per committed
// review decision. It is written after the lifecycle transaction commits;
// sink failures never roll back the transition.
type AuditRecord struct {
	ID           uuid.UUID       `json:"id"`
	RequestID    uuid.UUID       `json:"request_id"`
	OwnerName    string          `json:"owner_name"`
	Amount       decimal.Decimal `json:"amount"`
	Purpose      string          `json:"purpose"`
	Attachments  []string        `json:"attachments"`
	Decision     RequestStatus   `json:"decision"`
	ReviewerRole Role            `json:"reviewer_role"`
	CreatedAt    time.Time       `json:"created_at"`
}
