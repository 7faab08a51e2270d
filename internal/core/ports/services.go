package ports

import (
	"context"
	"time"

	"reimbursement-hub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Service Ports (Business Logic) ---

// LifecycleService governs the request state machine and the atomic coupling
// between approval and fund deduction.
type LifecycleService interface {
	Create(ctx context.Context, req CreateRequestInput) (*domain.Request, error)
	Review(ctx context.Context, req ReviewInput) (*domain.Request, error)
	Withdraw(ctx context.Context, requestID, callerID uuid.UUID) (*domain.Request, error)
}

// CreateRequestInput holds raw creation input. Amount stays a string until
// validated; attachments are opaque blob-store references.
type CreateRequestInput struct {
	OwnerID     uuid.UUID
	Amount      string
	Purpose     string
	Attachments []string
}

// ReviewInput holds a validated admin decision on a pending request.
type ReviewInput struct {
	RequestID    uuid.UUID
	ReviewerID   uuid.UUID
	ReviewerRole domain.Role
	Decision     domain.RequestStatus
}

// QueryService produces read-only projections; none of these mutate state
// and all are safe to call concurrently with any transition.
type QueryService interface {
	MyHistory(ctx context.Context, ownerID uuid.UUID) ([]domain.Request, error)
	PendingQueue(ctx context.Context) ([]domain.Request, error)
	ProcessedQueue(ctx context.Context) ([]domain.Request, error)
	AllRequests(ctx context.Context) ([]domain.Request, error)
	RemainingFunds(ctx context.Context) (decimal.Decimal, error)
}

// FundService exposes the role-gated administrative fund operations.
type FundService interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	SetBalance(ctx context.Context, amount string) error
}

// AuthService handles account registration, login and password changes.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, time.Time, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// AuditService records committed review decisions to the ledger-of-record
// collaborators. Record is fire-and-forget: failures are logged, never
// surfaced to the reviewing caller.
type AuditService interface {
	Record(ctx context.Context, rec *domain.AuditRecord)
	List(ctx context.Context) ([]domain.AuditRecord, error)
}

// AuditSink is the external event stream receiving audit records.
type AuditSink interface {
	Publish(ctx context.Context, rec *domain.AuditRecord) error
}

// BalanceCache is a read cache in front of the fund ledger (fast path for
// the remaining-funds projection). Get returns nil on a miss.
type BalanceCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
