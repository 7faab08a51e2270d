package ports

import (
	"context"
	"time"

	"reimbursement-hub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RequestRepository defines persistence operations for reimbursement requests.
// Methods accepting pgx.Tx run inside transaction blocks so the status write
// and the ledger adjustment commit as one unit.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	// GetByIDForUpdate locks the request row. MUST be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Request, error)
	// UpdateStatus transitions a PENDING request; the write is guarded by
	// status = 'PENDING' so a lost race surfaces as zero affected rows.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RequestStatus, reviewerID *uuid.UUID, processedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Request, error)
	ListAll(ctx context.Context) ([]domain.Request, error)
	ListPending(ctx context.Context) ([]domain.Request, error)
	ListProcessed(ctx context.Context) ([]domain.Request, error)
}

// FundRepository defines persistence operations for the shared fund balance.
type FundRepository interface {
	GetBalance(ctx context.Context) (decimal.Decimal, error)
	// SetBalance overwrites the balance unconditionally (admin override).
	SetBalance(ctx context.Context, amount decimal.Decimal) error
	// Adjust applies balance += delta as a single statement. MUST be called
	// within a transaction so it commits together with the status write.
	Adjust(ctx context.Context, tx pgx.Tx, delta decimal.Decimal) error
}

// UserRepository defines persistence operations for user accounts.
// Username lookups are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AuditRepository persists committed review decisions.
type AuditRepository interface {
	Create(ctx context.Context, rec *domain.AuditRecord) error
	List(ctx context.Context) ([]domain.AuditRecord, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
