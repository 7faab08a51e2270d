package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reimbursement-hub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RequestRepo implements ports.RequestRepository.
type RequestRepo struct {
	pool Pool
}

// NewRequestRepo creates a new RequestRepo.
func NewRequestRepo(pool Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

const requestColumns = `id, owner_id, amount, purpose, attachments, status, reviewer_id, created_at, processed_at`

// Create inserts a new reimbursement request.
func (r *RequestRepo) Create(ctx context.Context, req *domain.Request) error {
	query := `INSERT INTO reimbursement_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.OwnerID, req.Amount, req.Purpose, req.Attachments,
		req.Status, req.ReviewerID, req.CreatedAt, req.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetByID fetches a request by id (without locking). Returns nil, nil when absent.
func (r *RequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests WHERE id = $1`
	return scanRequestRow(r.pool.QueryRow(ctx, query, id), "get request by id")
}

// GetByIDForUpdate fetches a request by id with pessimistic locking.
// This MUST be called within a transaction.
func (r *RequestRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests WHERE id = $1 FOR UPDATE`
	return scanRequestRow(tx.QueryRow(ctx, query, id), "get request for update")
}

// UpdateStatus transitions a request out of PENDING within a transaction.
// The status guard makes a lost race show up as zero affected rows.
func (r *RequestRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RequestStatus, reviewerID *uuid.UUID, processedAt time.Time) error {
	query := `UPDATE reimbursement_requests
		SET status = $1, reviewer_id = $2, processed_at = $3
		WHERE id = $4 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, status, reviewerID, processedAt, id)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("request %s is no longer pending", id)
	}
	return nil
}

// ListByOwner returns all requests of one owner, newest first.
func (r *RequestRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests
		WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list requests by owner: %w", err)
	}
	return scanRequestRows(rows)
}

// ListAll returns every request, newest first.
func (r *RequestRepo) ListAll(ctx context.Context) ([]domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all requests: %w", err)
	}
	return scanRequestRows(rows)
}

// ListPending returns the admin review queue, newest first.
func (r *RequestRepo) ListPending(ctx context.Context) ([]domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests
		WHERE status = 'PENDING' ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return scanRequestRows(rows)
}

// ListProcessed returns everything that already reached a terminal state, newest first.
func (r *RequestRepo) ListProcessed(ctx context.Context) ([]domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests
		WHERE status <> 'PENDING' ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list processed requests: %w", err)
	}
	return scanRequestRows(rows)
}

func scanRequestRow(row pgx.Row, op string) (*domain.Request, error) {
	req := &domain.Request{}
	err := row.Scan(
		&req.ID, &req.OwnerID, &req.Amount, &req.Purpose, &req.Attachments,
		&req.Status, &req.ReviewerID, &req.CreatedAt, &req.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

func scanRequestRows(rows pgx.Rows) ([]domain.Request, error) {
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		req := domain.Request{}
		if err := rows.Scan(
			&req.ID, &req.OwnerID, &req.Amount, &req.Purpose, &req.Attachments,
			&req.Status, &req.ReviewerID, &req.CreatedAt, &req.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request rows: %w", err)
	}
	return out, nil
}
