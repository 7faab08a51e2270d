package postgres

import (
	"context"
	"fmt"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, rec *domain.AuditRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_records (id, request_id, owner_name, amount, purpose, attachments, decision, reviewer_role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.RequestID, rec.OwnerName, rec.Amount, rec.Purpose,
		rec.Attachments, rec.Decision, rec.ReviewerRole, rec.CreatedAt,
	)
	return err
}

func (r *auditRepo) List(ctx context.Context) ([]domain.AuditRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, request_id, owner_name, amount, purpose, attachments, decision, reviewer_role, created_at
		 FROM audit_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		rec := domain.AuditRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.OwnerName, &rec.Amount, &rec.Purpose,
			&rec.Attachments, &rec.Decision, &rec.ReviewerRole, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
