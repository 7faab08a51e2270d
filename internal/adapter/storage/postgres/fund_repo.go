package postgres

import (
	"context"
	"errors"
	"fmt"

	"reimbursement-hub/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// FundRepo implements ports.FundRepository against the single fund ledger row.
type FundRepo struct {
	pool Pool
}

// NewFundRepo creates a new FundRepo.
func NewFundRepo(pool Pool) *FundRepo {
	return &FundRepo{pool: pool}
}

// GetBalance returns the current fund balance. A missing row reads as zero,
// matching the behavior before funds are first configured.
func (r *FundRepo) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT value FROM fund_ledger WHERE key = $1`

	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, query, domain.FundLedgerKey).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get fund balance: %w", err)
	}
	return balance, nil
}

// SetBalance overwrites the balance unconditionally (administrative override).
func (r *FundRepo) SetBalance(ctx context.Context, amount decimal.Decimal) error {
	query := `INSERT INTO fund_ledger (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, domain.FundLedgerKey, amount); err != nil {
		return fmt.Errorf("set fund balance: %w", err)
	}
	return nil
}

// Adjust applies balance += delta as one statement inside the caller's
// transaction. The read and the write happen in the same statement, so
// concurrent adjustments cannot lose updates. No floor is applied; the
// balance is allowed to go negative.
func (r *FundRepo) Adjust(ctx context.Context, tx pgx.Tx, delta decimal.Decimal) error {
	query := `INSERT INTO fund_ledger (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = fund_ledger.value + EXCLUDED.value, updated_at = NOW()`

	if _, err := tx.Exec(ctx, query, domain.FundLedgerKey, delta); err != nil {
		return fmt.Errorf("adjust fund balance: %w", err)
	}
	return nil
}
