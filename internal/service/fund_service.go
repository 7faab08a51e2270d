package service

import (
	"context"
	"fmt"

	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FundServiceImpl implements ports.FundService. Both operations are
// admin-only; the HTTP layer enforces the role gate.
type FundServiceImpl struct {
	fundRepo ports.FundRepository
	cache    ports.BalanceCache
	log      zerolog.Logger
}

// NewFundService creates a new FundServiceImpl.
func NewFundService(fundRepo ports.FundRepository, cache ports.BalanceCache, log zerolog.Logger) *FundServiceImpl {
	return &FundServiceImpl{
		fundRepo: fundRepo,
		cache:    cache,
		log:      log,
	}
}

// Balance reads the balance directly from the ledger, bypassing the cache.
// Admins adjusting funds want the committed value, not a projection.
func (s *FundServiceImpl) Balance(ctx context.Context) (decimal.Decimal, error) {
	balance, err := s.fundRepo.GetBalance(ctx)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}
	return balance, nil
}

// SetBalance overwrites the shared balance unconditionally. Unlike request
// amounts, any parseable decimal is accepted: zero and negative values are
// legitimate override targets.
func (s *FundServiceImpl) SetBalance(ctx context.Context, amount string) error {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return apperror.ErrInvalidAmount()
	}

	if err := s.fundRepo.SetBalance(ctx, d); err != nil {
		return apperror.ErrLedgerWrite(fmt.Errorf("set balance: %w", err))
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate balance cache")
	}

	s.log.Info().Str("balance", d.String()).Msg("fund balance overwritten")
	return nil
}
