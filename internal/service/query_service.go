package service

import (
	"context"
	"fmt"
	"time"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const balanceTTL = 30 * time.Second

// QueryServiceImpl implements ports.QueryService. All projections are
// read-only and safe to call concurrently with any lifecycle transition.
type QueryServiceImpl struct {
	reqRepo  ports.RequestRepository
	fundRepo ports.FundRepository
	cache    ports.BalanceCache
	log      zerolog.Logger
}

// NewQueryService creates a new QueryServiceImpl.
func NewQueryService(
	reqRepo ports.RequestRepository,
	fundRepo ports.FundRepository,
	cache ports.BalanceCache,
	log zerolog.Logger,
) *QueryServiceImpl {
	return &QueryServiceImpl{
		reqRepo:  reqRepo,
		fundRepo: fundRepo,
		cache:    cache,
		log:      log,
	}
}

// MyHistory returns every request owned by the caller, newest first,
// regardless of state.
func (s *QueryServiceImpl) MyHistory(ctx context.Context, ownerID uuid.UUID) ([]domain.Request, error) {
	reqs, err := s.reqRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list by owner: %w", err))
	}
	return reqs, nil
}

// PendingQueue returns all requests awaiting review, newest first.
func (s *QueryServiceImpl) PendingQueue(ctx context.Context) ([]domain.Request, error) {
	reqs, err := s.reqRepo.ListPending(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending: %w", err))
	}
	return reqs, nil
}

// ProcessedQueue returns every request that has left PENDING, newest
// first. Withdrawn requests count as processed even though no admin
// reviewed them.
func (s *QueryServiceImpl) ProcessedQueue(ctx context.Context) ([]domain.Request, error) {
	reqs, err := s.reqRepo.ListProcessed(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list processed: %w", err))
	}
	return reqs, nil
}

// AllRequests returns every request in the system, newest first.
func (s *QueryServiceImpl) AllRequests(ctx context.Context) ([]domain.Request, error) {
	reqs, err := s.reqRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list all: %w", err))
	}
	return reqs, nil
}

// RemainingFunds returns the current shared balance, serving from the cache
// when possible. A cache failure degrades to the repository, never to an
// error; the repository is the source of truth.
func (s *QueryServiceImpl) RemainingFunds(ctx context.Context) (decimal.Decimal, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("balance cache read failed, falling through to DB")
	}
	if cached != nil {
		if d, perr := decimal.NewFromString(string(cached)); perr == nil {
			return d, nil
		}
		s.log.Warn().Str("value", string(cached)).Msg("unparseable cached balance, falling through to DB")
	}

	balance, err := s.fundRepo.GetBalance(ctx)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}

	if err := s.cache.Set(ctx, []byte(balance.String()), balanceTTL); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache balance")
	}

	return balance, nil
}
