package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LifecycleServiceImpl implements ports.LifecycleService.
type LifecycleServiceImpl struct {
	reqRepo    ports.RequestRepository
	fundRepo   ports.FundRepository
	userRepo   ports.UserRepository
	transactor ports.DBTransactor
	cache      ports.BalanceCache
	audit      ports.AuditService
	log        zerolog.Logger
}

// NewLifecycleService creates a new LifecycleServiceImpl.
func NewLifecycleService(
	reqRepo ports.RequestRepository,
	fundRepo ports.FundRepository,
	userRepo ports.UserRepository,
	transactor ports.DBTransactor,
	cache ports.BalanceCache,
	audit ports.AuditService,
	log zerolog.Logger,
) *LifecycleServiceImpl {
	return &LifecycleServiceImpl{
		reqRepo:    reqRepo,
		fundRepo:   fundRepo,
		userRepo:   userRepo,
		transactor: transactor,
		cache:      cache,
		audit:      audit,
		log:        log,
	}
}

// Create validates and persists a new reimbursement request in PENDING state.
// The amount string is format-checked before it is evaluated numerically, so
// malformed input never reaches the positivity check. Creation never touches
// the fund ledger.
func (s *LifecycleServiceImpl) Create(ctx context.Context, req ports.CreateRequestInput) (*domain.Request, error) {
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	if len(req.Attachments) == 0 {
		return nil, apperror.ErrMissingAttachment()
	}
	for _, a := range req.Attachments {
		if a == "" {
			return nil, apperror.ErrMissingAttachment()
		}
	}

	r := &domain.Request{
		ID:          uuid.New(),
		OwnerID:     req.OwnerID,
		Amount:      amount,
		Purpose:     req.Purpose,
		Attachments: req.Attachments,
		Status:      domain.RequestStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.reqRepo.Create(ctx, r); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create request: %w", err))
	}

	s.log.Info().
		Str("request_id", r.ID.String()).
		Str("owner_id", r.OwnerID.String()).
		Str("amount", amount.String()).
		Msg("reimbursement request created")

	return r, nil
}

// Review applies an admin decision to a pending request. An approval deducts
// the amount from the fund ledger in the same database transaction as the
// status write, so no interleaving can observe one without the other. The
// balance has no floor; approvals beyond available funds drive it negative.
func (s *LifecycleServiceImpl) Review(ctx context.Context, req ports.ReviewInput) (*domain.Request, error) {
	if !domain.IsDecision(req.Decision) {
		return nil, apperror.ErrInvalidDecision()
	}
	if req.ReviewerRole != domain.RoleAdmin {
		return nil, apperror.ErrAdminRequired()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock the request row for the duration of the transition.
	r, err := s.reqRepo.GetByIDForUpdate(ctx, dbTx, req.RequestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock request: %w", err))
	}
	if r == nil {
		return nil, apperror.ErrNotFound("request")
	}
	if r.Status != domain.RequestStatusPending {
		return nil, apperror.ErrInvalidState(string(r.Status))
	}

	now := time.Now().UTC()
	if err := s.reqRepo.UpdateStatus(ctx, dbTx, r.ID, req.Decision, &req.ReviewerID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}

	if req.Decision == domain.RequestStatusApproved {
		if err := s.fundRepo.Adjust(ctx, dbTx, r.Amount.Neg()); err != nil {
			return nil, apperror.ErrLedgerWrite(fmt.Errorf("deduct funds: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrLedgerWrite(fmt.Errorf("commit tx: %w", err))
	}

	r.Status = req.Decision
	r.ReviewerID = &req.ReviewerID
	r.ProcessedAt = &now

	// Post-commit: drop the cached balance (best-effort).
	if req.Decision == domain.RequestStatusApproved {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate balance cache")
		}
	}

	s.recordAudit(ctx, r, req.ReviewerRole)

	s.log.Info().
		Str("request_id", r.ID.String()).
		Str("reviewer_id", req.ReviewerID.String()).
		Str("decision", string(req.Decision)).
		Msg("reimbursement request reviewed")

	return r, nil
}

// Withdraw retracts a caller's own pending request. Withdrawal never touches
// the fund ledger. Ownership is checked before state, so a foreign caller
// learns the request exists but not its state.
func (s *LifecycleServiceImpl) Withdraw(ctx context.Context, requestID, callerID uuid.UUID) (*domain.Request, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	r, err := s.reqRepo.GetByIDForUpdate(ctx, dbTx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock request: %w", err))
	}
	if r == nil {
		return nil, apperror.ErrNotFound("request")
	}
	if r.OwnerID != callerID {
		return nil, apperror.ErrForbidden()
	}
	if r.Status != domain.RequestStatusPending {
		return nil, apperror.ErrInvalidState(string(r.Status))
	}

	now := time.Now().UTC()
	if err := s.reqRepo.UpdateStatus(ctx, dbTx, r.ID, domain.RequestStatusWithdrawn, nil, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	r.Status = domain.RequestStatusWithdrawn
	r.ProcessedAt = &now

	s.log.Info().
		Str("request_id", r.ID.String()).
		Str("owner_id", callerID.String()).
		Msg("reimbursement request withdrawn")

	return r, nil
}

// recordAudit assembles and hands off the audit record for a committed
// decision. The record carries a denormalized owner name so consumers never
// need a user lookup; a failed lookup degrades to the raw ID.
func (s *LifecycleServiceImpl) recordAudit(ctx context.Context, r *domain.Request, reviewerRole domain.Role) {
	ownerName := r.OwnerID.String()
	owner, err := s.userRepo.GetByID(ctx, r.OwnerID)
	if err != nil || owner == nil {
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn().Err(err).Str("owner_id", r.OwnerID.String()).Msg("audit owner lookup failed")
		}
	} else {
		ownerName = owner.Username
	}

	s.audit.Record(ctx, &domain.AuditRecord{
		ID:           uuid.New(),
		RequestID:    r.ID,
		OwnerName:    ownerName,
		Amount:       r.Amount,
		Purpose:      r.Purpose,
		Attachments:  r.Attachments,
		Decision:     r.Status,
		ReviewerRole: reviewerRole,
		CreatedAt:    time.Now().UTC(),
	})
}
