package service

import (
	"context"
	"fmt"
	"time"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"

	"github.com/rs/zerolog"
)

const auditTimeout = 5 * time.Second

// AuditServiceImpl implements ports.AuditService. Records are written to the
// database and published to the event sink off the request path; neither
// write can fail the review that produced the record.
type AuditServiceImpl struct {
	auditRepo ports.AuditRepository
	sink      ports.AuditSink
	log       zerolog.Logger
}

// NewAuditService creates a new AuditServiceImpl. sink may be nil when no
// event stream is configured.
func NewAuditService(auditRepo ports.AuditRepository, sink ports.AuditSink, log zerolog.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{
		auditRepo: auditRepo,
		sink:      sink,
		log:       log,
	}
}

// Record persists and publishes the audit record asynchronously. The caller's
// context may be cancelled as soon as its response is written, so the
// goroutine runs on its own deadline.
func (s *AuditServiceImpl) Record(_ context.Context, rec *domain.AuditRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		if err := s.auditRepo.Create(ctx, rec); err != nil {
			s.log.Error().Err(err).
				Str("request_id", rec.RequestID.String()).
				Msg("failed to persist audit record")
		}

		if s.sink == nil {
			return
		}
		if err := s.sink.Publish(ctx, rec); err != nil {
			s.log.Error().Err(err).
				Str("request_id", rec.RequestID.String()).
				Msg("failed to publish audit record")
		}
	}()
}

// List returns all persisted audit records.
func (s *AuditServiceImpl) List(ctx context.Context) ([]domain.AuditRecord, error) {
	recs, err := s.auditRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list audit records: %w", err))
	}
	return recs, nil
}
