package handler

import (
	"strings"

	"reimbursement-hub/internal/adapter/http/dto"
	"reimbursement-hub/internal/adapter/http/middleware"
	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"
	"reimbursement-hub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminHandler handles the administrator endpoints: review queues, decisions,
// the fund ledger override and the audit trail.
type AdminHandler struct {
	lifecycleSvc ports.LifecycleService
	querySvc     ports.QueryService
	fundSvc      ports.FundService
	auditSvc     ports.AuditService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	lifecycleSvc ports.LifecycleService,
	querySvc ports.QueryService,
	fundSvc ports.FundService,
	auditSvc ports.AuditService,
) *AdminHandler {
	return &AdminHandler{
		lifecycleSvc: lifecycleSvc,
		querySvc:     querySvc,
		fundSvc:      fundSvc,
		auditSvc:     auditSvc,
	}
}

// ListAll handles GET /api/v1/admin/requests.
func (h *AdminHandler) ListAll(c *gin.Context) {
	reqs, err := h.querySvc.AllRequests(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromReimbursements(reqs))
}

// ListPending handles GET /api/v1/admin/requests/pending.
func (h *AdminHandler) ListPending(c *gin.Context) {
	reqs, err := h.querySvc.PendingQueue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromReimbursements(reqs))
}

// ListProcessed handles GET /api/v1/admin/requests/processed.
func (h *AdminHandler) ListProcessed(c *gin.Context) {
	reqs, err := h.querySvc.ProcessedQueue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromReimbursements(reqs))
}

// Review handles POST /api/v1/admin/requests/:id/review.
func (h *AdminHandler) Review(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid request id"))
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	reviewerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	r, err := h.lifecycleSvc.Review(c.Request.Context(), ports.ReviewInput{
		RequestID:    requestID,
		ReviewerID:   reviewerID,
		ReviewerRole: middleware.UserRole(c),
		Decision:     domain.RequestStatus(strings.ToUpper(strings.TrimSpace(req.Decision))),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromReimbursement(r))
}

// GetFunds handles GET /api/v1/admin/funds.
func (h *AdminHandler) GetFunds(c *gin.Context) {
	balance, err := h.fundSvc.Balance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FundsResponse{Balance: balance.StringFixed(2)})
}

// SetFunds handles PUT /api/v1/admin/funds.
func (h *AdminHandler) SetFunds(c *gin.Context) {
	var req dto.SetFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.fundSvc.SetBalance(c.Request.Context(), req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	// SetBalance already parsed the amount, so this cannot fail; echo the
	// normalized form so PUT and GET agree on formatting.
	balance, _ := decimal.NewFromString(req.Amount)
	response.OK(c, dto.FundsResponse{Balance: balance.StringFixed(2)})
}

// ListAudit handles GET /api/v1/admin/audit.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	recs, err := h.auditSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromAuditRecords(recs))
}
