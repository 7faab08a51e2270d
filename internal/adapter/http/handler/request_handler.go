package handler

import (
	"reimbursement-hub/internal/adapter/http/dto"
	"reimbursement-hub/internal/adapter/http/middleware"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"
	"reimbursement-hub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestHandler handles the user-facing reimbursement endpoints.
type RequestHandler struct {
	lifecycleSvc ports.LifecycleService
	querySvc     ports.QueryService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(lifecycleSvc ports.LifecycleService, querySvc ports.QueryService) *RequestHandler {
	return &RequestHandler{
		lifecycleSvc: lifecycleSvc,
		querySvc:     querySvc,
	}
}

// Create handles POST /api/v1/requests.
func (h *RequestHandler) Create(c *gin.Context) {
	var req dto.CreateReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	r, err := h.lifecycleSvc.Create(c.Request.Context(), ports.CreateRequestInput{
		OwnerID:     userID,
		Amount:      req.Amount,
		Purpose:     req.Purpose,
		Attachments: req.Attachments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromReimbursement(r))
}

// MyHistory handles GET /api/v1/requests/mine.
func (h *RequestHandler) MyHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	reqs, err := h.querySvc.MyHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromReimbursements(reqs))
}

// RemainingFunds handles GET /api/v1/funds. Every authenticated account can
// see the shared balance before submitting a claim.
func (h *RequestHandler) RemainingFunds(c *gin.Context) {
	balance, err := h.querySvc.RemainingFunds(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FundsResponse{Balance: balance.StringFixed(2)})
}

// Withdraw handles POST /api/v1/requests/:id/withdraw.
func (h *RequestHandler) Withdraw(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid request id"))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	r, err := h.lifecycleSvc.Withdraw(c.Request.Context(), requestID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromReimbursement(r))
}
