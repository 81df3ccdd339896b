package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppayment "github.com/visaflow/backend/internal/application/payment"
)

// ApprovalHandler handles the financing approval workflow endpoints
type ApprovalHandler struct {
	BaseHandler
	approvalService *apppayment.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvalService *apppayment.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// RegisterRoutes registers approval routes
func (h *ApprovalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	financing := rg.Group("/financing")
	{
		financing.POST("/:id/approve", h.Approve)
		financing.POST("/:id/reject", h.Reject)
	}
}

// Approve godoc
// @ID           approveFinancing
// @Summary      Approve a financing payment
// @Description  Moves a pending financing record to approved; concurrent deciders lose with a conflict
// @Tags         financing
// @Produce      json
// @Param        X-Actor-ID header string true "Approving user ID" format(uuid)
// @Param        id path string true "Financing record ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /financing/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.decide(c, h.approvalService.Approve)
}

// Reject godoc
// @ID           rejectFinancing
// @Summary      Reject a financing payment
// @Description  Moves a pending financing record to rejected; concurrent deciders lose with a conflict
// @Tags         financing
// @Produce      json
// @Param        X-Actor-ID header string true "Rejecting user ID" format(uuid)
// @Param        id path string true "Financing record ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /financing/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.decide(c, h.approvalService.Reject)
}

func (h *ApprovalHandler) decide(c *gin.Context, decision func(ctx context.Context, financingID, actorID uuid.UUID) (*apppayment.FinancingView, error)) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "X-Actor-ID header is required")
		return
	}

	financingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid financing ID format")
		return
	}

	view, err := decision(c.Request.Context(), financingID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, view)
}
