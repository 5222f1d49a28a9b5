package handlers

import (
	"context"
	"net/http"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FundingHandler handles deposit and withdrawal approval requests
type FundingHandler struct {
	fundingService services.FundingService
}

// NewFundingHandler creates a new FundingHandler
func NewFundingHandler(fundingService services.FundingService) *FundingHandler {
	return &FundingHandler{
		fundingService: fundingService,
	}
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ApproveDeposit handles POST /wallet/deposits/:id/approve
func (h *FundingHandler) ApproveDeposit(c *gin.Context) {
	h.approve(c, "ApproveDeposit", h.fundingService.ApproveDeposit)
}

// ApproveWithdrawal handles POST /wallet/withdrawals/:id/approve
func (h *FundingHandler) ApproveWithdrawal(c *gin.Context) {
	h.approve(c, "ApproveWithdrawal", h.fundingService.ApproveWithdrawal)
}

// RejectDeposit handles POST /wallet/deposits/:id/reject
func (h *FundingHandler) RejectDeposit(c *gin.Context) {
	h.reject(c, "RejectDeposit", h.fundingService.RejectDeposit)
}

// RejectWithdrawal handles POST /wallet/withdrawals/:id/reject
func (h *FundingHandler) RejectWithdrawal(c *gin.Context) {
	h.reject(c, "RejectWithdrawal", h.fundingService.RejectWithdrawal)
}

type approveFunc func(ctx context.Context, id primitive.ObjectID, adminID string) (*models.FundingOutcome, error)

type rejectFunc func(ctx context.Context, id primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error)

func (h *FundingHandler) approve(c *gin.Context, op string, fn approveFunc) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	admin, ok := adminID(c)
	if !ok {
		return
	}

	outcome, err := fn(c.Request.Context(), id, admin)
	if err != nil {
		respondError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *FundingHandler) reject(c *gin.Context, op string, fn rejectFunc) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	admin, ok := adminID(c)
	if !ok {
		return
	}

	// The body is optional; an empty reject carries no reason.
	var request rejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	outcome, err := fn(c.Request.Context(), id, admin, request.Reason)
	if err != nil {
		respondError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}
