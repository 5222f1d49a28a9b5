package handlers

import (
	"net/http"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler handles balance lookups, bonus grants and ledger reconciliation
type WalletHandler struct {
	walletService services.WalletService
	reconciler    services.ReconciliationService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService services.WalletService, reconciler services.ReconciliationService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		reconciler:    reconciler,
	}
}

type bonusRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Description string          `json:"description" binding:"omitempty,max=200"`
}

// GetBalance handles GET /wallet/users/:id/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "GetBalance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "walletBalance": balance})
}

// GrantBonus handles POST /wallet/users/:id/bonus
func (h *WalletHandler) GrantBonus(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	admin, ok := adminID(c)
	if !ok {
		return
	}

	var request bonusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err.Error())
		return
	}

	tx, balance, err := h.walletService.GrantBonus(c.Request.Context(), userID, request.Amount, request.Description, admin)
	if err != nil {
		respondError(c, "GrantBonus", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "transaction": tx, "newBalance": balance})
}

// SyncDeposit handles POST /wallet/deposits/:id/sync
func (h *WalletHandler) SyncDeposit(c *gin.Context) {
	h.sync(c, models.FundingKindDeposit)
}

// SyncWithdrawal handles POST /wallet/withdrawals/:id/sync
func (h *WalletHandler) SyncWithdrawal(c *gin.Context) {
	h.sync(c, models.FundingKindWithdrawal)
}

func (h *WalletHandler) sync(c *gin.Context, kind models.FundingKind) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reconciler.SyncTransactionStatus(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, "SyncTransactionStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": result != services.SyncConflict, "result": result})
}

// Reconcile handles POST /wallet/reconcile and runs one repair pass immediately
func (h *WalletHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.RepairUnsynced(c.Request.Context())
	if err != nil {
		respondError(c, "Reconcile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}
