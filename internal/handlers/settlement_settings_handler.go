package handlers

import (
	"net/http"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

// SettlementSettingsHandler handles the prize formula settings
type SettlementSettingsHandler struct {
	settingsService services.SettlementSettingsService
}

// NewSettlementSettingsHandler creates a new SettlementSettingsHandler
func NewSettlementSettingsHandler(settingsService services.SettlementSettingsService) *SettlementSettingsHandler {
	return &SettlementSettingsHandler{
		settingsService: settingsService,
	}
}

// GetSettings handles GET /settings/settlement
func (h *SettlementSettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, "GetSettings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings/settlement
func (h *SettlementSettingsHandler) UpdateSettings(c *gin.Context) {
	var request struct {
		KillPoolPolicy models.KillPoolPolicy `json:"killPoolPolicy" binding:"required,oneof=remainder percentage"`
		PerKillPolicy  models.PerKillPolicy  `json:"perKillPolicy" binding:"required,oneof=recorded_kills eliminations"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err.Error())
		return
	}
	admin, ok := adminID(c)
	if !ok {
		return
	}

	policy := models.SettlementPolicy{KillPool: request.KillPoolPolicy, PerKill: request.PerKillPolicy}
	settings, err := h.settingsService.UpdatePolicy(c.Request.Context(), policy, admin)
	if err != nil {
		respondError(c, "UpdateSettings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
