package handlers

import (
	"net/http"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

// PrizeHandler handles prize preview and payout requests
type PrizeHandler struct {
	prizeService services.PrizeDistributionService
}

// NewPrizeHandler creates a new PrizeHandler
func NewPrizeHandler(prizeService services.PrizeDistributionService) *PrizeHandler {
	return &PrizeHandler{
		prizeService: prizeService,
	}
}

// GetPrizeDistribution handles GET /tournaments/:id/prize-distribution
func (h *PrizeHandler) GetPrizeDistribution(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	preview, err := h.prizeService.GetPrizeDistribution(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetPrizeDistribution", err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// DistributePrizes handles POST /tournaments/:id/distribute-prizes
func (h *PrizeHandler) DistributePrizes(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	admin, ok := adminID(c)
	if !ok {
		return
	}

	result, err := h.prizeService.DistributePrizes(c.Request.Context(), id, admin)
	if err != nil {
		respondError(c, "DistributePrizes", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"distributions": result.Distributions,
		"summary":       result.Summary,
	})
}
