package routes

import (
	"net/http"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/config"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/handlers"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerDependencies holds all the handlers needed for routing
type HandlerDependencies struct {
	PrizeHandler              *handlers.PrizeHandler
	FundingHandler            *handlers.FundingHandler
	WalletHandler             *handlers.WalletHandler
	SettlementSettingsHandler *handlers.SettlementSettingsHandler
	RateLimiter               *middleware.RateLimiter
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	// Request bodies carry decimal amounts
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterDecimalType(v)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWT.Secret))
	protected.Use(middleware.RequireRole(cfg.JWT.AdminRoles...))

	// Money-moving routes share the per-client limiter
	moneyMoving := []gin.HandlerFunc{}
	if deps.RateLimiter != nil {
		moneyMoving = append(moneyMoving, middleware.RateLimitMiddleware(deps.RateLimiter))
	}
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, moneyMoving...), h)
	}

	{
		tournaments := protected.Group("/tournaments")
		{
			tournaments.GET("/:id/prize-distribution", deps.PrizeHandler.GetPrizeDistribution)
			tournaments.POST("/:id/distribute-prizes", limited(deps.PrizeHandler.DistributePrizes)...)
		}

		wallet := protected.Group("/wallet")
		{
			wallet.POST("/deposits/:id/approve", limited(deps.FundingHandler.ApproveDeposit)...)
			wallet.POST("/deposits/:id/reject", limited(deps.FundingHandler.RejectDeposit)...)
			wallet.POST("/deposits/:id/sync", deps.WalletHandler.SyncDeposit)
			wallet.POST("/withdrawals/:id/approve", limited(deps.FundingHandler.ApproveWithdrawal)...)
			wallet.POST("/withdrawals/:id/reject", limited(deps.FundingHandler.RejectWithdrawal)...)
			wallet.POST("/withdrawals/:id/sync", deps.WalletHandler.SyncWithdrawal)
			wallet.GET("/users/:id/balance", deps.WalletHandler.GetBalance)
			wallet.POST("/users/:id/bonus", limited(deps.WalletHandler.GrantBonus)...)
			wallet.POST("/reconcile", deps.WalletHandler.Reconcile)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("/settlement", deps.SettlementSettingsHandler.GetSettings)
			settings.PUT("/settlement", deps.SettlementSettingsHandler.UpdateSettings)
		}
	}

	return router
}
