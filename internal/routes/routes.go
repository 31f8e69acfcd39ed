package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tierlink/backend/internal/handlers"
	"github.com/tierlink/backend/internal/middleware"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, referralHandler *handlers.ReferralHandler, healthHandler *handlers.HealthHandler, rateLimiter *middleware.RateLimiter) {
	api := router.Group("/api")
	if rateLimiter != nil {
		api.Use(rateLimiter.Middleware())
	}
	{
		api.GET("/referral", referralHandler.GetReferral)
		api.POST("/register", referralHandler.Register)
		api.GET("/inviter", referralHandler.GetInviter)
		api.GET("/team", referralHandler.GetTeam)
		api.GET("/balance", referralHandler.GetBalance)
		api.POST("/claim", referralHandler.Claim)
		api.POST("/deposit", referralHandler.Deposit)
		api.GET("/earnings-history", referralHandler.GetEarningsHistory)
		api.GET("/health", healthHandler.Health)
	}
}
