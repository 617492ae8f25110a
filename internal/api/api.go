package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/service"
)

// SetupAPI wires services and handlers onto the router.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client) {
	v1 := router.Group("/api/v1")
	{
		// Initialize services
		cache := service.NewOverviewCache(redisClient)
		profileService := service.NewProfileService(db)
		rollupService := service.NewRollupService(db)
		ingestService := service.NewIngestService(db, rollupService, cache)
		analyticsService := service.NewAnalyticsService(db, cache)

		// Initialize handlers
		consumptionHandler := NewConsumptionHandler(profileService, ingestService, analyticsService)
		analyticsHandler := NewAnalyticsHandler(profileService, analyticsService)

		// Register routes
		consumptionHandler.RegisterRoutes(v1)
		analyticsHandler.RegisterRoutes(v1)
	}
}
