package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siniestros-lookup/app/controllers"
	"github.com/siniestros-lookup/helpers/utils"
	"github.com/siniestros-lookup/internal/metrics"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, searchController *controllers.SearchController, adminController *controllers.AdminController) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/regions", searchController.Regions)
		v1.GET("/regions/:region/comunas", searchController.Comunas)
		v1.GET("/regions/:region/comunas/:comuna/streets", searchController.Streets)

		v1.GET("/search", searchController.Search)
		v1.POST("/search", searchController.Search)
		v1.GET("/search/export", searchController.Export)

		// Admin routes
		if adminController != nil {
			admin := v1.Group("/admin")
			{
				admin.GET("/stats", adminController.GetStats)
				admin.POST("/cache/clear", adminController.ClearCache)
				admin.POST("/cache/invalidate", adminController.InvalidateCache)
				admin.POST("/streets/reindex", adminController.ReindexStreets)
			}
		}

		v1.GET("/health", searchController.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, searchController *controllers.SearchController) {
	router.GET("/health", searchController.HealthCheck)
	router.GET("/ready", searchController.HealthCheck)
	router.GET("/live", searchController.HealthCheck)
}

// SetupMetricsRoutes thiết lập metrics routes (cho Prometheus)
func SetupMetricsRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, searchController *controllers.SearchController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, searchController)
	SetupAPIRoutes(router, searchController, adminController)
	SetupMetricsRoutes(router)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(requestID())
}

// requestID gán X-Request-ID cho mỗi request
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateUUID()
		}
		c.Set(controllers.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
