package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siniestros-lookup/app/controllers"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Siniestros Lookup Service",
				"version": controllers.Version,
				"docs":    "/docs",
			})
		})

		// API documentation
		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "Siniestros Lookup API v1",
				"endpoints": map[string]string{
					"regions": "GET /v1/regions",
					"comunas": "GET /v1/regions/:region/comunas",
					"streets": "GET /v1/regions/:region/comunas/:comuna/streets?q=&limit=",
					"search":  "GET|POST /v1/search?region=&comuna=&calle_a=&calle_b=&page=",
					"export":  "GET /v1/search/export?format=ndjson&gzip=1",
					"health":  "GET /v1/health",
					"metrics": "GET /metrics",
				},
			})
		})
	}
}
