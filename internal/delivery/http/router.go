package http

import (
	"github.com/gdugdh24/location-insights/internal/delivery/http/handler"
	"github.com/gdugdh24/location-insights/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	profileHandler *handler.DistanceProfileHandler
	adHocHandler   *handler.AdHocHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(
	profileHandler *handler.DistanceProfileHandler,
	adHocHandler *handler.AdHocHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		profileHandler: profileHandler,
		adHocHandler:   adHocHandler,
		adminHandler:   adminHandler,
		authMiddleware: authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()
	router.Use(middleware.RequestID())

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Category vocabulary (public)
		v1.GET("/location-insights/categories", r.adHocHandler.Categories)

		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Property-bound profiles
			property := protected.Group("/properties/:propertyId/distance-profile")
			{
				property.POST("", r.profileHandler.Generate)
				property.GET("", r.profileHandler.GetActive)
				property.DELETE("", r.profileHandler.DeleteActive)
				property.GET("/reports", r.profileHandler.ListReports)
				property.GET("/:reportId", r.profileHandler.GetReport)
				property.DELETE("/:reportId", r.profileHandler.DeleteReport)
				property.POST("/:reportId/update-radius", r.profileHandler.UpdateRadius)
				property.POST("/:reportId/summary", r.profileHandler.Summarize)
			}

			// Ad-hoc profiles
			adhoc := protected.Group("/location-insights/adhoc")
			{
				adhoc.POST("", r.adHocHandler.Create)
				adhoc.GET("", r.adHocHandler.List)
				adhoc.GET("/:profileId", r.adHocHandler.Get)
				adhoc.DELETE("/:profileId", r.adHocHandler.Delete)
				adhoc.POST("/:profileId/update-radius", r.adHocHandler.UpdateRadius)
				adhoc.POST("/:profileId/summary", r.adHocHandler.Summarize)
			}

			admin := protected.Group("/admin")
			admin.Use(r.authMiddleware.RequireAdmin())
			{
				admin.POST("/cleanup-profiles", r.adminHandler.CleanupProfiles)
			}
		}
	}

	return router
}
