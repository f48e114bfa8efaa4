// Package api - Router setup
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(handler *Handler, authHandler *AuthHandler, appHandler *ApplicationHandler, attrHandler *AttributeHandler, orgHandler *OrganisationHandler, allowedOrigins []string) *gin.Engine {
	// Decode JSON numbers as json.Number so attribute values keep their
	// exact text; float64 would round integers above 2^53.
	binding.EnableDecoderUseNumber = true

	r := gin.Default()

	// The landing page is the application tree
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/applications")
	})

	// CORS configuration - when credentials are used, specific origins must
	// be provided (not *)
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		// Development defaults - in production, set CORS_ALLOWED_ORIGINS
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8090",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:8090",
		}
	}
	r.Use(cors.New(corsConfig))

	// Health check (no auth required)
	r.GET("/api/health", handler.Health)

	// ==========================================================================
	// AUTH API - Authentication endpoints
	// ==========================================================================
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	authProtected := r.Group("/auth")
	authProtected.Use(handler.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.Me)
	}

	// ==========================================================================
	// PUBLIC API - CRUD over the three hierarchies
	// ==========================================================================
	apps := r.Group("/applications")
	{
		apps.GET("", appHandler.List)
		apps.GET("/tree", appHandler.Tree)
		apps.GET("/slug/:slug", appHandler.GetBySlug)
		apps.GET("/:id", appHandler.Get)
		apps.GET("/:id/ancestors", appHandler.Ancestors)
		apps.GET("/:id/descendants", appHandler.Descendants)
		apps.GET("/:id/children", appHandler.Children)
		apps.POST("", appHandler.Create)
		apps.PUT("/:id", appHandler.Update)
		apps.DELETE("/:id", appHandler.Delete)
	}

	attrs := r.Group("/attributes")
	{
		attrs.GET("", attrHandler.List)
		attrs.GET("/tree", attrHandler.Tree)
		attrs.GET("/slug/:slug", attrHandler.GetBySlug)
		attrs.GET("/:id", attrHandler.Get)
		attrs.GET("/:id/ancestors", attrHandler.Ancestors)
		attrs.GET("/:id/descendants", attrHandler.Descendants)
		attrs.GET("/:id/children", attrHandler.Children)
		attrs.POST("", attrHandler.Create)
		attrs.PUT("/:id", attrHandler.Update)
		attrs.DELETE("/:id", attrHandler.Delete)
	}

	orgs := r.Group("/organisations")
	{
		orgs.GET("", orgHandler.List)
		orgs.GET("/tree", orgHandler.Tree)
		orgs.GET("/slug/:slug", orgHandler.GetBySlug)
		orgs.GET("/:id", orgHandler.Get)
		orgs.GET("/:id/ancestors", orgHandler.Ancestors)
		orgs.GET("/:id/descendants", orgHandler.Descendants)
		orgs.GET("/:id/children", orgHandler.Children)
		orgs.POST("", orgHandler.Create)
		orgs.PUT("/:id", orgHandler.Update)
		orgs.DELETE("/:id", orgHandler.Delete)
	}

	// ==========================================================================
	// ADMIN API - Management surface: filtered lists, picklists and writes
	// Requires authentication
	// ==========================================================================
	admin := r.Group("/admin")
	admin.Use(handler.AuthMiddleware())
	{
		// Application management
		admin.GET("/applications", appHandler.AdminList)
		admin.GET("/applications/options", appHandler.Options)
		admin.POST("/applications", appHandler.Create)
		admin.PUT("/applications/:id", appHandler.Update)
		admin.DELETE("/applications/:id", appHandler.Delete)

		// Attribute management
		admin.GET("/attributes", attrHandler.AdminList)
		admin.GET("/attributes/options", attrHandler.Options)
		admin.GET("/attributes/data-types", attrHandler.DataTypes)
		admin.POST("/attributes", attrHandler.Create)
		admin.PUT("/attributes/:id", attrHandler.Update)
		admin.DELETE("/attributes/:id", attrHandler.Delete)

		// Organisation management
		admin.GET("/organisations", orgHandler.AdminList)
		admin.GET("/organisations/options", orgHandler.Options)
		admin.POST("/organisations", orgHandler.Create)
		admin.PUT("/organisations/:id", orgHandler.Update)
		admin.DELETE("/organisations/:id", orgHandler.Delete)
	}

	return r
}
