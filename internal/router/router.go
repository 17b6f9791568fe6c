package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
)

// Handlers bundles the per-resource handlers the router wires up.
type Handlers struct {
	Auth        *api.AuthHandler
	Users       *api.UserHandler
	Recipes     *api.RecipeHandler
	Tags        *api.TagHandler
	Ingredients *api.IngredientHandler
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, rateLimiter *middleware.RateLimiter) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api")

	h.Auth.RegisterRoutes(v1)
	h.Users.RegisterRoutes(v1)
	h.Recipes.RegisterRoutes(v1)
	h.Tags.RegisterRoutes(v1)
	h.Ingredients.RegisterRoutes(v1)

	return router
}
