package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/pagination"
	"github.com/foodgram/backend/internal/service"
)

// RecipeHandler serves recipe CRUD, the relation toggles and the shopping
// list download.
type RecipeHandler struct {
	cfg          *config.Config
	auth         *service.AuthService
	recipes      *service.RecipeService
	relations    *service.RelationService
	shoppingList *service.ShoppingListService
}

func NewRecipeHandler(cfg *config.Config, auth *service.AuthService, recipes *service.RecipeService,
	relations *service.RelationService, shoppingList *service.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{cfg: cfg, auth: auth, recipes: recipes, relations: relations, shoppingList: shoppingList}
}

// RegisterRoutes wires the recipe endpoints. download_shopping_cart shares
// the :id segment with Get for the same router-tree reason as the user
// routes; Get dispatches on the segment value.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("", middleware.AuthMiddleware(h.auth), h.Create)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.auth), h.Update)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.auth), h.Update)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.Delete)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.Favorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.auth), h.Unfavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	actor := actorPtr(c)

	filter := service.ListFilter{Actor: actor}
	if raw := c.Query("author"); raw != "" {
		authorID, ok := parseID(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.Author = &authorID
	}
	filter.TagSlugs = c.QueryArray("tags")
	filter.FavoritedOnly = c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true"
	filter.InCartOnly = c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true"

	params := pagination.ParseParams(c.Request, h.cfg.PageSize, h.cfg.MaxPageSize)
	recipes, count, err := h.recipes.List(c.Request.Context(), filter, params.Offset(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(c.Request, params, count, p.recipes(recipes)))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	if c.Param("id") == "download_shopping_cart" {
		h.downloadShoppingCart(c)
		return
	}

	recipeID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	recipe, err := h.recipes.GetByID(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, actorPtr(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.recipe(recipe))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, recipeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p.recipe(recipe))
}

func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}
	recipeID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, recipeID, recipeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.recipe(recipe))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}
	recipeID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addRelation(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFavorite, "recipe is not in favorites")
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.relations.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFromCart, "recipe is not in the shopping cart")
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	recipeID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if _, err := h.recipes.GetByID(c.Request.Context(), recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": fmt.Sprintf("%s/s/%d", h.cfg.BaseURL, recipeID)})
}

func (h *RecipeHandler) downloadShoppingCart(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	items, err := h.shoppingList.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	body := h.shoppingList.Render(items)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}
	recipeID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	recipe, err := add(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeMinified(recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uint) error, message string) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}
	recipeID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		relationRemoveError(c, err, message)
		return
	}
	c.Status(http.StatusNoContent)
}

func recipeInput(req RecipeRequest) service.RecipeInput {
	ingredients := make([]service.IngredientAmount, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredients = append(ingredients, service.IngredientAmount{ID: item.ID, Amount: item.Amount})
	}
	return service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		TagIDs:      req.Tags,
		Ingredients: ingredients,
	}
}
