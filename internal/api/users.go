package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/pagination"
	"github.com/foodgram/backend/internal/service"
)

// UserHandler serves registration, profiles and subscriptions.
type UserHandler struct {
	cfg       *config.Config
	auth      *service.AuthService
	users     *service.UserService
	recipes   *service.RecipeService
	relations *service.RelationService
}

func NewUserHandler(cfg *config.Config, auth *service.AuthService, users *service.UserService,
	recipes *service.RecipeService, relations *service.RelationService) *UserHandler {
	return &UserHandler{cfg: cfg, auth: auth, users: users, recipes: recipes, relations: relations}
}

// RegisterRoutes wires the user endpoints. The "me", "subscriptions" and
// "set_password" paths share the :id segment because gin's router does not
// allow a static sibling next to a wildcard; Get and SetPassword dispatch on
// the segment value.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)
		users.POST("/:id", middleware.AuthMiddleware(h.auth), h.SetPassword)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
		users.PUT("/:id/avatar", middleware.AuthMiddleware(h.auth), h.SetAvatar)
		users.DELETE("/:id/avatar", middleware.AuthMiddleware(h.auth), h.DeleteAvatar)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParseParams(c.Request, h.cfg.PageSize, h.cfg.MaxPageSize)
	users, count, err := h.users.List(c.Request.Context(), params.Offset(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, actorPtr(c))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, p.user(&users[i]))
	}
	c.JSON(http.StatusOK, pagination.NewPage(c.Request, params, count, results))
}

func (h *UserHandler) Get(c *gin.Context) {
	switch c.Param("id") {
	case "me":
		h.me(c)
		return
	case "subscriptions":
		h.subscriptions(c)
		return
	}

	userID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, actorPtr(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.user(user))
}

func (h *UserHandler) me(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.user(user))
}

func (h *UserHandler) subscriptions(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	params := pagination.ParseParams(c.Request, h.cfg.PageSize, h.cfg.MaxPageSize)
	authors, count, err := h.users.Subscriptions(c.Request.Context(), userID, params.Offset(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	recipesLimit := recipesLimitParam(c)
	results := make([]UserWithRecipesResponse, 0, len(authors))
	for i := range authors {
		author := &authors[i]
		recipes, err := h.recipes.ListByAuthor(c.Request.Context(), author.ID, recipesLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		total, err := h.recipes.CountByAuthor(c.Request.Context(), author.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, p.userWithRecipes(author, recipes, total))
	}

	c.JSON(http.StatusOK, pagination.NewPage(c.Request, params, count, results))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	if c.Param("id") != "set_password" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.auth.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}
	authorID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	author, err := h.relations.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := newPresenter(c.Request.Context(), h.relations, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	recipesLimit := recipesLimitParam(c)
	recipes, err := h.recipes.ListByAuthor(c.Request.Context(), author.ID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.recipes.CountByAuthor(c.Request.Context(), author.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p.userWithRecipes(author, recipes, total))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := mustActorID(c)
	if !ok {
		return
	}
	authorID, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.relations.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		relationRemoveError(c, err, "you are not subscribed to this user")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	if c.Param("id") != "me" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	url, err := h.users.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if c.Param("id") != "me" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	userID, ok := mustActorID(c)
	if !ok {
		return
	}

	if err := h.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func recipesLimitParam(c *gin.Context) int {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0
	}
	limit, ok := parseID(raw)
	if !ok {
		return 0
	}
	return int(limit)
}
