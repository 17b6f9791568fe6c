package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Token invalidation and rate limiting degrade without redis, the
		// API itself still works.
		logrus.WithError(err).Warn("redis unavailable, continuing without it")
		redisClient = nil
	}

	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		logrus.Fatalf("failed to configure S3: %v", err)
	}

	images := service.NewImageService(s3Config)
	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	userService := service.NewUserService(db, images)
	recipeService := service.NewRecipeService(db, images)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)
	tagService := service.NewTagService(db)
	ingredientService := service.NewIngredientService(db)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     120,
			KeyPrefix: "ratelimit",
		})
	}

	engine := router.SetupRouter(router.Handlers{
		Auth:        api.NewAuthHandler(authService),
		Users:       api.NewUserHandler(cfg, authService, userService, recipeService, relationService),
		Recipes:     api.NewRecipeHandler(cfg, authService, recipeService, relationService, shoppingListService),
		Tags:        api.NewTagHandler(tagService),
		Ingredients: api.NewIngredientHandler(ingredientService),
	}, rateLimiter)

	srv := server.New(engine, fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logrus.Fatalf("server error: %v", err)
		}
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("received signal")
	}

	logrus.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server shutdown error: %v", err)
	}
	logrus.Info("server stopped")
}
