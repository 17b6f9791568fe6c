package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// respondError maps a service error onto an HTTP status with a structured
// body. Validation errors carry the offending field; everything unexpected is
// a 500 with the detail kept out of the response.
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{vErr.Field: vErr.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already exists"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrSelfSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot subscribe to yourself"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image payload"})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "shopping cart is empty"})
	default:
		logrus.WithError(err).Error("unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// relationRemoveError is like respondError but reports a missing relation row
// as a client error. A missing target entity still falls through as a 404.
func relationRemoveError(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrRelationMissing) {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return
	}
	respondError(c, err)
}

func mustActorID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.ActingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	return userID, true
}

func actorPtr(c *gin.Context) *uint {
	if userID, ok := middleware.ActingUserID(c); ok {
		return &userID
	}
	return nil
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
