package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// UserService handles user reads, subscription listings and avatars.
type UserService struct {
	db     *gorm.DB
	images ImageUploader
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, images ImageUploader) *UserService {
	return &UserService{db: db, images: images}
}

// GetByID retrieves a user by id.
func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns a page of users plus the total count.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// Subscriptions returns the authors the user follows, most recent first.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := base.Session(&gorm.Session{}).
		Order("subscriptions.created_at DESC, subscriptions.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, count, nil
}

// SetAvatar stores the decoded avatar image and records its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, payload string) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.images.UploadBase64(ctx, payload, "users")
	if err != nil {
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("avatar_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}

// DeleteAvatar clears the user's avatar reference.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("avatar_url", "").Error
}
