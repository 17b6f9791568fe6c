package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

const denylistPrefix = "token:denylist:"

// AuthService issues and verifies bearer tokens and manages user credentials.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService instance. The redis client may be
// nil, in which case logout invalidation is disabled (used in tests).
func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !usernameRe.MatchString(in.Username) {
		return nil, newValidationError("username", "may contain only letters, digits and @/./+/-/_")
	}
	if len(in.Username) > 150 {
		return nil, newValidationError("username", "must be 150 characters or fewer")
	}
	if len(in.Password) < 6 {
		return nil, newValidationError("password", "must be at least 6 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newValidationError("email", "a user with this email already exists")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newValidationError("username", "a user with this username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return &user, nil
}

// Login verifies credentials and returns a signed bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

// Logout invalidates a bearer token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.redis == nil {
		return nil
	}
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return err
	}
	ttl := s.tokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, denylistPrefix+tokenString, "1", ttl).Err()
}

// SetPassword replaces the user's password after checking the current one.
func (s *AuthService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return newValidationError("current_password", "wrong password")
	}
	if len(next) < 6 {
		return newValidationError("new_password", "must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error
}

func (s *AuthService) generateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": float64(userID),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ValidateToken resolves a bearer token to its acting identity. Tokens that
// were logged out are rejected even before their expiry.
func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	if s.redis != nil {
		n, err := s.redis.Exists(context.Background(), denylistPrefix+tokenString).Result()
		if err == nil && n > 0 {
			return nil, errors.New("token has been invalidated")
		}
	}

	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	raw, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if raw < 1 {
		return nil, fmt.Errorf("invalid user id in token: %v", raw)
	}

	return &middleware.TokenClaims{UserID: uint(raw)}, nil
}
