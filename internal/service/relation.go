package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// RelationService implements the shared create-once/delete-once semantics of
// favorites, shopping-cart entries and subscriptions. A second add for the
// same pair fails with ErrAlreadyExists, a remove of a missing pair with
// ErrRelationMissing; a missing target recipe or author is ErrNotFound. The
// unique index is the final arbiter under concurrency.
type RelationService struct {
	db *gorm.DB
}

// NewRelationService creates a new RelationService instance
func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// AddFavorite marks a recipe as favorited by the user and returns the recipe.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	row := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.addRelation(ctx, &models.Favorite{}, &row, "user_id = ? AND recipe_id = ?", userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// RemoveFavorite deletes the user's favorite row for the recipe.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.removeRelation(ctx, &models.Favorite{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

// AddToCart queues a recipe in the user's shopping cart and returns the recipe.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	row := models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	if err := s.addRelation(ctx, &models.ShoppingCart{}, &row, "user_id = ? AND recipe_id = ?", userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// RemoveFromCart deletes the user's cart entry for the recipe.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.removeRelation(ctx, &models.ShoppingCart{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

// Subscribe creates a follow edge from the user to the author and returns the
// author. Following yourself is rejected before any existence check.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	if userID == authorID {
		return nil, ErrSelfSubscription
	}
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	row := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.addRelation(ctx, &models.Subscription{}, &row, "user_id = ? AND author_id = ?", userID, authorID); err != nil {
		return nil, err
	}
	return &author, nil
}

// Unsubscribe deletes the follow edge from the user to the author.
func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return s.removeRelation(ctx, &models.Subscription{}, "user_id = ? AND author_id = ?", userID, authorID)
}

// IsSubscribed reports whether user follows author.
func (s *RelationService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// FavoriteRecipeIDs returns the set of recipe ids the user has favorited.
func (s *RelationService) FavoriteRecipeIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.idSet(ctx, &models.Favorite{}, "recipe_id", userID)
}

// CartRecipeIDs returns the set of recipe ids in the user's shopping cart.
func (s *RelationService) CartRecipeIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.idSet(ctx, &models.ShoppingCart{}, "recipe_id", userID)
}

// SubscribedAuthorIDs returns the set of author ids the user follows.
func (s *RelationService) SubscribedAuthorIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.idSet(ctx, &models.Subscription{}, "author_id", userID)
}

func (s *RelationService) idSet(ctx context.Context, model interface{}, column string, userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(model).Where("user_id = ?", userID).Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *RelationService) getRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RelationService) addRelation(ctx context.Context, model, row interface{}, query string, args ...interface{}) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		// A concurrent add can slip past the pre-check; the unique index
		// decides and the loser reports the duplicate, not an internal error.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *RelationService) removeRelation(ctx context.Context, model interface{}, query string, args ...interface{}) error {
	res := s.db.WithContext(ctx).Where(query, args...).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRelationMissing
	}
	return nil
}
