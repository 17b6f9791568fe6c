package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// ImageUploader stores a base64 image payload and returns a retrievable URL.
type ImageUploader interface {
	UploadBase64(ctx context.Context, payload, folder string) (string, error)
}

// RecipeService validates and persists a recipe together with its tag set and
// ingredient list as one atomic operation.
type RecipeService struct {
	db     *gorm.DB
	images ImageUploader
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageUploader) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// IngredientAmount is one submitted (ingredient, amount) pair.
type IngredientAmount struct {
	ID     uint
	Amount int
}

// RecipeInput carries everything needed to create or fully replace a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	// Image is a base64 payload; optional on update, required on create.
	Image       string
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// ListFilter narrows a recipe listing. Actor is the authenticated caller, if
// any; the favorited/in-cart restrictions yield an empty result for anonymous
// callers rather than an error.
type ListFilter struct {
	Author        *uint
	TagSlugs      []string
	FavoritedOnly bool
	InCartOnly    bool
	Actor         *uint
}

// validate checks the submitted tag and ingredient sets. The whole operation
// is rejected before any write, so no partial recipe is ever visible.
func (s *RecipeService) validate(ctx context.Context, in *RecipeInput) error {
	if len(in.Ingredients) == 0 {
		return newValidationError("ingredients", "add at least one ingredient")
	}
	if len(in.TagIDs) == 0 {
		return newValidationError("tags", "add at least one tag")
	}

	ids := make([]uint, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		ids = append(ids, item.ID)
	}
	var existing []uint
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", ids).Distinct().Pluck("id", &existing).Error; err != nil {
		return err
	}
	known := make(map[uint]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	for _, item := range in.Ingredients {
		if !known[item.ID] {
			return newValidationError("ingredients", "unknown ingredient")
		}
	}

	seen := make(map[uint]bool, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if seen[item.ID] {
			return newValidationError("ingredients", "duplicate ingredient")
		}
		seen[item.ID] = true
	}

	seenTags := make(map[uint]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			return newValidationError("tags", "duplicate tag")
		}
		seenTags[id] = true
	}
	var tagCount int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", in.TagIDs).Count(&tagCount).Error; err != nil {
		return err
	}
	if int(tagCount) != len(in.TagIDs) {
		return newValidationError("tags", "unknown tag")
	}

	if in.CookingTime < 1 {
		return newValidationError("cooking_time", "must be at least 1 minute")
	}
	for _, item := range in.Ingredients {
		if item.Amount < 1 {
			return newValidationError("amount", "must be at least 1")
		}
	}
	return nil
}

// Create persists a new recipe authored by authorID.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, newValidationError("image", "image is required")
	}

	// The upload runs outside the transaction below; a failed commit leaves
	// the object unreferenced in the bucket.
	imageURL, err := s.images.UploadBase64(ctx, in.Image, "recipes")
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		ImageURL:    imageURL,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, &recipe, in)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"recipe_id": recipe.ID, "author_id": authorID}).Info("recipe created")
	return s.GetByID(ctx, recipe.ID)
}

// Update replaces a recipe's scalar fields and substitutes its tag and
// ingredient sets wholesale. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}

	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	imageURL := recipe.ImageURL
	if in.Image != "" {
		// Same tolerated orphan as Create if the transaction fails.
		var err error
		imageURL, err = s.images.UploadBase64(ctx, in.Image, "recipes")
		if err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
			"image_url":    imageURL,
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, &recipe, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, recipe.ID)
}

// replaceAssociations sets the tag link set and inserts one RecipeIngredient
// row per submitted pair. Runs inside the caller's transaction.
func (s *RecipeService) replaceAssociations(tx *gorm.DB, recipe *models.Recipe, in RecipeInput) error {
	var tags []models.Tag
	if err := tx.Where("id IN ?", in.TagIDs).Find(&tags).Error; err != nil {
		return err
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return err
	}

	rows := make([]models.RecipeIngredient, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return tx.Create(&rows).Error
}

// Delete removes a recipe and every join row referencing it. Only the author
// may delete.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// GetByID retrieves a recipe with its author, tags and ingredient rows.
func (s *RecipeService) GetByID(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns a page of recipes matching the filter, newest first, plus the
// total match count.
func (s *RecipeService) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Recipe, int64, error) {
	if (filter.FavoritedOnly || filter.InCartOnly) && filter.Actor == nil {
		// Anonymous callers asking for their own favorites or cart get an
		// empty result, never an error.
		return []models.Recipe{}, 0, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.Author != nil {
		query = query.Where("recipes.author_id = ?", *filter.Author)
	}
	tagJoin := len(filter.TagSlugs) > 0
	if tagJoin {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
	}
	if filter.FavoritedOnly {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *filter.Actor)
	}
	if filter.InCartOnly {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", *filter.Actor)
	}

	// A recipe with several matching tags must still appear once, so the
	// tag-filtered path counts and selects distinct rows.
	countQuery := query.Session(&gorm.Session{})
	if tagJoin {
		countQuery = countQuery.Distinct("recipes.id")
	}
	var count int64
	if err := countQuery.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	findQuery := query.Session(&gorm.Session{})
	if tagJoin {
		findQuery = findQuery.Distinct("recipes.*")
	}
	var recipes []models.Recipe
	err := findQuery.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC, recipes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// ListByAuthor returns up to limit recipes by one author, newest first.
// A limit of zero or less means no cap.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountByAuthor returns the author's total recipe count.
func (s *RecipeService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// IsFavorited reports whether the user has favorited the recipe.
func (s *RecipeService) IsFavorited(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, err
}

// IsInCart reports whether the recipe is in the user's shopping cart.
func (s *RecipeService) IsInCart(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, err
}
