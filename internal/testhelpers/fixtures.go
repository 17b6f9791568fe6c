package testhelpers

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// TestPassword is the plaintext password shared by users created through
// CreateTestUser.
const TestPassword = "password123"

// CreateTestUser inserts a user whose email and username are derived from the
// given name.
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		Username:     name,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTag inserts a tag with a slug derived from the name.
func CreateTestTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Name:  name,
		Color: "#49B64E",
		Slug:  name,
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestIngredient inserts an ingredient reference row.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{
		Name:            name,
		MeasurementUnit: unit,
	}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// CreateTestRecipe inserts a recipe with the given tags and ingredient rows
// already wired, bypassing image upload.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, ingredients map[*models.Ingredient]int) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "step one, step two",
		CookingTime: 10,
		ImageURL:    "https://example.com/media/" + name + ".png",
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}

	for _, tag := range tags {
		if err := db.Model(recipe).Association("Tags").Append(tag); err != nil {
			t.Fatalf("failed to attach tag: %v", err)
		}
	}
	for ingredient, amount := range ingredients {
		row := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to attach ingredient: %v", err)
		}
	}
	return recipe
}
