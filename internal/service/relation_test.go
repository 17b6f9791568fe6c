package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestFavoriteAddRemove(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	tag := testhelpers.CreateTestTag(t, db, "dinner")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "soup", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 5})

	got, err := svc.AddFavorite(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)

	_, err = svc.AddFavorite(ctx, reader.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, svc.RemoveFavorite(ctx, reader.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, reader.ID, recipe.ID), ErrRelationMissing)
}

func TestFavoriteUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	reader := testhelpers.CreateTestUser(t, db, "reader")

	_, err := svc.AddFavorite(ctx, reader.ID, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
	// A remove against an absent recipe reports the recipe, not the row.
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, reader.ID, 12345), ErrNotFound)
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, reader.ID, 12345), ErrNotFound)
}

func TestCartAddRemove(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	tag := testhelpers.CreateTestTag(t, db, "lunch")
	salt := testhelpers.CreateTestIngredient(t, db, "salt", "g")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "salad", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 3})

	_, err := svc.AddToCart(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, reader.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	ids, err := svc.CartRecipeIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.True(t, ids[recipe.ID])

	require.NoError(t, svc.RemoveFromCart(ctx, reader.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, reader.ID, recipe.ID), ErrRelationMissing)
}

func TestSubscribe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")

	got, err := svc.Subscribe(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	subscribed, err := svc.IsSubscribed(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	_, err = svc.Subscribe(ctx, reader.ID, author.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, svc.Unsubscribe(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, svc.Unsubscribe(ctx, reader.ID, author.ID), ErrRelationMissing)
}

func TestSubscribeToSelf(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "loner")

	_, err := svc.Subscribe(ctx, user.ID, user.ID)
	assert.ErrorIs(t, err, ErrSelfSubscription)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	reader := testhelpers.CreateTestUser(t, db, "reader")

	_, err := svc.Subscribe(ctx, reader.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Unsubscribe(ctx, reader.ID, 999), ErrNotFound)
}

func TestRelationsAreIndependentPerUser(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	first := testhelpers.CreateTestUser(t, db, "first")
	second := testhelpers.CreateTestUser(t, db, "second")
	tag := testhelpers.CreateTestTag(t, db, "dessert")
	sugar := testhelpers.CreateTestIngredient(t, db, "sugar", "g")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "cake", []*models.Tag{tag}, map[*models.Ingredient]int{sugar: 100})

	_, err := svc.AddFavorite(ctx, first.ID, recipe.ID)
	require.NoError(t, err)

	ids, err := svc.FavoriteRecipeIDs(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = svc.AddFavorite(ctx, second.ID, recipe.ID)
	require.NoError(t, err)
}
