package api

import (
	"context"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// presenter assembles response representations relative to one acting
// identity. The actor's relation sets are loaded once per request so a page
// of recipes does not query per row.
type presenter struct {
	actor      *uint
	favorites  map[uint]bool
	cart       map[uint]bool
	subscribed map[uint]bool
}

func newPresenter(ctx context.Context, relations *service.RelationService, actor *uint) (*presenter, error) {
	p := &presenter{actor: actor}
	if actor == nil {
		return p, nil
	}

	var err error
	if p.favorites, err = relations.FavoriteRecipeIDs(ctx, *actor); err != nil {
		return nil, err
	}
	if p.cart, err = relations.CartRecipeIDs(ctx, *actor); err != nil {
		return nil, err
	}
	if p.subscribed, err = relations.SubscribedAuthorIDs(ctx, *actor); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *presenter) user(u *models.User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: p.subscribed[u.ID],
	}
	if u.AvatarURL != "" {
		avatar := u.AvatarURL
		resp.Avatar = &avatar
	}
	return resp
}

func (p *presenter) recipe(r *models.Recipe) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, row := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           p.user(&r.Author),
		Ingredients:      ingredients,
		IsFavorited:      p.favorites[r.ID],
		IsInShoppingCart: p.cart[r.ID],
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (p *presenter) recipes(rs []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(rs))
	for i := range rs {
		out = append(out, p.recipe(&rs[i]))
	}
	return out
}

func recipeMinified(r *models.Recipe) RecipeMinifiedResponse {
	return RecipeMinifiedResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

func (p *presenter) userWithRecipes(u *models.User, recipes []models.Recipe, total int64) UserWithRecipesResponse {
	minified := make([]RecipeMinifiedResponse, 0, len(recipes))
	for i := range recipes {
		minified = append(minified, recipeMinified(&recipes[i]))
	}
	return UserWithRecipesResponse{
		UserResponse: p.user(u),
		Recipes:      minified,
		RecipesCount: total,
	}
}
