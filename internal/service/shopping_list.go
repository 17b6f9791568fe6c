package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// ShoppingListFilename is the suggested download filename for the report.
const ShoppingListFilename = "shopping_list.txt"

// ShoppingListItem is one aggregated ingredient line.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int    `json:"total"`
}

// ShoppingListService computes the per-ingredient totals across every recipe
// in a user's shopping cart.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate joins the user's cart entries to their recipes' ingredient rows,
// groups by ingredient identity (name + unit, not row id) and sums amounts.
// An empty cart is an error, not an empty report.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var cartSize int64
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Where("user_id = ?", userID).Count(&cartSize).Error; err != nil {
		return nil, err
	}
	if cartSize == 0 {
		return nil, ErrEmptyCart
	}

	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	// Sorted here rather than in SQL so the output is byte-ordered and does
	// not depend on the database collation.
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})

	return items, nil
}

// Render produces the downloadable plain-text report for the aggregated items.
func (s *ShoppingListService) Render(items []ShoppingListItem) []byte {
	var b strings.Builder
	b.WriteString("Shopping list:\n\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "• %s (%s) — %d\n", item.Name, item.MeasurementUnit, item.Total)
	}
	fmt.Fprintf(&b, "\nTotal: %d ingredients\n", len(items))
	return []byte(b.String())
}
