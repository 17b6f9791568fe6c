// Command loaddata seeds tag and ingredient reference data. Ingredients are
// read from a JSON file of {"name", "measurement_unit"} objects.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
)

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#FF0000", Slug: "breakfast"},
	{Name: "Lunch", Color: "#00FF00", Slug: "lunch"},
	{Name: "Dinner", Color: "#0000FF", Slug: "dinner"},
	{Name: "Dessert", Color: "#FFA500", Slug: "dessert"},
	{Name: "Drink", Color: "#800080", Slug: "drink"},
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

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

	if err := loadTags(db); err != nil {
		logrus.Fatalf("failed to load tags: %v", err)
	}
	if err := loadIngredients(db, *ingredientsPath); err != nil {
		logrus.Fatalf("failed to load ingredients: %v", err)
	}

	logrus.Info("reference data loaded")
}

func loadTags(db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaultTags).Error
}

func loadIngredients(db *gorm.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var ingredients []models.Ingredient
	if err := json.Unmarshal(data, &ingredients); err != nil {
		return err
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500).Error
}
