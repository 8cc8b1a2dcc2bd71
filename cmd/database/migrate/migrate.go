package migration

import (
	"fmt"

	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/logging"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entities.Recipe{}, "Tags", &entities.RecipeTag{}); err != nil {
		return fmt.Errorf("setup recipe_tags join table: %w", err)
	}

	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"tag", &entities.Tag{}},
		{"ingredient", &entities.Ingredient{}},
		{"recipe", &entities.Recipe{}},
		{"recipe tag", &entities.RecipeTag{}},
		{"recipe ingredient", &entities.RecipeIngredient{}},
		{"favorite", &entities.Favorite{}},
		{"shopping cart", &entities.ShoppingCart{}},
		{"subscribe", &entities.Subscribe{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			logging.Error().Err(err).Str("model", m.name).Msg("error migrating database")
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}

	logging.Info().Int("models", len(models)).Msg("database migrated")
	return nil
}
