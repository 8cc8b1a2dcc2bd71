package shoppinglist

import (
	"context"

	"github.com/Notemat/foodgram/entities"
	"gorm.io/gorm"
)

type (
	ShoppingListRepository interface {
		GetCartLines(ctx context.Context, userID uint) ([]*entities.RecipeIngredient, error)
	}

	shoppingListRepository struct {
		db *gorm.DB
	}
)

func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

// GetCartLines returns every ingredient line of every recipe in the user's
// cart, in cart order and then line order.
func (r *shoppingListRepository) GetCartLines(ctx context.Context, userID uint) ([]*entities.RecipeIngredient, error) {
	var lines []*entities.RecipeIngredient
	err := r.db.WithContext(ctx).
		Select("recipe_ingredients.*").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.id").
		Order("recipe_ingredients.id").
		Preload("Ingredient").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
