package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/metrics"
	"gorm.io/gorm"
)

type (
	// RecipeLookup loads the recipe a membership refers to.
	RecipeLookup interface {
		GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
	}

	// Service is the add/remove toggle shared by favorites and the shopping cart.
	Service[T any] interface {
		Add(ctx context.Context, userID, recipeID uint) (domain.RecipeShortResponse, error)
		Remove(ctx context.Context, userID, recipeID uint) error
	}

	service[T any] struct {
		repository Repository[T]
		recipes    RecipeLookup
		label      string
	}

	FavoriteRepository     = Repository[entities.Favorite]
	ShoppingCartRepository = Repository[entities.ShoppingCart]
	FavoriteService        = Service[entities.Favorite]
	ShoppingCartService    = Service[entities.ShoppingCart]
)

const (
	LabelFavorites    = "favorites"
	LabelShoppingCart = "shopping cart"
)

func NewService[T any](repository Repository[T], recipes RecipeLookup, label string) Service[T] {
	return &service[T]{repository: repository, recipes: recipes, label: label}
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return NewRepository(db, entities.NewFavorite)
}

func NewShoppingCartRepository(db *gorm.DB) ShoppingCartRepository {
	return NewRepository(db, entities.NewShoppingCart)
}

func (s *service[T]) recipe(ctx context.Context, recipeID uint) (*entities.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *service[T]) Add(ctx context.Context, userID, recipeID uint) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	exists, err := s.repository.Exists(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if exists {
		return domain.RecipeShortResponse{}, fmt.Errorf("recipe %d is already in %s: %w", recipeID, s.label, domain.ErrAlreadyMember)
	}

	if err := s.repository.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return domain.RecipeShortResponse{}, fmt.Errorf("recipe %d is already in %s: %w", recipeID, s.label, err)
		}
		return domain.RecipeShortResponse{}, err
	}

	metrics.MembershipChanges.WithLabelValues(s.label, "add").Inc()
	return domain.NewRecipeShortResponse(recipe), nil
}

func (s *service[T]) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}

	removed, err := s.repository.Remove(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("recipe %d is not in %s: %w", recipeID, s.label, domain.ErrNotAMember)
	}

	metrics.MembershipChanges.WithLabelValues(s.label, "remove").Inc()
	return nil
}
