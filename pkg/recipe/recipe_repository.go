package recipe

import (
	"context"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/pkg/membership"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uint, lines []*entities.RecipeIngredient) error
		UpdateRecipe(ctx context.Context, recipeID uint, fields map[string]any, tagIDs []uint, lines []*entities.RecipeIngredient) error
		DeleteRecipe(ctx context.Context, recipeID uint) error
		GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint, page domain.PageQuery) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error)
		GetRecipeByShortLink(ctx context.Context, code string) (*entities.Recipe, error)
		ShortLinkExists(ctx context.Context, code string) (bool, error)
		SetShortLink(ctx context.Context, recipeID uint, code string) (bool, error)
	}

	recipeRepository struct {
		db        *gorm.DB
		favorites membership.FavoriteRepository
		carts     membership.ShoppingCartRepository
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{
		db:        db,
		favorites: membership.NewFavoriteRepository(db),
		carts:     membership.NewShoppingCartRepository(db),
	}
}

func preloadAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func tagRows(recipeID uint, tagIDs []uint) []entities.RecipeTag {
	rows := make([]entities.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, entities.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return rows
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uint, lines []*entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			rows := tagRows(recipe.ID, tagIDs)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		for _, line := range lines {
			line.RecipeID = recipe.ID
		}
		if len(lines) > 0 {
			if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateRecipe applies fields, then replaces tag links and ingredient lines
// when the corresponding slice is non-nil. All writes share one transaction.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipeID uint, fields map[string]any, tagIDs []uint, lines []*entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&entities.Recipe{ID: recipeID}).Updates(fields).Error; err != nil {
				return err
			}
		}

		if tagIDs != nil {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeTag{}).Error; err != nil {
				return err
			}
			if len(tagIDs) > 0 {
				rows := tagRows(recipeID, tagIDs)
				if err := tx.Create(&rows).Error; err != nil {
					return err
				}
			}
		}

		if lines != nil {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
				return err
			}
			for _, line := range lines {
				line.RecipeID = recipeID
			}
			if len(lines) > 0 {
				if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, recipeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []any{
			&entities.RecipeTag{},
			&entities.RecipeIngredient{},
			&entities.Favorite{},
			&entities.ShoppingCart{},
		}
		for _, child := range children {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&entities.Recipe{}, recipeID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := preloadAggregate(r.db.WithContext(ctx)).Where("recipes.id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) filterScope(filter domain.RecipeFilter, viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != 0 {
			db = db.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			tagged := r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs)
			db = db.Where("recipes.id IN (?)", tagged)
		}
		// Membership filters only apply to an authenticated viewer.
		if viewerID != 0 && filter.IsFavorited != nil {
			db = membershipFilter(db, r.favorites.Query(viewerID), *filter.IsFavorited)
		}
		if viewerID != 0 && filter.IsInShoppingCart != nil {
			db = membershipFilter(db, r.carts.Query(viewerID), *filter.IsInShoppingCart)
		}
		return db
	}
}

func membershipFilter(db, sub *gorm.DB, member bool) *gorm.DB {
	if member {
		return db.Where("recipes.id IN (?)", sub)
	}
	return db.Where("recipes.id NOT IN (?)", sub)
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint, page domain.PageQuery) ([]*entities.Recipe, int64, error) {
	var (
		recipes []*entities.Recipe
		total   int64
	)
	scope := r.filterScope(filter, viewerID)

	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := preloadAggregate(r.db.WithContext(ctx)).
		Scopes(scope).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// GetRecipesByAuthor returns the newest recipes of an author; limit < 0 means all.
func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *recipeRepository) GetRecipeByShortLink(ctx context.Context, code string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("short_link = ?", code).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) ShortLinkExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("short_link = ?", code).Count(&count).Error
	return count > 0, err
}

// SetShortLink stores code only if the recipe has none yet. It reports
// whether this call assigned the code; a unique violation surfaces as
// gorm.ErrDuplicatedKey.
func (r *recipeRepository) SetShortLink(ctx context.Context, recipeID uint, code string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Where("id = ? AND short_link IS NULL", recipeID).
		Update("short_link", code)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
