package membership

import (
	"context"
	"errors"

	"github.com/Notemat/foodgram/domain"
	"gorm.io/gorm"
)

type (
	// Repository stores (user, recipe) pairs in the table backing T.
	Repository[T any] interface {
		Exists(ctx context.Context, userID, recipeID uint) (bool, error)
		Add(ctx context.Context, userID, recipeID uint) error
		Remove(ctx context.Context, userID, recipeID uint) (bool, error)
		MemberRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
		Query(userID uint) *gorm.DB
	}

	repository[T any] struct {
		db     *gorm.DB
		newRow func(userID, recipeID uint) *T
	}
)

func NewRepository[T any](db *gorm.DB, newRow func(userID, recipeID uint) *T) Repository[T] {
	return &repository[T]{db: db, newRow: newRow}
}

func (r *repository[T]) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// Add inserts the pair. A unique violation means a concurrent request won
// and is reported as domain.ErrAlreadyMember.
func (r *repository[T]) Add(ctx context.Context, userID, recipeID uint) error {
	err := r.db.WithContext(ctx).Create(r.newRow(userID, recipeID)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyMember
	}
	return err
}

// Remove deletes the pair and reports whether it was present.
func (r *repository[T]) Remove(ctx context.Context, userID, recipeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository[T]) MemberRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	members := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return members, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}

// Query selects recipe_id of every member of userID, for use as a subquery.
func (r *repository[T]) Query(userID uint) *gorm.DB {
	return r.db.Model(new(T)).Select("recipe_id").Where("user_id = ?", userID)
}
