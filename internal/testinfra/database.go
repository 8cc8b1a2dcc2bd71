// Package testinfra builds throwaway databases and fixtures for tests.
package testinfra

import (
	"fmt"
	"sync/atomic"
	"testing"

	migration "github.com/Notemat/foodgram/cmd/database/migrate"
	"github.com/Notemat/foodgram/entities"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB opens a migrated in-memory SQLite database private to t.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:foodgram_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Migrate(db))
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *entities.User {
	t.Helper()

	u := &entities.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  "not-a-real-hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateTag(t testing.TB, db *gorm.DB, name, slug string) *entities.Tag {
	t.Helper()

	tag := &entities.Tag{Name: name, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t testing.TB, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()

	ing := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// RecipeLine is a fixture ingredient line.
type RecipeLine struct {
	Ingredient *entities.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe row with its tag links and lines directly,
// bypassing service validation.
func CreateRecipe(t testing.TB, db *gorm.DB, author *entities.User, name string, tags []*entities.Tag, lines ...RecipeLine) *entities.Recipe {
	t.Helper()

	r := &entities.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " instructions",
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Tags", "Ingredients", "Author").Create(r).Error)

	for _, tag := range tags {
		require.NoError(t, db.Create(&entities.RecipeTag{RecipeID: r.ID, TagID: tag.ID}).Error)
	}
	for _, line := range lines {
		require.NoError(t, db.Create(&entities.RecipeIngredient{
			RecipeID:     r.ID,
			IngredientID: line.Ingredient.ID,
			Amount:       line.Amount,
		}).Error)
	}
	return r
}
