package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/testinfra"
	"github.com/Notemat/foodgram/pkg/ingredient"
	"github.com/Notemat/foodgram/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadIngredients(t *testing.T) {
	t.Parallel()

	t.Run("csv with header", func(t *testing.T) {
		rows, err := ReadIngredients(strings.NewReader("name,measurement_unit\nflour,g\n  egg , pcs\n"), "csv")
		require.NoError(t, err)
		assert.Equal(t, []IngredientRow{
			{Name: "flour", MeasurementUnit: "g"},
			{Name: "egg", MeasurementUnit: "pcs"},
		}, rows)
	})

	t.Run("csv without header", func(t *testing.T) {
		rows, err := ReadIngredients(strings.NewReader("абрикосовое варенье,г\n"), "csv")
		require.NoError(t, err)
		assert.Equal(t, []IngredientRow{{Name: "абрикосовое варенье", MeasurementUnit: "г"}}, rows)
	})

	t.Run("json skips blank rows", func(t *testing.T) {
		rows, err := ReadIngredients(strings.NewReader(`[{"name":"milk","measurement_unit":"ml"},{"name":"","measurement_unit":"g"}]`), "json")
		require.NoError(t, err)
		assert.Equal(t, []IngredientRow{{Name: "milk", MeasurementUnit: "ml"}}, rows)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ReadIngredients(strings.NewReader(""), "xml")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestImportIngredients_Idempotent(t *testing.T) {
	db := testinfra.NewTestDB(t)
	repo := ingredient.NewIngredientRepository(db)
	path := filepath.Join(t.TempDir(), "ingredients.csv")
	require.NoError(t, os.WriteFile(path, []byte("flour,g\negg,pcs\nflour,g\n"), 0o600))

	res, err := ImportIngredients(context.Background(), repo, path)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2, Existing: 1}, res)

	res, err = ImportIngredients(context.Background(), repo, path)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Existing: 3}, res)

	var count int64
	require.NoError(t, db.Model(&entities.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestReadTags(t *testing.T) {
	t.Parallel()

	rows, err := ReadTags(strings.NewReader("name,slug\nЗавтрак, breakfast \n,\nОбед,lunch\n"), "csv")
	require.NoError(t, err)
	assert.Equal(t, []TagRow{
		{Name: "Завтрак", Slug: "breakfast"},
		{Name: "Обед", Slug: "lunch"},
	}, rows)

	rows, err = ReadTags(strings.NewReader(`[{"name":"Ужин","slug":"dinner"}]`), "json")
	require.NoError(t, err)
	assert.Equal(t, []TagRow{{Name: "Ужин", Slug: "dinner"}}, rows)
}

func TestImportTags_Idempotent(t *testing.T) {
	db := testinfra.NewTestDB(t)
	repo := tag.NewTagRepository(db)
	testinfra.CreateTag(t, db, "Ужин", "dinner")
	path := filepath.Join(t.TempDir(), "tags.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":"Завтрак","slug":"breakfast"},
		{"name":"Ужин","slug":"dinner"}
	]`), 0o600))

	res, err := ImportTags(context.Background(), repo, path)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Existing: 1}, res)

	res, err = ImportTags(context.Background(), repo, path)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Existing: 2}, res)

	tags, err := repo.GetTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[1].Slug)
}

func TestImportTags_RejectsBadSlug(t *testing.T) {
	tests := []struct {
		name  string
		rows  string
		field string
	}{
		{"non-latin slug", "Завтрак,breakfast\nОбед,обед\n", "slug"},
		{"slug with space", "Поздний ужин,late dinner\n", "slug"},
		{"slug too long", "Долго," + strings.Repeat("a", 33) + "\n", "slug"},
		{"missing name", ",brunch\n", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testinfra.NewTestDB(t)
			path := filepath.Join(t.TempDir(), "tags.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.rows), 0o600))

			_, err := ImportTags(context.Background(), tag.NewTagRepository(db), path)
			var verrs domain.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, []string{tt.field}, verrs.FieldNames())

			var count int64
			require.NoError(t, db.Model(&entities.Tag{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}
