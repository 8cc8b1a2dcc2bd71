package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors_IsMatchesContainedSentinel(t *testing.T) {
	t.Parallel()

	var verrs ValidationErrors
	verrs.Add("ingredients", ErrDuplicateIngredient)
	verrs.Add("cooking_time", ErrInvalidCookingTime)

	err := fmt.Errorf("create recipe: %w", verrs.OrNil())

	assert.True(t, errors.Is(err, ErrDuplicateIngredient))
	assert.True(t, errors.Is(err, ErrInvalidCookingTime))
	assert.False(t, errors.Is(err, ErrEmptyTagSet))

	var got ValidationErrors
	require.True(t, errors.As(err, &got))
	assert.Equal(t, []string{"cooking_time", "ingredients"}, got.FieldNames())
	assert.Equal(t, []string{ErrInvalidCookingTime.Error()}, got.Fields()["cooking_time"])
}

func TestValidationErrors_OrNilOnEmpty(t *testing.T) {
	t.Parallel()

	var verrs ValidationErrors
	assert.NoError(t, verrs.OrNil())
}

func TestPageQuery_Offset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, PageQuery{Page: 1, Limit: 6}.Offset())
	assert.Equal(t, 12, PageQuery{Page: 3, Limit: 6}.Offset())
}
