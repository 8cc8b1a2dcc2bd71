package recipe

import (
	"context"
	"strings"
	"testing"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/testinfra"
	"github.com/Notemat/foodgram/internal/utils/storage"
	"github.com/Notemat/foodgram/pkg/authz"
	"github.com/Notemat/foodgram/pkg/ingredient"
	"github.com/Notemat/foodgram/pkg/membership"
	"github.com/Notemat/foodgram/pkg/shortlink"
	"github.com/Notemat/foodgram/pkg/subscription"
	"github.com/Notemat/foodgram/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type suite struct {
	db        *gorm.DB
	svc       RecipeService
	repo      RecipeRepository
	favorites membership.FavoriteRepository
	author    *entities.User
	other     *entities.User
	breakfast *entities.Tag
	dinner    *entities.Tag
	flour     *entities.Ingredient
	egg       *entities.Ingredient
	milk      *entities.Ingredient
}

func newSuite(t *testing.T) *suite {
	t.Helper()

	db := testinfra.NewTestDB(t)
	authorizer, err := authz.NewAuthorizer()
	require.NoError(t, err)

	s := &suite{
		db:        db,
		repo:      NewRecipeRepository(db),
		favorites: membership.NewFavoriteRepository(db),
		author:    testinfra.CreateUser(t, db, "author"),
		other:     testinfra.CreateUser(t, db, "other"),
		breakfast: testinfra.CreateTag(t, db, "Breakfast", "breakfast"),
		dinner:    testinfra.CreateTag(t, db, "Dinner", "dinner"),
		flour:     testinfra.CreateIngredient(t, db, "flour", "g"),
		egg:       testinfra.CreateIngredient(t, db, "egg", "pcs"),
		milk:      testinfra.CreateIngredient(t, db, "milk", "ml"),
	}
	s.svc = NewRecipeService(Dependencies{
		Recipes:       s.repo,
		Tags:          tag.NewTagRepository(db),
		Ingredients:   ingredient.NewIngredientRepository(db),
		Favorites:     s.favorites,
		ShoppingCarts: membership.NewShoppingCartRepository(db),
		Subscriptions: subscription.NewSubscriptionRepository(db),
		Authorizer:    authorizer,
		Storage:       storage.NewLocalStorage(t.TempDir(), "http://localhost"),
		ShortLinks:    shortlink.NewGenerator(6),
	})
	return s
}

func intPtr(v int) *int { return &v }

func (s *suite) pancakes() domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		Name:        "Pancakes",
		Text:        "Whisk and fry.",
		Image:       pixel,
		CookingTime: intPtr(20),
		Tags:        []uint{s.breakfast.ID, s.dinner.ID},
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: s.flour.ID, Amount: 200},
			{ID: s.egg.ID, Amount: 2},
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreateRecipe_RoundTripsTagsAndIngredients(t *testing.T) {
	t.Parallel()

	// Arrange
	s := newSuite(t)
	ctx := context.Background()
	req := s.pancakes()

	// Act
	created, err := s.svc.CreateRecipe(ctx, req, s.author.ID)
	require.NoError(t, err)
	got, err := s.svc.GetRecipe(ctx, created.ID, 0)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, 20, got.CookingTime)
	assert.Equal(t, s.author.ID, got.Author.ID)
	assert.True(t, strings.HasPrefix(got.Image, "http://localhost/media/recipes/images/"))

	tagIDs := []uint{}
	for _, tg := range got.Tags {
		tagIDs = append(tagIDs, tg.ID)
	}
	assert.ElementsMatch(t, req.Tags, tagIDs)

	lines := map[uint]int{}
	for _, line := range got.Ingredients {
		lines[line.ID] = line.Amount
	}
	assert.Equal(t, map[uint]int{s.flour.ID: 200, s.egg.ID: 2}, lines)
	assert.Equal(t, "flour", got.Ingredients[0].Name)
	assert.Equal(t, "g", got.Ingredients[0].MeasurementUnit)

	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)
}

func TestCreateRecipe_ValidationErrors(t *testing.T) {
	t.Parallel()

	s := newSuite(t)

	tests := []struct {
		name   string
		mutate func(*domain.CreateRecipeRequest)
		want   error
	}{
		{"duplicate ingredient", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = append(r.Ingredients, domain.RecipeIngredientRequest{ID: s.flour.ID, Amount: 5})
		}, domain.ErrDuplicateIngredient},
		{"missing image", func(r *domain.CreateRecipeRequest) { r.Image = "" }, domain.ErrImageRequired},
		{"zero cooking time", func(r *domain.CreateRecipeRequest) { r.CookingTime = intPtr(0) }, domain.ErrInvalidCookingTime},
		{"empty tags", func(r *domain.CreateRecipeRequest) { r.Tags = []uint{} }, domain.ErrEmptyTagSet},
		{"duplicate tag", func(r *domain.CreateRecipeRequest) { r.Tags = []uint{s.dinner.ID, s.dinner.ID} }, domain.ErrDuplicateTag},
		{"unknown tag", func(r *domain.CreateRecipeRequest) { r.Tags = []uint{s.dinner.ID + 100} }, domain.ErrUnknownTag},
		{"empty ingredients", func(r *domain.CreateRecipeRequest) { r.Ingredients = nil }, domain.ErrEmptyIngredientSet},
		{"unknown ingredient", func(r *domain.CreateRecipeRequest) {
			r.Ingredients = []domain.RecipeIngredientRequest{{ID: s.milk.ID + 100, Amount: 1}}
		}, domain.ErrUnknownIngredient},
		{"amount too small", func(r *domain.CreateRecipeRequest) { r.Ingredients[0].Amount = 0 }, domain.ErrAmountOutOfRange},
		{"amount too large", func(r *domain.CreateRecipeRequest) { r.Ingredients[0].Amount = domain.MaxAmount + 1 }, domain.ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		req := s.pancakes()
		tt.mutate(&req)

		_, err := s.svc.CreateRecipe(context.Background(), req, s.author.ID)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	assert.Zero(t, countRows(t, s.db, &entities.Recipe{}), "no recipe may be stored on validation failure")
}

func TestCreateRecipe_AmountBoundsAccepted(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	req := s.pancakes()
	req.Ingredients[0].Amount = domain.MinAmount
	req.Ingredients[1].Amount = domain.MaxAmount

	_, err := s.svc.CreateRecipe(context.Background(), req, s.author.ID)
	assert.NoError(t, err)
}

func TestRepository_CreateIsAtomic(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	recipe := &entities.Recipe{AuthorID: s.author.ID, Name: "Broken", Text: "x", CookingTime: 5}
	lines := []*entities.RecipeIngredient{
		{IngredientID: s.flour.ID, Amount: 1},
		{IngredientID: s.milk.ID + 500, Amount: 1},
	}

	err := s.repo.CreateRecipe(context.Background(), recipe, []uint{s.breakfast.ID}, lines)
	require.Error(t, err)

	assert.Zero(t, countRows(t, s.db, &entities.Recipe{}))
	assert.Zero(t, countRows(t, s.db, &entities.RecipeTag{}))
	assert.Zero(t, countRows(t, s.db, &entities.RecipeIngredient{}))
}

func TestUpdateRecipe_ReplacesIngredientsAndKeepsTags(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	created, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)

	lines := []domain.RecipeIngredientRequest{{ID: s.milk.ID, Amount: 300}}
	name := "Crepes"
	updated, err := s.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        &name,
		Ingredients: &lines,
	}, s.author.ID)
	require.NoError(t, err)

	assert.Equal(t, "Crepes", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, s.milk.ID, updated.Ingredients[0].ID)
	assert.Equal(t, 300, updated.Ingredients[0].Amount)
	assert.Len(t, updated.Tags, 2)
	assert.Equal(t, created.Text, updated.Text)
	assert.EqualValues(t, 1, countRows(t, s.db, &entities.RecipeIngredient{}))
}

func TestUpdateRecipe_ReplacesTags(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	created, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)
	require.Len(t, created.Tags, 2)

	tags := []uint{s.dinner.ID}
	updated, err := s.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Tags: &tags}, s.author.ID)
	require.NoError(t, err)

	require.Len(t, updated.Tags, 1)
	assert.Equal(t, s.dinner.ID, updated.Tags[0].ID)
	assert.EqualValues(t, 1, countRows(t, s.db, &entities.RecipeTag{}))
	assert.Len(t, updated.Ingredients, 2, "ingredients untouched when absent from the update")

	got, err := s.svc.GetRecipe(ctx, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "dinner", got.Tags[0].Slug)
}

func TestUpdateRecipe_RejectsInvalidPartialAndLeavesRecipeIntact(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	created, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)

	tags := []uint{}
	_, err = s.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Tags: &tags, CookingTime: intPtr(0)}, s.author.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyTagSet)
	assert.ErrorIs(t, err, domain.ErrInvalidCookingTime)

	got, err := s.svc.GetRecipe(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 2)
	assert.Equal(t, 20, got.CookingTime)
}

func TestMutations_OnlyAuthor(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	created, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)

	name := "Stolen"
	_, err = s.svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{Name: &name}, s.other.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, s.svc.DeleteRecipe(ctx, created.ID, s.other.ID), domain.ErrForbidden)

	require.NoError(t, s.favorites.Add(ctx, s.other.ID, created.ID))
	require.NoError(t, s.svc.DeleteRecipe(ctx, created.ID, s.author.ID))

	_, err = s.svc.GetRecipe(ctx, created.ID, 0)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	assert.Zero(t, countRows(t, s.db, &entities.Favorite{}))
	assert.Zero(t, countRows(t, s.db, &entities.RecipeTag{}))
	assert.Zero(t, countRows(t, s.db, &entities.RecipeIngredient{}))
}

func TestGetRecipe_DerivedFlagsFollowViewer(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	created, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)
	require.NoError(t, s.favorites.Add(ctx, s.other.ID, created.ID))

	asOther, err := s.svc.GetRecipe(ctx, created.ID, s.other.ID)
	require.NoError(t, err)
	assert.True(t, asOther.IsFavorited)

	asAuthor, err := s.svc.GetRecipe(ctx, created.ID, s.author.ID)
	require.NoError(t, err)
	assert.False(t, asAuthor.IsFavorited)

	anonymous, err := s.svc.GetRecipe(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)
}

func TestGetRecipes_Filters(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()

	first, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)
	soup := s.pancakes()
	soup.Name = "Soup"
	soup.Tags = []uint{s.dinner.ID}
	second, err := s.svc.CreateRecipe(ctx, soup, s.other.ID)
	require.NoError(t, err)
	require.NoError(t, s.favorites.Add(ctx, s.other.ID, first.ID))
	require.NoError(t, membership.NewShoppingCartRepository(s.db).Add(ctx, s.other.ID, second.ID))

	page := domain.PageQuery{Page: 1, Limit: 6}
	yes, no := true, false

	tests := []struct {
		name   string
		filter domain.RecipeFilter
		viewer uint
		want   []uint
	}{
		{"all newest first", domain.RecipeFilter{}, 0, []uint{second.ID, first.ID}},
		{"by author", domain.RecipeFilter{AuthorID: s.author.ID}, 0, []uint{first.ID}},
		{"by tag slug", domain.RecipeFilter{TagSlugs: []string{"breakfast"}}, 0, []uint{first.ID}},
		{"any of tags", domain.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, 0, []uint{second.ID, first.ID}},
		{"favorited", domain.RecipeFilter{IsFavorited: &yes}, s.other.ID, []uint{first.ID}},
		{"not favorited", domain.RecipeFilter{IsFavorited: &no}, s.other.ID, []uint{second.ID}},
		{"favorited ignored for anonymous", domain.RecipeFilter{IsFavorited: &yes}, 0, []uint{second.ID, first.ID}},
		{"in shopping cart", domain.RecipeFilter{IsInShoppingCart: &yes}, s.other.ID, []uint{second.ID}},
		{"favorited and not in cart", domain.RecipeFilter{IsFavorited: &yes, IsInShoppingCart: &no}, s.other.ID, []uint{first.ID}},
	}

	for _, tt := range tests {
		got, total, err := s.svc.GetRecipes(ctx, tt.filter, tt.viewer, page)
		require.NoError(t, err, tt.name)

		ids := make([]uint, 0, len(got))
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, tt.want, ids, tt.name)
		assert.EqualValues(t, len(tt.want), total, tt.name)
	}
}

func TestGetRecipes_Pagination(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
		require.NoError(t, err)
	}

	got, total, err := s.svc.GetRecipes(ctx, domain.RecipeFilter{}, 0, domain.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, got, 2)
}

func TestEnsureShortLink_StableAndResolvable(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	created, err := s.svc.CreateRecipe(ctx, s.pancakes(), s.author.ID)
	require.NoError(t, err)

	code, err := s.svc.EnsureShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	again, err := s.svc.EnsureShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	id, err := s.svc.ResolveShortLink(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = s.svc.ResolveShortLink(ctx, "nope00")
	assert.ErrorIs(t, err, domain.ErrShortLinkNotFound)

	_, err = s.svc.EnsureShortLink(ctx, created.ID+100)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestRepository_SetShortLinkAssignsOnce(t *testing.T) {
	t.Parallel()

	s := newSuite(t)
	ctx := context.Background()
	r := testinfra.CreateRecipe(t, s.db, s.author, "Tea", nil)
	other := testinfra.CreateRecipe(t, s.db, s.author, "Coffee", nil)

	assigned, err := s.repo.SetShortLink(ctx, r.ID, "abc123")
	require.NoError(t, err)
	assert.True(t, assigned)

	assigned, err = s.repo.SetShortLink(ctx, r.ID, "zzz999")
	require.NoError(t, err)
	assert.False(t, assigned)

	_, err = s.repo.SetShortLink(ctx, other.ID, "abc123")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
