package subscription

import (
	"context"
	"testing"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type dbLookup struct {
	db *gorm.DB
}

func (d dbLookup) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var u entities.User
	if err := d.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (d dbLookup) GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	err := d.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id DESC").Limit(limit).Find(&recipes).Error
	return recipes, err
}

func (d dbLookup) CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&entities.Recipe{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func newService(t *testing.T) (SubscriptionService, *gorm.DB) {
	t.Helper()

	db := testinfra.NewTestDB(t)
	lookup := dbLookup{db: db}
	return NewSubscriptionService(NewSubscriptionRepository(db), lookup, lookup), db
}

func TestSubscribe_SelfSubscriptionRejected(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	u := testinfra.CreateUser(t, db, "narcissus")

	_, err := svc.Subscribe(context.Background(), u.ID, u.ID, 0)
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)
}

func TestSubscribe_ProjectionAndDuplicate(t *testing.T) {
	t.Parallel()

	// Arrange
	svc, db := newService(t)
	follower := testinfra.CreateUser(t, db, "follower")
	chef := testinfra.CreateUser(t, db, "chef")
	for _, name := range []string{"Soup", "Salad", "Stew"} {
		testinfra.CreateRecipe(t, db, chef, name, nil)
	}
	ctx := context.Background()

	// Act
	got, err := svc.Subscribe(ctx, follower.ID, chef.ID, 2)
	require.NoError(t, err)
	_, dupErr := svc.Subscribe(ctx, follower.ID, chef.ID, 2)

	// Assert
	assert.Equal(t, "chef", got.Username)
	assert.True(t, got.IsSubscribed)
	assert.Len(t, got.Recipes, 2)
	assert.EqualValues(t, 3, got.RecipesCount)
	assert.ErrorIs(t, dupErr, domain.ErrAlreadySubscribed)
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	follower := testinfra.CreateUser(t, db, "follower")
	chef := testinfra.CreateUser(t, db, "chef")
	ctx := context.Background()

	assert.ErrorIs(t, svc.Unsubscribe(ctx, follower.ID, chef.ID), domain.ErrNotSubscribed)

	_, err := svc.Subscribe(ctx, follower.ID, chef.ID, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, follower.ID, chef.ID))
	assert.ErrorIs(t, svc.Unsubscribe(ctx, follower.ID, chef.ID), domain.ErrNotSubscribed)

	assert.ErrorIs(t, svc.Unsubscribe(ctx, follower.ID, chef.ID+100), domain.ErrUserNotFound)
}

func TestListSubscriptions_Paginates(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	follower := testinfra.CreateUser(t, db, "follower")
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		u := testinfra.CreateUser(t, db, name)
		_, err := svc.Subscribe(ctx, follower.ID, u.ID, 0)
		require.NoError(t, err)
	}

	page, total, err := svc.ListSubscriptions(ctx, follower.ID, domain.PageQuery{Page: 1, Limit: 2}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Username)
	assert.Empty(t, page[0].Recipes)
}

func TestRepository_DuplicateInsertMapsToAlreadySubscribed(t *testing.T) {
	t.Parallel()

	db := testinfra.NewTestDB(t)
	repo := NewSubscriptionRepository(db)
	a := testinfra.CreateUser(t, db, "a")
	b := testinfra.CreateUser(t, db, "b")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	assert.ErrorIs(t, repo.Create(ctx, a.ID, b.ID), domain.ErrAlreadySubscribed)

	following, err := repo.SubscribedTo(ctx, a.ID, []uint{b.ID})
	require.NoError(t, err)
	assert.True(t, following[b.ID])

	reverse, err := repo.SubscribedTo(ctx, b.ID, []uint{a.ID})
	require.NoError(t, err)
	assert.False(t, reverse[a.ID])
}
