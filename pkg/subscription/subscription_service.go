package subscription

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
	UserFinder interface {
		GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	}

	RecipeSource interface {
		GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error)
	}

	SubscriptionService interface {
		Subscribe(ctx context.Context, followerID, targetID uint, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, followerID, targetID uint) error
		ListSubscriptions(ctx context.Context, followerID uint, page domain.PageQuery, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		users                  UserFinder
		recipes                RecipeSource
	}
)

func NewSubscriptionService(subscriptionRepository SubscriptionRepository, users UserFinder, recipes RecipeSource) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		users:                  users,
		recipes:                recipes,
	}
}

func (s *subscriptionService) target(ctx context.Context, targetID uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, followerID, targetID uint, recipesLimit int) (domain.SubscriptionResponse, error) {
	target, err := s.target(ctx, targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if followerID == targetID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	exists, err := s.subscriptionRepository.Exists(ctx, followerID, targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if exists {
		return domain.SubscriptionResponse{}, fmt.Errorf("subscribe to user %d: %w", targetID, domain.ErrAlreadySubscribed)
	}
	if err := s.subscriptionRepository.Create(ctx, followerID, targetID); err != nil {
		return domain.SubscriptionResponse{}, fmt.Errorf("subscribe to user %d: %w", targetID, err)
	}
	metrics.SubscriptionChanges.WithLabelValues("subscribe").Inc()

	return s.project(ctx, target, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, followerID, targetID uint) error {
	if _, err := s.target(ctx, targetID); err != nil {
		return err
	}

	removed, err := s.subscriptionRepository.Delete(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("unsubscribe from user %d: %w", targetID, domain.ErrNotSubscribed)
	}
	metrics.SubscriptionChanges.WithLabelValues("unsubscribe").Inc()
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, followerID uint, page domain.PageQuery, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	users, total, err := s.subscriptionRepository.GetSubscriptions(ctx, followerID, page)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]domain.SubscriptionResponse, 0, len(users))
	for _, u := range users {
		item, err := s.project(ctx, u, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		resp = append(resp, item)
	}
	return resp, total, nil
}

// project builds the followee card; recipesLimit <= 0 lists every recipe.
func (s *subscriptionService) project(ctx context.Context, target *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	limit := recipesLimit
	if limit <= 0 {
		limit = -1
	}
	recipes, err := s.recipes.GetRecipesByAuthor(ctx, target.ID, limit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	count, err := s.recipes.CountRecipesByAuthor(ctx, target.ID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	short := make([]domain.RecipeShortResponse, 0, len(recipes))
	for _, r := range recipes {
		short = append(short, domain.NewRecipeShortResponse(r))
	}
	return domain.SubscriptionResponse{
		UserResponse: domain.NewUserResponse(target, true),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}
