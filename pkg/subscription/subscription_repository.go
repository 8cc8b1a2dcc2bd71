package subscription

import (
	"context"
	"errors"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"gorm.io/gorm"
)

type (
	SubscriptionRepository interface {
		Exists(ctx context.Context, followerID, targetID uint) (bool, error)
		Create(ctx context.Context, followerID, targetID uint) error
		Delete(ctx context.Context, followerID, targetID uint) (bool, error)
		SubscribedTo(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]bool, error)
		GetSubscriptions(ctx context.Context, followerID uint, page domain.PageQuery) ([]*entities.User, int64, error)
	}

	subscriptionRepository struct {
		db *gorm.DB
	}
)

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Exists(ctx context.Context, followerID, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Subscribe{}).
		Where("user_id = ? AND subscription_id = ?", followerID, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *subscriptionRepository) Create(ctx context.Context, followerID, targetID uint) error {
	err := r.db.WithContext(ctx).Create(&entities.Subscribe{UserID: followerID, SubscriptionID: targetID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadySubscribed
	}
	return err
}

func (r *subscriptionRepository) Delete(ctx context.Context, followerID, targetID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND subscription_id = ?", followerID, targetID).
		Delete(&entities.Subscribe{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *subscriptionRepository) SubscribedTo(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(targetIDs))
	if followerID == 0 || len(targetIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Subscribe{}).
		Where("user_id = ? AND subscription_id IN ?", followerID, targetIDs).
		Pluck("subscription_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *subscriptionRepository) GetSubscriptions(ctx context.Context, followerID uint, page domain.PageQuery) ([]*entities.User, int64, error) {
	var (
		users []*entities.User
		total int64
	)

	base := func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN subscribes ON subscribes.subscription_id = users.id").
			Where("subscribes.user_id = ?", followerID)
	}

	if err := r.db.WithContext(ctx).Model(&entities.User{}).Scopes(base).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Select("users.*").
		Scopes(base).
		Order("subscribes.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
