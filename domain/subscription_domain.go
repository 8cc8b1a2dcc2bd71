package domain

import "errors"

var (
	MessageSuccessSubscribe     = "subscribed successfully"
	MessageSuccessUnsubscribe   = "unsubscribed successfully"
	MessageSuccessSubscriptions = "success get subscriptions"
	MessageFailedSubscribe      = "failed to subscribe"
	MessageFailedUnsubscribe    = "failed to unsubscribe"
	MessageFailedSubscriptions  = "failed to get subscriptions"

	ErrSelfSubscription  = errors.New("you cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("you are already subscribed to this user")
	ErrNotSubscribed     = errors.New("you are not subscribed to this user")
)

type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}
