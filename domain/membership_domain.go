package domain

import "errors"

var (
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessRemoveFavorite  = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"
	MessageSuccessDownloadCart    = "shopping list rendered"
	MessageFailedAddMembership    = "failed to add recipe"
	MessageFailedRemoveMembership = "failed to remove recipe"
	MessageFailedDownloadCart     = "failed to render shopping list"

	ErrAlreadyMember = errors.New("recipe is already in the list")
	ErrNotAMember    = errors.New("recipe is not in the list")
)

type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
