package handlers

import (
	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/api/presenters"
	"github.com/Notemat/foodgram/pkg/membership"
	"github.com/gofiber/fiber/v2"
)

type (
	// MembershipHandler serves POST/DELETE on a recipe's favorite or
	// shopping_cart sub-resource.
	MembershipHandler interface {
		Add(c *fiber.Ctx) error
		Remove(c *fiber.Ctx) error
	}

	membershipHandler[T any] struct {
		service       membership.Service[T]
		addMessage    string
		removeMessage string
	}
)

func NewMembershipHandler[T any](service membership.Service[T], addMessage, removeMessage string) MembershipHandler {
	return &membershipHandler[T]{
		service:       service,
		addMessage:    addMessage,
		removeMessage: removeMessage,
	}
}

func NewFavoriteHandler(service membership.FavoriteService) MembershipHandler {
	return NewMembershipHandler[entities.Favorite](service, domain.MessageSuccessAddFavorite, domain.MessageSuccessRemoveFavorite)
}

func NewShoppingCartHandler(service membership.ShoppingCartService) MembershipHandler {
	return NewMembershipHandler[entities.ShoppingCart](service, domain.MessageSuccessAddToCart, domain.MessageSuccessRemoveFromCart)
}

func (h *membershipHandler[T]) Add(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedAddMembership, err)
	}

	res, err := h.service.Add(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedAddMembership, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, h.addMessage)
}

func (h *membershipHandler[T]) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedRemoveMembership, err)
	}

	if err := h.service.Remove(c.UserContext(), currentUserID(c), id); err != nil {
		return presenters.HandleError(c, domain.MessageFailedRemoveMembership, err)
	}
	return presenters.NoContentResponse(c, h.removeMessage)
}
