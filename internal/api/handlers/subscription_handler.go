package handlers

import (
	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/internal/api/presenters"
	"github.com/Notemat/foodgram/pkg/subscription"
	"github.com/gofiber/fiber/v2"
)

type (
	SubscriptionHandler interface {
		Subscribe(c *fiber.Ctx) error
		Unsubscribe(c *fiber.Ctx) error
		GetSubscriptions(c *fiber.Ctx) error
	}

	subscriptionHandler struct {
		subscriptionService subscription.SubscriptionService
		pageSize            int
	}
)

func NewSubscriptionHandler(subscriptionService subscription.SubscriptionService, pageSize int) SubscriptionHandler {
	return &subscriptionHandler{
		subscriptionService: subscriptionService,
		pageSize:            pageSize,
	}
}

// recipesLimit of 0 (absent or invalid) embeds every recipe.
func recipesLimit(c *fiber.Ctx) int {
	return c.QueryInt("recipes_limit", 0)
}

func (h *subscriptionHandler) Subscribe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedSubscribe, err)
	}

	res, err := h.subscriptionService.Subscribe(c.UserContext(), currentUserID(c), id, recipesLimit(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedSubscribe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubscribe)
}

func (h *subscriptionHandler) Unsubscribe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUnsubscribe, err)
	}

	if err := h.subscriptionService.Unsubscribe(c.UserContext(), currentUserID(c), id); err != nil {
		return presenters.HandleError(c, domain.MessageFailedUnsubscribe, err)
	}
	return presenters.NoContentResponse(c, domain.MessageSuccessUnsubscribe)
}

func (h *subscriptionHandler) GetSubscriptions(c *fiber.Ctx) error {
	page := pageQuery(c, h.pageSize)
	res, total, err := h.subscriptionService.ListSubscriptions(c.UserContext(), currentUserID(c), page, recipesLimit(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedSubscriptions, err)
	}
	return presenters.PageResponse(c, domain.MessageSuccessSubscriptions, res, total, page)
}
