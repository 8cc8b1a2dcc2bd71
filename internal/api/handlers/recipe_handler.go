package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/internal/api/presenters"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/Notemat/foodgram/pkg/recipe"
	"github.com/Notemat/foodgram/pkg/shoppinglist"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetRecipe(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		GetShortLink(c *fiber.Ctx) error
		RedirectShortLink(c *fiber.Ctx) error
		DownloadShoppingCart(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService       recipe.RecipeService
		shoppingListService shoppinglist.ShoppingListService
		validator           *validator.Validate
		appURL              string
		pageSize            int
	}
)

func NewRecipeHandler(
	recipeService recipe.RecipeService,
	shoppingListService shoppinglist.ShoppingListService,
	validator *validator.Validate,
	appURL string,
	pageSize int,
) RecipeHandler {
	return &recipeHandler{
		recipeService:       recipeService,
		shoppingListService: shoppingListService,
		validator:           validator,
		appURL:              strings.TrimRight(appURL, "/"),
		pageSize:            pageSize,
	}
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	filter := domain.RecipeFilter{
		IsFavorited:      boolQuery(c, "is_favorited"),
		IsInShoppingCart: boolQuery(c, "is_in_shopping_cart"),
	}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 64)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetRecipes, domain.ErrParseID)
		}
		filter.AuthorID = uint(id)
	}
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		if s := strings.TrimSpace(string(slug)); s != "" {
			filter.TagSlugs = append(filter.TagSlugs, s)
		}
	}

	page := pageQuery(c, h.pageSize)
	res, total, err := h.recipeService.GetRecipes(c.UserContext(), filter, currentUserID(c), page)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.PageResponse(c, domain.MessageSuccessGetRecipes, res, total, page)
}

func (h *recipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetRecipeDetail, err)
	}

	res, err := h.recipeService.GetRecipe(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetRecipeDetail, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	req := new(domain.CreateRecipeRequest)
	if err := parseBody(c, h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe, err)
	}

	res, err := h.recipeService.CreateRecipe(c.UserContext(), *req, currentUserID(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCreateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateRecipe, err)
	}

	req := new(domain.UpdateRecipeRequest)
	if err := parseBody(c, h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRecipe, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.UserContext(), id, *req, currentUserID(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedDeleteRecipe, err)
	}

	if err := h.recipeService.DeleteRecipe(c.UserContext(), id, currentUserID(c)); err != nil {
		return presenters.HandleError(c, domain.MessageFailedDeleteRecipe, err)
	}
	return presenters.NoContentResponse(c, domain.MessageSuccessDeleteRecipe)
}

func (h *recipeHandler) GetShortLink(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetShortLink, err)
	}

	code, err := h.recipeService.EnsureShortLink(c.UserContext(), id)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetShortLink, err)
	}
	res := domain.ShortLinkResponse{ShortLink: fmt.Sprintf("%s/s/%s/", h.appURL, code)}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetShortLink)
}

func (h *recipeHandler) RedirectShortLink(c *fiber.Ctx) error {
	id, err := h.recipeService.ResolveShortLink(c.UserContext(), c.Params("code"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedResolveLink, err)
	}
	return c.Redirect(fmt.Sprintf("/recipes/%d/", id), fiber.StatusFound)
}

func (h *recipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	format := c.Query("format", shoppinglist.FormatPDF)
	renderer, err := h.shoppingListService.Renderer(format)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedDownloadCart, err)
	}

	var buf bytes.Buffer
	if err := h.shoppingListService.Export(c.UserContext(), currentUserID(c), format, &buf); err != nil {
		return presenters.HandleError(c, domain.MessageFailedDownloadCart, err)
	}

	logger := logging.FromFiber(c)
	logger.Debug().Str("format", format).Msg(domain.MessageSuccessDownloadCart)
	c.Set(fiber.HeaderContentType, renderer.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, renderer.FileName()))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
