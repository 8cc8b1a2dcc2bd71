package presenters

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/gofiber/fiber/v2"
)

type PaginatedResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	l := logging.FromFiber(c)
	l.Debug().Int("status", statusCode).Msg(message)
	return c.Status(statusCode).JSON(data)
}

func NoContentResponse(c *fiber.Ctx, message string) error {
	l := logging.FromFiber(c)
	l.Debug().Msg(message)
	return c.SendStatus(fiber.StatusNoContent)
}

func PageResponse(c *fiber.Ctx, message string, results any, count int64, page domain.PageQuery) error {
	resp := PaginatedResponse{Count: count, Results: results}
	if int64(page.Page*page.Limit) < count {
		next := pageURL(c, page.Page+1)
		resp.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(c, page.Page-1)
		resp.Previous = &prev
	}
	return SuccessResponse(c, resp, fiber.StatusOK, message)
}

func pageURL(c *fiber.Ctx, page int) string {
	u, err := url.Parse(c.BaseURL() + c.OriginalURL())
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrShortLinkNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrNotAMember),
		errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrNotSubscribed),
		errors.Is(err, domain.ErrSelfSubscription),
		errors.Is(err, domain.ErrParseID),
		errors.Is(err, domain.ErrUnsupportedListFormat):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError resolves the status for err and writes the error body.
func HandleError(c *fiber.Ctx, message string, err error) error {
	return ErrorResponse(c, StatusFor(err), message, err)
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	l := logging.FromFiber(c)

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		l.Info().Err(err).Msg(message)
		return c.Status(fiber.StatusBadRequest).JSON(verrs.Fields())
	}

	switch {
	case statusCode >= fiber.StatusInternalServerError:
		l.Error().Err(err).Msg(message)
		return c.Status(statusCode).JSON(fiber.Map{"detail": domain.MessageInternalServerError})
	case statusCode == fiber.StatusUnauthorized,
		statusCode == fiber.StatusForbidden,
		statusCode == fiber.StatusNotFound:
		l.Info().Err(err).Msg(message)
		return c.Status(statusCode).JSON(fiber.Map{"detail": err.Error()})
	default:
		l.Info().Err(err).Msg(message)
		return c.Status(statusCode).JSON(fiber.Map{"errors": err.Error()})
	}
}
