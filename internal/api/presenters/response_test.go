package presenters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Notemat/foodgram/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	var verrs domain.ValidationErrors
	verrs.Add("cooking_time", domain.ErrInvalidCookingTime)

	tests := []struct {
		err  error
		want int
	}{
		{verrs, fiber.StatusBadRequest},
		{fmt.Errorf("favorite: %w", domain.ErrAlreadyMember), fiber.StatusBadRequest},
		{domain.ErrSelfSubscription, fiber.StatusBadRequest},
		{domain.ErrUnauthenticated, fiber.StatusUnauthorized},
		{domain.ErrTokenRevoked, fiber.StatusUnauthorized},
		{domain.ErrForbidden, fiber.StatusForbidden},
		{fmt.Errorf("get: %w", domain.ErrRecipeNotFound), fiber.StatusNotFound},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestHandleError_BodyShapes(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		var verrs domain.ValidationErrors
		verrs.Add("cooking_time", domain.ErrInvalidCookingTime)
		return HandleError(c, "create", fmt.Errorf("create: %w", verrs))
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return HandleError(c, "favorite", domain.ErrNotAMember)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return HandleError(c, "get", domain.ErrRecipeNotFound)
	})
	app.Get("/crash", func(c *fiber.Ctx) error {
		return HandleError(c, "get", errors.New("connection reset"))
	})

	status, body := decode(t, app, "/validation")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "cooking_time")

	status, body = decode(t, app, "/conflict")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, domain.ErrNotAMember.Error(), body["errors"])

	status, body = decode(t, app, "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, domain.ErrRecipeNotFound.Error(), body["detail"])

	status, body = decode(t, app, "/crash")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, domain.MessageInternalServerError, body["detail"])
}

func TestPageResponse_Links(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/api/recipes", func(c *fiber.Ctx) error {
		return PageResponse(c, "list", []int{4, 5, 6}, 9, domain.PageQuery{Page: 2, Limit: 3})
	})

	status, body := decode(t, app, "/api/recipes?page=2&limit=3")
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 9, body["count"])
	assert.Contains(t, body["next"], "page=3")
	assert.Contains(t, body["previous"], "page=1")
	assert.Len(t, body["results"], 3)
}
