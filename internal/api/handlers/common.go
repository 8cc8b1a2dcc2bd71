package handlers

import (
	"strconv"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// currentUserID is 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrParseID
	}
	return uint(id), nil
}

func pageQuery(c *fiber.Ctx, pageSize int) domain.PageQuery {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", pageSize)
	if limit < 1 {
		limit = pageSize
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}
	return domain.PageQuery{Page: page, Limit: limit}
}

// boolQuery reads "1"/"0" (or true/false) flags; nil when absent or unparsable.
func boolQuery(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func parseBody(c *fiber.Ctx, v *validator.Validate, req any) error {
	if err := c.BodyParser(req); err != nil {
		return err
	}
	return utils.ValidateWith(v, req)
}
