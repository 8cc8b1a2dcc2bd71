package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/api/presenters"
	"github.com/Notemat/foodgram/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type (
	// Authenticator resolves a bearer token into the user it was issued to.
	Authenticator interface {
		Authenticate(ctx context.Context, token string) (*entities.User, error)
	}

	Middleware interface {
		AuthMiddleware(auth Authenticator) fiber.Handler
		OptionalAuthMiddleware(auth Authenticator) fiber.Handler
		CORSMiddleware(origins string) fiber.Handler
		MetricsMiddleware() fiber.Handler
	}

	middleware struct{}
)

func NewMiddleware() Middleware {
	return &middleware{}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", true
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token), true
	default:
		return "", true
	}
}

func setUser(c *fiber.Ctx, user *entities.User) {
	c.Locals("user", user)
	c.Locals("user_id", user.ID)
}

func (m *middleware) AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := bearerToken(c)
		if !present {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedProcessRequest, domain.ErrUnauthenticated)
		}
		if token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedProcessRequest, domain.ErrTokenInvalid)
		}
		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedProcessRequest, err)
		}
		setUser(c, user)
		return c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through but still rejects
// a malformed or revoked token.
func (m *middleware) OptionalAuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := bearerToken(c)
		if !present {
			return c.Next()
		}
		if token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedProcessRequest, domain.ErrTokenInvalid)
		}
		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedProcessRequest, err)
		}
		setUser(c, user)
		return c.Next()
	}
}

func (m *middleware) CORSMiddleware(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

func (m *middleware) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
