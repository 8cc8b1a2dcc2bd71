package routes

import (
	"github.com/Notemat/foodgram/internal/api/handlers"
	"github.com/Notemat/foodgram/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App                 *fiber.App
	UserHandler         handlers.UserHandler
	RecipeHandler       handlers.RecipeHandler
	TagHandler          handlers.TagHandler
	IngredientHandler   handlers.IngredientHandler
	FavoriteHandler     handlers.MembershipHandler
	ShoppingCartHandler handlers.MembershipHandler
	SubscriptionHandler handlers.SubscriptionHandler
	Middleware          middleware.Middleware
	Authenticator       middleware.Authenticator
	CORSOrigins         string
	// MediaRoot is served under /media when files are stored locally.
	MediaRoot string
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware(c.CORSOrigins))
	c.App.Use(c.Middleware.MetricsMiddleware())
	c.GuestRoute()
	c.Auth()
	c.User()
	c.Tags()
	c.Ingredients()
	c.Recipes()
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.Authenticator)
}

func (c *Config) optionalAuth() fiber.Handler {
	return c.Middleware.OptionalAuthMiddleware(c.Authenticator)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	c.App.Get("/s/:code", c.RecipeHandler.RedirectShortLink)
	if c.MediaRoot != "" {
		c.App.Static("/media", c.MediaRoot)
	}
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth/token")
	{
		auth.Post("/login", c.UserHandler.Login)
		auth.Post("/logout", c.auth(), c.UserHandler.Logout)
	}
}

func (c *Config) User() {
	user := c.App.Group("/api/users")
	{
		user.Get("", c.optionalAuth(), c.UserHandler.GetUsers)
		user.Post("", c.UserHandler.Register)
		user.Get("/me", c.auth(), c.UserHandler.Me)
		user.Put("/me/avatar", c.auth(), c.UserHandler.UpdateAvatar)
		user.Delete("/me/avatar", c.auth(), c.UserHandler.DeleteAvatar)
		user.Post("/set_password", c.auth(), c.UserHandler.SetPassword)
		user.Get("/subscriptions", c.auth(), c.SubscriptionHandler.GetSubscriptions)
		user.Get("/:id<int>", c.optionalAuth(), c.UserHandler.GetUser)
		user.Post("/:id<int>/subscribe", c.auth(), c.SubscriptionHandler.Subscribe)
		user.Delete("/:id<int>/subscribe", c.auth(), c.SubscriptionHandler.Unsubscribe)
	}
}

func (c *Config) Tags() {
	tags := c.App.Group("/api/tags")
	tags.Get("", c.TagHandler.GetTags)
	tags.Get("/:id<int>", c.TagHandler.GetTag)
}

func (c *Config) Ingredients() {
	ingredients := c.App.Group("/api/ingredients")
	ingredients.Get("", c.IngredientHandler.GetIngredients)
	ingredients.Get("/:id<int>", c.IngredientHandler.GetIngredient)
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/recipes")

	// Basic CRUD operations
	recipes.Get("", c.optionalAuth(), c.RecipeHandler.GetRecipes)
	recipes.Post("", c.auth(), c.RecipeHandler.CreateRecipe)
	recipes.Get("/download_shopping_cart", c.auth(), c.RecipeHandler.DownloadShoppingCart)
	recipes.Get("/:id<int>", c.optionalAuth(), c.RecipeHandler.GetRecipe)
	recipes.Patch("/:id<int>", c.auth(), c.RecipeHandler.UpdateRecipe)
	recipes.Delete("/:id<int>", c.auth(), c.RecipeHandler.DeleteRecipe)

	// Special operations
	recipes.Get("/:id<int>/get-link", c.RecipeHandler.GetShortLink)
	recipes.Post("/:id<int>/favorite", c.auth(), c.FavoriteHandler.Add)
	recipes.Delete("/:id<int>/favorite", c.auth(), c.FavoriteHandler.Remove)
	recipes.Post("/:id<int>/shopping_cart", c.auth(), c.ShoppingCartHandler.Add)
	recipes.Delete("/:id<int>/shopping_cart", c.auth(), c.ShoppingCartHandler.Remove)
}
