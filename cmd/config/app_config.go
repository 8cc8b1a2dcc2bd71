package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/api/handlers"
	"github.com/Notemat/foodgram/internal/api/routes"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/Notemat/foodgram/internal/middleware"
	"github.com/Notemat/foodgram/internal/utils"
	"github.com/Notemat/foodgram/internal/utils/mailing"
	"github.com/Notemat/foodgram/internal/utils/storage"
	"github.com/Notemat/foodgram/pkg/authz"
	"github.com/Notemat/foodgram/pkg/ingredient"
	"github.com/Notemat/foodgram/pkg/jwt"
	"github.com/Notemat/foodgram/pkg/membership"
	"github.com/Notemat/foodgram/pkg/recipe"
	"github.com/Notemat/foodgram/pkg/shoppinglist"
	"github.com/Notemat/foodgram/pkg/shortlink"
	"github.com/Notemat/foodgram/pkg/subscription"
	"github.com/Notemat/foodgram/pkg/tag"
	"github.com/Notemat/foodgram/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB, cfg utils.Config) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		AppName:      "foodgram",
		ErrorHandler: errorHandler,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	app.Use(recover.New())
	app.Use(requestid.New())
	accessLog, err := accessLogOutput(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     accessLog,
	}))
	if cfg.RateLimitPerSecond > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerSecond,
			Expiration: 1 * time.Second,
		}))
	}

	// utils
	files, mediaRoot, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig(cfg))
	authorizer, err := authz.NewAuthorizer()
	if err != nil {
		return nil, fmt.Errorf("init authorizer: %w", err)
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	tagRepository := tag.NewTagRepository(db)
	ingredientRepository := ingredient.NewIngredientRepository(db)
	favoriteRepository := membership.NewFavoriteRepository(db)
	shoppingCartRepository := membership.NewShoppingCartRepository(db)
	subscriptionRepository := subscription.NewSubscriptionRepository(db)
	shoppingListRepository := shoppinglist.NewShoppingListRepository(db)

	// Service
	jwtService := jwt.NewJWTService(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	userService := user.NewUserService(userRepository, subscriptionRepository, jwtService, files, mailer, cfg.AppURL)
	recipeService := recipe.NewRecipeService(recipe.Dependencies{
		Recipes:       recipeRepository,
		Tags:          tagRepository,
		Ingredients:   ingredientRepository,
		Favorites:     favoriteRepository,
		ShoppingCarts: shoppingCartRepository,
		Subscriptions: subscriptionRepository,
		Authorizer:    authorizer,
		Storage:       files,
		ShortLinks:    shortlink.NewGenerator(cfg.ShortLinkLength),
	})
	tagService := tag.NewTagService(tagRepository)
	ingredientService := ingredient.NewIngredientService(ingredientRepository)
	favoriteService := membership.NewService[entities.Favorite](favoriteRepository, recipeRepository, membership.LabelFavorites)
	shoppingCartService := membership.NewService[entities.ShoppingCart](shoppingCartRepository, recipeRepository, membership.LabelShoppingCart)
	subscriptionService := subscription.NewSubscriptionService(subscriptionRepository, userRepository, recipeRepository)
	shoppingListService := shoppinglist.NewShoppingListService(shoppingListRepository, cfg.PDFFontPath)

	// Handler
	pageSize := cfg.PageSize
	userHandler := handlers.NewUserHandler(userService, validator, pageSize)
	recipeHandler := handlers.NewRecipeHandler(recipeService, shoppingListService, validator, cfg.AppURL, pageSize)
	tagHandler := handlers.NewTagHandler(tagService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	shoppingCartHandler := handlers.NewShoppingCartHandler(shoppingCartService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, pageSize)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		UserHandler:         userHandler,
		RecipeHandler:       recipeHandler,
		TagHandler:          tagHandler,
		IngredientHandler:   ingredientHandler,
		FavoriteHandler:     favoriteHandler,
		ShoppingCartHandler: shoppingCartHandler,
		SubscriptionHandler: subscriptionHandler,
		Middleware:          middlewares,
		Authenticator:       userService,
		CORSOrigins:         cfg.CORSOrigins,
		MediaRoot:           mediaRoot,
	}
	routesConfig.Setup()
	return app, nil
}

func accessLogOutput(path string) (io.Writer, error) {
	if path == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}
	return file, nil
}

// newStorage also returns the directory to serve under /media, empty for S3.
func newStorage(cfg utils.Config) (storage.Storage, string, error) {
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewAwsS3(context.Background(), cfg.AWSS3Bucket, cfg.AWSS3Region, cfg.AWSAccessKey, cfg.AWSSecretKey)
		if err != nil {
			return nil, "", fmt.Errorf("init s3 storage: %w", err)
		}
		return s3, "", nil
	case "local", "":
		return storage.NewLocalStorage(cfg.MediaRoot, cfg.AppURL), cfg.MediaRoot, nil
	default:
		return nil, "", fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// errorHandler renders errors that escape handlers (unknown routes, panics
// caught by recover) in the same {"detail": ...} shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	l := logging.FromFiber(c)
	if code >= fiber.StatusInternalServerError {
		l.Error().Err(err).Msg("unhandled error")
		return c.Status(code).JSON(fiber.Map{"detail": "internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}
