package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/Notemat/foodgram/internal/metrics"
	"github.com/Notemat/foodgram/internal/utils/storage"
	"github.com/Notemat/foodgram/pkg/authz"
	"github.com/Notemat/foodgram/pkg/ingredient"
	"github.com/Notemat/foodgram/pkg/membership"
	"github.com/Notemat/foodgram/pkg/shortlink"
	"github.com/Notemat/foodgram/pkg/subscription"
	"github.com/Notemat/foodgram/pkg/tag"
	"gorm.io/gorm"
)

const imageFolder = "recipes/images"

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID uint, req domain.UpdateRecipeRequest, userID uint) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID uint, userID uint) error
		GetRecipe(ctx context.Context, recipeID uint, viewerID uint) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint, page domain.PageQuery) ([]domain.RecipeResponse, int64, error)
		EnsureShortLink(ctx context.Context, recipeID uint) (string, error)
		ResolveShortLink(ctx context.Context, code string) (uint, error)
	}

	Dependencies struct {
		Recipes       RecipeRepository
		Tags          tag.TagRepository
		Ingredients   ingredient.IngredientRepository
		Favorites     membership.FavoriteRepository
		ShoppingCarts membership.ShoppingCartRepository
		Subscriptions subscription.SubscriptionRepository
		Authorizer    authz.Authorizer
		Storage       storage.Storage
		ShortLinks    shortlink.Generator
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		favorites            membership.FavoriteRepository
		shoppingCarts        membership.ShoppingCartRepository
		subscriptions        subscription.SubscriptionRepository
		authorizer           authz.Authorizer
		storage              storage.Storage
		shortLinks           shortlink.Generator
	}
)

func NewRecipeService(deps Dependencies) RecipeService {
	return &recipeService{
		recipeRepository:     deps.Recipes,
		tagRepository:        deps.Tags,
		ingredientRepository: deps.Ingredients,
		favorites:            deps.Favorites,
		shoppingCarts:        deps.ShoppingCarts,
		subscriptions:        deps.Subscriptions,
		authorizer:           deps.Authorizer,
		storage:              deps.Storage,
		shortLinks:           deps.ShortLinks,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.RecipeResponse, error) {
	var verrs domain.ValidationErrors
	name := strings.TrimSpace(req.Name)
	if name == "" {
		verrs.Add("name", domain.ErrEmptyName)
	}
	if strings.TrimSpace(req.Text) == "" {
		verrs.Add("text", domain.ErrEmptyText)
	}
	if req.CookingTime == nil || *req.CookingTime < domain.MinCookingTime {
		verrs.Add("cooking_time", domain.ErrInvalidCookingTime)
	}
	if strings.TrimSpace(req.Image) == "" {
		verrs.Add("image", domain.ErrImageRequired)
	}
	if err := s.validateTags(ctx, req.Tags, &verrs); err != nil {
		return domain.RecipeResponse{}, err
	}
	lines, err := s.validateIngredients(ctx, req.Ingredients, &verrs)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if err := verrs.OrNil(); err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        req.Text,
		CookingTime: *req.CookingTime,
	}
	link, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	recipe.ImageURL = link

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, req.Tags, lines); err != nil {
		s.discardImage(ctx, recipe.ImageURL)
		return domain.RecipeResponse{}, fmt.Errorf("create recipe: %w", err)
	}
	metrics.RecipesCreated.Inc()

	return s.GetRecipe(ctx, recipe.ID, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID uint, req domain.UpdateRecipeRequest, userID uint) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if err := s.authorize(userID, recipe, "PATCH"); err != nil {
		return domain.RecipeResponse{}, err
	}

	var verrs domain.ValidationErrors
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			verrs.Add("name", domain.ErrEmptyName)
		}
		fields["name"] = name
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			verrs.Add("text", domain.ErrEmptyText)
		}
		fields["text"] = *req.Text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < domain.MinCookingTime {
			verrs.Add("cooking_time", domain.ErrInvalidCookingTime)
		}
		fields["cooking_time"] = *req.CookingTime
	}

	var tagIDs []uint
	if req.Tags != nil {
		tagIDs = append([]uint{}, (*req.Tags)...)
		if err := s.validateTags(ctx, tagIDs, &verrs); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var lines []*entities.RecipeIngredient
	if req.Ingredients != nil {
		lines, err = s.validateIngredients(ctx, *req.Ingredients, &verrs)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	if err := verrs.OrNil(); err != nil {
		return domain.RecipeResponse{}, err
	}

	oldImage := ""
	if req.Image != nil && *req.Image != "" {
		link, err := s.uploadImage(ctx, *req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		fields["image_url"] = link
		oldImage = recipe.ImageURL
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipeID, fields, tagIDs, lines); err != nil {
		if link, ok := fields["image_url"].(string); ok {
			s.discardImage(ctx, link)
		}
		return domain.RecipeResponse{}, fmt.Errorf("update recipe %d: %w", recipeID, err)
	}
	s.discardImage(ctx, oldImage)

	return s.GetRecipe(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID uint, userID uint) error {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if err := s.authorize(userID, recipe, "DELETE"); err != nil {
		return err
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return fmt.Errorf("delete recipe %d: %w", recipeID, err)
	}
	s.discardImage(ctx, recipe.ImageURL)
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID uint, viewerID uint) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	resp, err := s.toResponses(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return resp[0], nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint, page domain.PageQuery) ([]domain.RecipeResponse, int64, error) {
	recipes, total, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page)
	if err != nil {
		return nil, 0, err
	}
	resp, err := s.toResponses(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return resp, total, nil
}

// EnsureShortLink returns the recipe's code, generating and storing one on
// first use. A concurrent writer that wins the race keeps its code.
func (s *recipeService) EnsureShortLink(ctx context.Context, recipeID uint) (string, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return "", err
	}
	if recipe.ShortLink != nil && *recipe.ShortLink != "" {
		return *recipe.ShortLink, nil
	}

	for {
		code, err := s.shortLinks.Generate(ctx, s.recipeRepository.ShortLinkExists)
		if err != nil {
			return "", fmt.Errorf("generate short link: %w", err)
		}

		assigned, err := s.recipeRepository.SetShortLink(ctx, recipeID, code)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.ShortLinkCollisions.Inc()
			continue
		}
		if err != nil {
			return "", fmt.Errorf("store short link: %w", err)
		}
		if assigned {
			return code, nil
		}

		current, err := s.getRecipe(ctx, recipeID)
		if err != nil {
			return "", err
		}
		if current.ShortLink != nil && *current.ShortLink != "" {
			return *current.ShortLink, nil
		}
	}
}

func (s *recipeService) ResolveShortLink(ctx context.Context, code string) (uint, error) {
	recipe, err := s.recipeRepository.GetRecipeByShortLink(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrShortLinkNotFound
		}
		return 0, err
	}
	return recipe.ID, nil
}

func (s *recipeService) getRecipe(ctx context.Context, recipeID uint) (*entities.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) authorize(userID uint, recipe *entities.Recipe, method string) error {
	if userID == 0 {
		return domain.ErrUnauthenticated
	}
	ok, err := s.authorizer.CanMutate(userID, recipe, method)
	if err != nil {
		return fmt.Errorf("authorize %s on recipe %d: %w", method, recipe.ID, err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

func (s *recipeService) validateTags(ctx context.Context, ids []uint, verrs *domain.ValidationErrors) error {
	if len(ids) == 0 {
		verrs.Add("tags", domain.ErrEmptyTagSet)
		return nil
	}

	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			verrs.Add("tags", domain.ErrDuplicateTag)
			return nil
		}
		seen[id] = struct{}{}
	}

	found, err := s.tagRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		verrs.Add("tags", domain.ErrUnknownTag)
	}
	return nil
}

func (s *recipeService) validateIngredients(ctx context.Context, reqs []domain.RecipeIngredientRequest, verrs *domain.ValidationErrors) ([]*entities.RecipeIngredient, error) {
	if len(reqs) == 0 {
		verrs.Add("ingredients", domain.ErrEmptyIngredientSet)
		return nil, nil
	}

	ids := make([]uint, 0, len(reqs))
	seen := make(map[uint]struct{}, len(reqs))
	lines := make([]*entities.RecipeIngredient, 0, len(reqs))
	amountReported := false
	for _, req := range reqs {
		if (req.Amount < domain.MinAmount || req.Amount > domain.MaxAmount) && !amountReported {
			verrs.Add("ingredients", domain.ErrAmountOutOfRange)
			amountReported = true
		}
		if _, dup := seen[req.ID]; dup {
			verrs.Add("ingredients", domain.ErrDuplicateIngredient)
			return nil, nil
		}
		seen[req.ID] = struct{}{}
		ids = append(ids, req.ID)
		lines = append(lines, &entities.RecipeIngredient{IngredientID: req.ID, Amount: req.Amount})
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		verrs.Add("ingredients", domain.ErrUnknownIngredient)
	}
	return lines, nil
}

func (s *recipeService) uploadImage(ctx context.Context, dataURL string) (string, error) {
	key, err := s.storage.UploadBase64(ctx, dataURL, imageFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidDataURL) || errors.Is(err, storage.ErrUnsupportedType) {
			var verrs domain.ValidationErrors
			verrs.Add("image", err)
			return "", verrs
		}
		return "", fmt.Errorf("upload recipe image: %w", err)
	}
	return s.storage.GetPublicLinkKey(key), nil
}

func (s *recipeService) discardImage(ctx context.Context, link string) {
	if link == "" {
		return
	}
	if err := s.storage.DeleteFile(ctx, s.storage.GetObjectKeyFromLink(link)); err != nil {
		logging.Warn().Err(err).Str("image", link).Msg("failed to delete recipe image")
	}
}

func (s *recipeService) toResponses(ctx context.Context, recipes []*entities.Recipe, viewerID uint) ([]domain.RecipeResponse, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.favorites.MemberRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.shoppingCarts.MemberRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptions.SubscribedTo(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		item := domain.RecipeResponse{
			ID:               r.ID,
			Tags:             make([]domain.TagResponse, 0, len(r.Tags)),
			Ingredients:      make([]domain.RecipeIngredientResponse, 0, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if r.Author != nil {
			item.Author = domain.NewUserResponse(r.Author, subscribed[r.AuthorID])
		}
		for _, t := range r.Tags {
			item.Tags = append(item.Tags, domain.NewTagResponse(t))
		}
		for _, line := range r.Ingredients {
			ri := domain.RecipeIngredientResponse{ID: line.IngredientID, Amount: line.Amount}
			if line.Ingredient != nil {
				ri.Name = line.Ingredient.Name
				ri.MeasurementUnit = line.Ingredient.MeasurementUnit
			}
			item.Ingredients = append(item.Ingredients, ri)
		}
		resp = append(resp, item)
	}
	return resp, nil
}
