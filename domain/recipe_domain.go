package domain

import "errors"

const (
	MinCookingTime = 1
	MinAmount      = 1
	MaxAmount      = 32000
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessGetShortLink    = "success get short link"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedGetShortLink    = "failed to get short link"
	MessageFailedResolveLink     = "failed to resolve short link"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrShortLinkNotFound     = errors.New("short link not found")
	ErrInvalidCookingTime    = errors.New("cooking time must be at least 1 minute")
	ErrEmptyTagSet           = errors.New("at least one tag is required")
	ErrDuplicateTag          = errors.New("tags must not repeat")
	ErrUnknownTag            = errors.New("tag does not exist")
	ErrEmptyIngredientSet    = errors.New("at least one ingredient is required")
	ErrDuplicateIngredient   = errors.New("ingredients must not repeat")
	ErrUnknownIngredient     = errors.New("ingredient does not exist")
	ErrAmountOutOfRange      = errors.New("amount must be between 1 and 32000")
	ErrEmptyName             = errors.New("name must not be blank")
	ErrEmptyText             = errors.New("text must not be blank")
	ErrImageRequired         = errors.New("image is required")
	ErrUnsupportedListFormat = errors.New("unsupported shopping list format")
)

type (
	RecipeIngredientRequest struct {
		ID     uint `json:"id"`
		Amount int  `json:"amount"`
	}

	CreateRecipeRequest struct {
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required"`
		Tags        []uint                    `json:"tags" validate:"required"`
		Image       string                    `json:"image" validate:"required"`
		Name        string                    `json:"name" validate:"required,max=256"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime *int                      `json:"cooking_time" validate:"required"`
	}

	// UpdateRecipeRequest is a partial update: nil fields are left untouched,
	// present collections replace the stored ones wholesale.
	UpdateRecipeRequest struct {
		Ingredients *[]RecipeIngredientRequest `json:"ingredients,omitempty"`
		Tags        *[]uint                    `json:"tags,omitempty"`
		Image       *string                    `json:"image,omitempty"`
		Name        *string                    `json:"name,omitempty" validate:"omitempty,max=256"`
		Text        *string                    `json:"text,omitempty"`
		CookingTime *int                       `json:"cooking_time,omitempty"`
	}

	RecipeFilter struct {
		AuthorID         uint
		TagSlugs         []string
		IsFavorited      *bool
		IsInShoppingCart *bool
	}

	RecipeIngredientResponse struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               uint                       `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
	}

	RecipeShortResponse struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}
)
