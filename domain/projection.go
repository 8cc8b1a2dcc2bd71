package domain

import "github.com/Notemat/foodgram/entities"

func NewUserResponse(u *entities.User, isSubscribed bool) UserResponse {
	resp := UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
	if u.AvatarURL != "" {
		avatar := u.AvatarURL
		resp.Avatar = &avatar
	}
	return resp
}

func NewRecipeShortResponse(r *entities.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

func NewTagResponse(t *entities.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func NewIngredientResponse(i *entities.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}
