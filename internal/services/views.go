package services

import (
	"foodgram/internal/models"
)

// Requester identifies who performs an operation. The zero value is an
// anonymous visitor.
type Requester struct {
	UserID uint
}

// Anonymous reports whether no user is authenticated.
func (r Requester) Anonymous() bool {
	return r.UserID == 0
}

// UserView is a public user profile as seen by a requester.
type UserView struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientView is one ingredient line of a recipe.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is a fully materialized recipe with the requester's flags.
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []models.Tag           `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeInfo is the short form of a recipe returned by toggles and previews.
type RecipeInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorView is a followed author with a preview of their recipes.
type AuthorView struct {
	UserView
	Recipes      []RecipeInfo `json:"recipes"`
	RecipesCount int64        `json:"recipes_count"`
}

func newUserView(u models.User, subscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func newRecipeInfo(r models.Recipe) RecipeInfo {
	return RecipeInfo{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func newRecipeInfos(recipes []models.Recipe) []RecipeInfo {
	infos := make([]RecipeInfo, 0, len(recipes))
	for _, r := range recipes {
		infos = append(infos, newRecipeInfo(r))
	}
	return infos
}
