// Package types contains the read shapes shared by the service and the HTTP layer.
package types

import "github.com/okian/recipebox/internal/domain/recipe"

// RecipeCard is a recipe as shown in a listing.
type RecipeCard struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Image         string            `json:"image"`
	Category      string            `json:"category"`
	Difficulty    recipe.Difficulty `json:"difficulty"`
	PrepTime      string            `json:"prep_time"`
	AverageRating float64           `json:"average_rating"`
	RatingCount   int               `json:"rating_count"`
	Favorite      bool              `json:"favorite"`
}

// RecipeDetail is the full recipe with its effective rating and the
// caller's favorite and vote flags.
type RecipeDetail struct {
	recipe.Recipe

	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
	Favorite      bool    `json:"favorite"`
	Voted         bool    `json:"voted"`
}

// Page is one derived listing page.
type Page struct {
	Items          []RecipeCard `json:"items"`
	Total          int          `json:"total"`
	Page           int          `json:"page"`
	PerPage        int          `json:"per_page"`
	TotalPages     int          `json:"total_pages"`
	ShowPagination bool         `json:"show_pagination"`
}

// Session identifies an open browse session.
type Session struct {
	ID string `json:"session_id"`
}
