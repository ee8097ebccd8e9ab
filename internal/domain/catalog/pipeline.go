// Package catalog derives the visible recipe page from the dataset and a
// filter state: category → difficulty → title search → sort → paginate.
package catalog

import (
	"sort"
	"strings"

	"github.com/okian/recipebox/internal/domain/recipe"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 6

// SortOption selects the order of the filtered list.
type SortOption string

// Known sort options. Any other value leaves dataset order unchanged.
const (
	SortRatingDesc     SortOption = "rating_desc"
	SortRatingAsc      SortOption = "rating_asc"
	SortDifficultyAsc  SortOption = "difficulty_asc"
	SortDifficultyDesc SortOption = "difficulty_desc"
)

// Known reports whether s is one of the four sort options.
func (s SortOption) Known() bool {
	switch s {
	case SortRatingDesc, SortRatingAsc, SortDifficultyAsc, SortDifficultyDesc:
		return true
	}
	return false
}

// FilterState drives the derived page.
type FilterState struct {
	SearchTerm string     `json:"search_term"`
	Category   string     `json:"category"`
	Difficulty string     `json:"difficulty"`
	Sort       SortOption `json:"sort"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
}

// DefaultState returns the unfiltered first page sorted by rating.
func DefaultState(perPage int) FilterState {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return FilterState{
		Category:   recipe.All,
		Difficulty: recipe.All,
		Sort:       SortRatingDesc,
		Page:       1,
		PerPage:    perPage,
	}
}

// Filtering reports whether any of search, category or difficulty narrows the list.
func (s FilterState) Filtering() bool {
	return s.SearchTerm != "" || !isAll(s.Category) || !isAll(s.Difficulty)
}

func isAll(v string) bool { return v == "" || v == recipe.All }

// AverageFunc returns the effective average rating for a recipe id.
type AverageFunc func(id int) float64

// Result is one derived page.
type Result struct {
	Items          []recipe.Recipe `json:"items"`
	Filtered       []recipe.Recipe `json:"-"`
	Total          int             `json:"total"`
	Page           int             `json:"page"`
	PerPage        int             `json:"per_page"`
	TotalPages     int             `json:"total_pages"`
	ShowPagination bool            `json:"show_pagination"`
}

// Apply runs the full pipeline. The requested page is clamped to the valid range.
func Apply(recipes []recipe.Recipe, st FilterState, avg AverageFunc) Result {
	perPage := st.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	filtered := Filter(recipes, st)
	Sort(filtered, st.Sort, avg)

	page := ClampPage(st.Page, len(filtered), perPage)
	return Result{
		Items:          Paginate(filtered, page, perPage),
		Filtered:       filtered,
		Total:          len(filtered),
		Page:           page,
		PerPage:        perPage,
		TotalPages:     TotalPages(len(filtered), perPage),
		ShowPagination: len(filtered) > perPage,
	}
}

// Filter applies the category, difficulty and search steps, in that order.
// The returned slice is always a fresh copy.
func Filter(recipes []recipe.Recipe, st FilterState) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		if !isAll(st.Category) && r.Category != st.Category {
			continue
		}
		if !isAll(st.Difficulty) && string(r.Difficulty) != st.Difficulty {
			continue
		}
		out = append(out, *r)
	}
	return Search(out, st.SearchTerm)
}

// Search keeps recipes whose title has a word starting with query.
// Both sides are normalized; a blank query keeps everything.
func Search(recipes []recipe.Recipe, query string) []recipe.Recipe {
	q := strings.TrimSpace(Normalize(query))
	if q == "" {
		return recipes
	}
	out := make([]recipe.Recipe, 0, len(recipes))
	for i := range recipes {
		if matchesTitle(recipes[i].Title, q) {
			out = append(out, recipes[i])
		}
	}
	return out
}

// Sort orders recipes in place. Equal keys keep their relative order.
func Sort(recipes []recipe.Recipe, opt SortOption, avg AverageFunc) {
	if avg == nil {
		avg = BaselineAverage(recipes)
	}
	var less func(a, b *recipe.Recipe) bool
	switch opt {
	case SortRatingAsc:
		less = func(a, b *recipe.Recipe) bool { return avg(a.ID) < avg(b.ID) }
	case SortRatingDesc:
		less = func(a, b *recipe.Recipe) bool { return avg(a.ID) > avg(b.ID) }
	case SortDifficultyAsc:
		less = func(a, b *recipe.Recipe) bool { return a.Difficulty.Rank() < b.Difficulty.Rank() }
	case SortDifficultyDesc:
		less = func(a, b *recipe.Recipe) bool { return a.Difficulty.Rank() > b.Difficulty.Rank() }
	default:
		return
	}
	sort.SliceStable(recipes, func(i, j int) bool { return less(&recipes[i], &recipes[j]) })
}

// BaselineAverage returns an AverageFunc over the dataset ratings only.
func BaselineAverage(recipes []recipe.Recipe) AverageFunc {
	byID := make(map[int]float64, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = recipes[i].Rating
	}
	return func(id int) float64 { return byID[id] }
}

// Paginate returns the 1-based page of size perPage. Out of range pages are empty.
func Paginate(recipes []recipe.Recipe, page, perPage int) []recipe.Recipe {
	if perPage < 1 || page < 1 {
		return []recipe.Recipe{}
	}
	start := (page - 1) * perPage
	if start >= len(recipes) {
		return []recipe.Recipe{}
	}
	end := start + perPage
	if end > len(recipes) {
		end = len(recipes)
	}
	return recipes[start:end]
}

// TotalPages is ceil(n/perPage), never less than 1.
func TotalPages(n, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := (n + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage moves page into [1, TotalPages]. A list that fits on one page
// always yields page 1.
func ClampPage(page, n, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if n <= perPage || page < 1 {
		return 1
	}
	if total := TotalPages(n, perPage); page > total {
		return total
	}
	return page
}
