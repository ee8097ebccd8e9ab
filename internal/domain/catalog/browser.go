package catalog

import (
	"slices"
	"sync"

	"github.com/okian/recipebox/internal/domain/recipe"
)

// Update carries the fields a client wants to change. Nil fields are untouched.
type Update struct {
	SearchTerm   *string     `json:"search_term,omitempty"`
	Category     *string     `json:"category,omitempty"`
	Difficulty   *string     `json:"difficulty,omitempty"`
	Sort         *SortOption `json:"sort,omitempty"`
	Page         *int        `json:"page,omitempty"`
	PerPage      *int        `json:"per_page,omitempty"`
	ClearFilters bool        `json:"clear_filters,omitempty"`
}

// Browser owns the filter state of one browse session. It is the only writer
// of that state; readers get copies.
type Browser struct {
	mu    sync.Mutex
	state FilterState

	// pageBeforeFilter is taken on the unfiltered → filtered edge and
	// restored on the way back.
	pageBeforeFilter int
	wasFiltering     bool

	pageSizes []int
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithPerPage sets the initial page size.
func WithPerPage(n int) BrowserOption {
	return func(b *Browser) {
		if n > 0 {
			b.state.PerPage = n
		}
	}
}

// WithPageSizes restricts the page sizes SetPerPage accepts. Empty allows any positive size.
func WithPageSizes(sizes []int) BrowserOption {
	return func(b *Browser) {
		b.pageSizes = slices.Clone(sizes)
	}
}

// NewBrowser returns a Browser on the default state.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		state:            DefaultState(DefaultPerPage),
		pageBeforeFilter: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns a copy of the current filter state.
func (b *Browser) State() FilterState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Apply changes the requested fields and then runs the filter-edge logic.
// A rejected update leaves the state untouched.
func (b *Browser) Apply(u Update) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.state
	if u.ClearFilters {
		next.SearchTerm = ""
		next.Category = recipe.All
		next.Difficulty = recipe.All
	}
	if u.SearchTerm != nil {
		next.SearchTerm = *u.SearchTerm
	}
	if u.Category != nil {
		next.Category = orAll(*u.Category)
	}
	if u.Difficulty != nil {
		next.Difficulty = orAll(*u.Difficulty)
	}
	if u.Sort != nil {
		next.Sort = *u.Sort
	}
	if u.Page != nil {
		if *u.Page < 1 {
			return ErrInvalidPage
		}
		next.Page = *u.Page
	}
	if u.PerPage != nil {
		if !b.pageSizeAllowed(*u.PerPage) {
			return ErrInvalidPageSize
		}
		next.PerPage = *u.PerPage
	}

	filtering := next.Filtering()
	switch {
	case filtering && !b.wasFiltering:
		b.pageBeforeFilter = next.Page
		next.Page = 1
	case !filtering && b.wasFiltering:
		next.Page = b.pageBeforeFilter
	}
	b.wasFiltering = filtering
	b.state = next
	return nil
}

// SetSearch sets the search term.
func (b *Browser) SetSearch(term string) error { return b.Apply(Update{SearchTerm: &term}) }

// SetCategory sets the category filter; "" or All disables it.
func (b *Browser) SetCategory(c string) error { return b.Apply(Update{Category: &c}) }

// SetDifficulty sets the difficulty filter; "" or All disables it.
func (b *Browser) SetDifficulty(d string) error { return b.Apply(Update{Difficulty: &d}) }

// SetSort sets the sort option.
func (b *Browser) SetSort(s SortOption) error { return b.Apply(Update{Sort: &s}) }

// SetPage requests a page. It is clamped on the next View.
func (b *Browser) SetPage(p int) error { return b.Apply(Update{Page: &p}) }

// SetPerPage changes the page size.
func (b *Browser) SetPerPage(n int) error { return b.Apply(Update{PerPage: &n}) }

// ClearFilters resets search, category and difficulty.
func (b *Browser) ClearFilters() error { return b.Apply(Update{ClearFilters: true}) }

// View derives the current page and stores the clamped page number back.
func (b *Browser) View(recipes []recipe.Recipe, avg AverageFunc) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := Apply(recipes, b.state, avg)
	b.state.Page = res.Page
	return res
}

func (b *Browser) pageSizeAllowed(n int) bool {
	if n < 1 {
		return false
	}
	if len(b.pageSizes) == 0 {
		return true
	}
	return slices.Contains(b.pageSizes, n)
}

func orAll(v string) string {
	if v == "" {
		return recipe.All
	}
	return v
}
