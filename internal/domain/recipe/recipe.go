// Package recipe defines the immutable recipe records served by the catalog.
package recipe

import "strings"

// All is the selector value that disables a category or difficulty filter.
const All = "All"

// Difficulty is one of Easy, Medium or Hard.
type Difficulty string

// Known difficulties in ascending order.
const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Rank orders difficulties Easy < Medium < Hard. Unknown values rank 0.
func (d Difficulty) Rank() int {
	switch d {
	case Easy:
		return 1
	case Medium:
		return 2
	case Hard:
		return 3
	default:
		return 0
	}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool { return d.Rank() > 0 }

// ParseDifficulty matches s case-insensitively against the known difficulties.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Name     string `json:"name"`
}

// Recipe is a dataset record. It is never mutated after load.
type Recipe struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Category    string       `json:"category"`
	Difficulty  Difficulty   `json:"difficulty"`
	PrepTime    string       `json:"prep_time"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`

	// Rating and Votes are the dataset baseline used before any vote exists.
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// HasBaseline reports whether the dataset carries a usable baseline rating.
func (r *Recipe) HasBaseline() bool {
	return r.Votes > 0 || r.Rating > 0
}

// Find returns the recipe with id, or false.
func Find(recipes []Recipe, id int) (*Recipe, bool) {
	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], true
		}
	}
	return nil, false
}

// Categories returns All followed by the distinct categories in dataset order.
func Categories(recipes []Recipe) []string {
	return distinct(recipes, func(r *Recipe) string { return r.Category })
}

// Difficulties returns All followed by the distinct difficulties in dataset order.
func Difficulties(recipes []Recipe) []string {
	return distinct(recipes, func(r *Recipe) string { return string(r.Difficulty) })
}

func distinct(recipes []Recipe, key func(*Recipe) string) []string {
	out := []string{All}
	seen := make(map[string]struct{}, len(recipes))
	for i := range recipes {
		k := key(&recipes[i])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
