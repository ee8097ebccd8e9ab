// Package rating keeps the per-recipe vote aggregate and decides which
// stats are effective for a recipe at any moment.
package rating

import (
	"math"

	"github.com/okian/recipebox/internal/domain/recipe"
)

// Vote bounds.
const (
	MinVote = 1
	MaxVote = 5
)

// Stats is the durable aggregate for one recipe.
type Stats struct {
	TotalRating   float64 `json:"totalRating"`
	RatingCount   int     `json:"ratingCount"`
	AverageRating float64 `json:"averageRating"`
}

// Add returns s with one more vote of value v.
func (s Stats) Add(v float64) Stats {
	s.TotalRating += v
	s.RatingCount++
	s.AverageRating = s.TotalRating / float64(s.RatingCount)
	return s
}

// Baseline derives stats from the dataset rating and vote count.
func Baseline(r *recipe.Recipe) Stats {
	return Stats{
		TotalRating:   r.Rating * float64(r.Votes),
		RatingCount:   r.Votes,
		AverageRating: r.Rating,
	}
}

// Resolve returns the effective stats for id: the stored aggregate when
// present, else the recipe baseline, else zeros. r may be nil.
func Resolve(stored map[int]Stats, r *recipe.Recipe, id int) Stats {
	if s, ok := stored[id]; ok {
		return s
	}
	if r != nil && r.HasBaseline() {
		return Baseline(r)
	}
	return Stats{}
}

// SeedFromDataset builds the aggregate map from dataset baselines.
func SeedFromDataset(recipes []recipe.Recipe) map[int]Stats {
	out := make(map[int]Stats, len(recipes))
	for i := range recipes {
		if recipes[i].HasBaseline() {
			out[recipes[i].ID] = Baseline(&recipes[i])
		}
	}
	return out
}

// ValidateVote accepts integers in [MinVote, MaxVote]. Zero is the
// "no selection" value and is rejected like any other out-of-range value.
func ValidateVote(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < MinVote || v > MaxVote {
		return ErrInvalidVote
	}
	return nil
}
