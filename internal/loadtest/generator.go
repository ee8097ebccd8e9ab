package loadtest

import (
	"math/rand/v2"
)

// Vote values span the accepted range.
const (
	minVote = 1
	maxVote = 5
)

// GeneratePlans builds one plan per session. Each session votes on up to
// votes distinct recipes and then repeats its first vote with another value.
func GeneratePlans(seed uint64, sessions, votes int, recipeIDs []int) []Plan {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if votes > len(recipeIDs) {
		votes = len(recipeIDs)
	}

	plans := make([]Plan, sessions)
	for i := range plans {
		perm := rng.Perm(len(recipeIDs))[:votes]
		p := Plan{Votes: make([]Vote, 0, votes+1)}
		for _, idx := range perm {
			p.Votes = append(p.Votes, Vote{
				RecipeID: recipeIDs[idx],
				Value:    minVote + rng.IntN(maxVote-minVote+1),
			})
		}
		if len(p.Votes) > 0 {
			first := p.Votes[0]
			p.Votes = append(p.Votes, Vote{
				RecipeID: first.RecipeID,
				Value:    minVote + (first.Value % maxVote),
				Repeat:   true,
			})
		}
		plans[i] = p
	}
	return plans
}
