package loadtest

import "sort"

// Verify compares count deltas with accepted votes, per recipe.
// The result is ordered by recipe id.
func Verify(before, after, accepted map[int]int) []Mismatch {
	var out []Mismatch
	for id, b := range before {
		a := after[id]
		if a-b != accepted[id] {
			out = append(out, Mismatch{RecipeID: id, Before: b, After: a, Accepted: accepted[id]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecipeID < out[j].RecipeID })
	return out
}
