package rating

import "errors"

// Vote rejection reasons. Submit collapses them to false; ValidateVote returns them.
var (
	ErrInvalidVote  = errors.New("vote must be an integer between 1 and 5")
	ErrAlreadyVoted = errors.New("session already voted for this recipe")
)
