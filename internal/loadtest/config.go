// Package loadtest drives a running recipebox server with concurrent voting
// sessions and checks that the aggregates match what was accepted.
package loadtest

import (
	"errors"
	"time"
)

// Config holds configuration for a vote load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Sessions int           // Number of sessions to open
	Votes    int           // Distinct recipes each session votes on
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Seed for the vote plan; 0 picks one from the clock
	Verbose  bool          // Log every request outcome
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid load test config")

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("url is required"))
	case c.Sessions < 1:
		return errors.Join(ErrInvalidConfig, errors.New("sessions must be positive"))
	case c.Votes < 1:
		return errors.Join(ErrInvalidConfig, errors.New("votes must be positive"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	}
	return nil
}

// Vote is one planned vote.
type Vote struct {
	RecipeID int
	Value    int
	Repeat   bool // a second vote on an already voted recipe; must be rejected
}

// Plan is the ordered vote list of one session.
type Plan struct {
	Votes []Vote
}

// Stats holds run statistics.
type Stats struct {
	SessionsOpened  int
	VotesSubmitted  int
	VotesAccepted   int
	VotesRejected   int
	RepeatsAccepted int
	VotesThrottled  int
	VotesFailed     int
	Mismatches      []Mismatch
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// Mismatch reports a recipe whose ratingCount moved by a different amount
// than the number of votes accepted for it.
type Mismatch struct {
	RecipeID int
	Before   int
	After    int
	Accepted int
}

// OK reports whether the run saw no consistency violations.
func (s *Stats) OK() bool {
	return len(s.Mismatches) == 0 && s.RepeatsAccepted == 0
}
