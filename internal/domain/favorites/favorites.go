// Package favorites keeps the ordered set of favorite recipe ids.
package favorites

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/recipebox/pkg/metrics"
)

// Repository persists the id list. Load returns an empty list when nothing
// usable is stored; Save is best-effort.
type Repository interface {
	Load(ctx context.Context) []int
	Save(ctx context.Context, ids []int)
}

// Set is the favorite list. Each id appears at most once, in insertion order.
type Set struct {
	mu   sync.RWMutex
	ids  []int
	repo Repository
}

// New returns an empty set backed by repo. Call Init to load stored ids.
func New(repo Repository) *Set {
	return &Set{repo: repo}
}

// Init replaces the in-memory list with the stored one, dropping duplicates.
func (s *Set) Init(ctx context.Context) {
	loaded := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = s.ids[:0]
	for _, id := range loaded {
		if !slices.Contains(s.ids, id) {
			s.ids = append(s.ids, id)
		}
	}
	metrics.UpdateFavoritesTotal(len(s.ids))
}

// Toggle adds id if absent and removes it if present, then persists the list.
// It reports whether id is a favorite afterwards.
func (s *Set) Toggle(ctx context.Context, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.ids)
	added := false
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, id)
		added = true
	}
	s.repo.Save(context.WithoutCancel(ctx), next)
	s.ids = next

	if added {
		metrics.RecordFavoriteToggle("added")
	} else {
		metrics.RecordFavoriteToggle("removed")
	}
	metrics.UpdateFavoritesTotal(len(next))
	return added
}

// Contains reports whether id is a favorite.
func (s *Set) Contains(_ context.Context, id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// List returns a copy of the ids in insertion order.
func (s *Set) List(_ context.Context) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
