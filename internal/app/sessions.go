package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/recipebox/internal/domain/catalog"
	"github.com/okian/recipebox/internal/domain/types"
	"github.com/okian/recipebox/pkg/logger"
	"github.com/okian/recipebox/pkg/metrics"
)

// OpenSession starts a browse session with fresh vote flags and a default
// filter state.
func (s *Service) OpenSession(ctx context.Context) (types.Session, error) {
	if err := s.ready(); err != nil {
		return types.Session{}, err
	}

	id := uuid.NewString()
	b := catalog.NewBrowser(
		catalog.WithPerPage(s.perPage),
		catalog.WithPageSizes(s.pageSizes),
	)
	s.sessions.Store(id, b)
	s.gate.Open(ctx, id)

	metrics.RecordSessionOpened()
	metrics.UpdateSessionsActive(s.gate.Sessions())
	s.logger.Debug(ctx, "session opened", logger.String("session", id))
	return types.Session{ID: id}, nil
}

// CloseSession ends a session and drops its vote flags.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, ok := s.sessions.LoadAndDelete(sessionID); !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.gate.Forget(ctx, sessionID)

	metrics.UpdateSessionsActive(s.gate.Sessions())
	metrics.UpdateVoteGateSize(s.gate.Size())
	s.logger.Debug(ctx, "session closed", logger.String("session", sessionID))
	return nil
}

// Browser returns the filter state container of a session.
func (s *Service) Browser(sessionID string) (*catalog.Browser, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	v, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return v.(*catalog.Browser), nil
}

// Browse returns the current page of the session's filter state.
func (s *Service) Browse(ctx context.Context, sessionID string) (types.Page, catalog.FilterState, error) {
	b, err := s.Browser(sessionID)
	if err != nil {
		return types.Page{}, catalog.FilterState{}, err
	}
	res := b.View(s.recipes, s.ratings.AverageFunc())
	st := b.State()
	return s.page(ctx, res, st.Sort), st, nil
}

// UpdateBrowse applies u to the session's filter state and returns the new page.
func (s *Service) UpdateBrowse(ctx context.Context, sessionID string, u catalog.Update) (types.Page, catalog.FilterState, error) {
	b, err := s.Browser(sessionID)
	if err != nil {
		return types.Page{}, catalog.FilterState{}, err
	}
	if err := b.Apply(u); err != nil {
		if errors.Is(err, catalog.ErrInvalidPage) || errors.Is(err, catalog.ErrInvalidPageSize) {
			return types.Page{}, catalog.FilterState{}, fmt.Errorf("%w: %w", ErrInvalidBrowse, err)
		}
		return types.Page{}, catalog.FilterState{}, err
	}
	return s.Browse(ctx, sessionID)
}
