// Package dataset loads the bundled recipe list.
package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/recipebox/internal/domain/recipe"
)

//go:embed recipes.json
var bundled []byte

// DefaultDelay is the simulated load latency before the dataset is available.
const DefaultDelay = 250 * time.Millisecond

// Option configures Load.
type Option func(*loader)

type loader struct {
	delay  time.Duration
	source io.Reader
}

// WithDelay sets the wait before decoding. Zero loads immediately.
func WithDelay(d time.Duration) Option {
	return func(l *loader) {
		if d >= 0 {
			l.delay = d
		}
	}
}

// WithSource decodes from r instead of the bundled file.
func WithSource(r io.Reader) Option {
	return func(l *loader) {
		if r != nil {
			l.source = r
		}
	}
}

// Load waits for the configured delay, then decodes and validates the
// recipes. A cancelled ctx aborts the wait and nothing is returned.
func Load(ctx context.Context, opts ...Option) ([]recipe.Recipe, error) {
	l := loader{delay: DefaultDelay, source: bytes.NewReader(bundled)}
	for _, opt := range opts {
		opt(&l)
	}

	if l.delay > 0 {
		t := time.NewTimer(l.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var out []recipe.Recipe
	if err := json.NewDecoder(l.source).DecodeContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidDataset, err)
	}
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(recipes []recipe.Recipe) error {
	seen := make(map[int]struct{}, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		if r.ID <= 0 {
			return fmt.Errorf("%w: recipe %q has id %d", ErrInvalidDataset, r.Title, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidDataset, r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Title == "" {
			return fmt.Errorf("%w: recipe %d has no title", ErrInvalidDataset, r.ID)
		}
		if !r.Difficulty.Valid() {
			return fmt.Errorf("%w: recipe %d has difficulty %q", ErrInvalidDataset, r.ID, r.Difficulty)
		}
		if r.Rating < 0 || r.Votes < 0 {
			return fmt.Errorf("%w: recipe %d has a negative baseline", ErrInvalidDataset, r.ID)
		}
	}
	return nil
}
