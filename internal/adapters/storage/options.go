package storage

import "github.com/okian/recipebox/pkg/logger"

// Option configures a BadgerStore.
type Option func(*BadgerStore)

// WithDir sets the on-disk directory. An empty dir keeps the store in memory.
func WithDir(dir string) Option {
	return func(s *BadgerStore) {
		s.dir = dir
	}
}

// WithInMemory forces an in-memory database regardless of WithDir.
func WithInMemory(inMemory bool) Option {
	return func(s *BadgerStore) {
		s.inMemory = inMemory
	}
}

// WithSyncWrites controls whether each write is fsynced before returning.
func WithSyncWrites(sync bool) Option {
	return func(s *BadgerStore) {
		s.syncWrites = sync
	}
}

// WithLogger sets the logger used for open/close messages.
func WithLogger(l logger.Logger) Option {
	return func(s *BadgerStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// RepoOption configures the JSON repositories.
type RepoOption func(*repoConfig)

type repoConfig struct {
	logger logger.Logger
}

// WithRepoLogger sets the logger used to report degraded reads and writes.
func WithRepoLogger(l logger.Logger) RepoOption {
	return func(c *repoConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
