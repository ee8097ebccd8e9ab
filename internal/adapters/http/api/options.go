package api

import (
	"slices"
	"time"
)

const (
	defaultRateLimit  = 60
	defaultRateWindow = time.Minute
	maxBodyBytes      = 1 << 16
)

type handlerConfig struct {
	pageSizes []int
	perPage   int
}

// Option configures the Server.
type Option func(*Server, *handlerConfig)

// WithRateLimit caps write requests per client IP per window. n <= 0 disables the limit.
func WithRateLimit(n int, window time.Duration) Option {
	return func(s *Server, _ *handlerConfig) {
		s.rateLimit = n
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server, _ *handlerConfig) {
		if len(origins) > 0 {
			s.corsOrigins = slices.Clone(origins)
		}
	}
}

// WithPageSizes sets the per_page values requests may use.
func WithPageSizes(sizes []int) Option {
	return func(_ *Server, c *handlerConfig) {
		if len(sizes) > 0 {
			c.pageSizes = slices.Clone(sizes)
		}
	}
}

// WithItemsPerPage sets the page size used when a request omits per_page.
func WithItemsPerPage(n int) Option {
	return func(_ *Server, c *handlerConfig) {
		if n > 0 {
			c.perPage = n
		}
	}
}
