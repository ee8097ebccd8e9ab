package votegate

// Option configures a Gate.
type Option func(*Gate)

// WithMaxSessions bounds the number of sessions whose flags are kept.
// Zero or negative means unbounded.
func WithMaxSessions(n int) Option {
	return func(g *Gate) {
		g.maxSessions = n
	}
}

// WithEvictHook is called with every session dropped to make room. It runs
// with the gate locked and must not call back into it.
func WithEvictHook(fn func(sessionID string)) Option {
	return func(g *Gate) {
		g.onEvict = fn
	}
}
