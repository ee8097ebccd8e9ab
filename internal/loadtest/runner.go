package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/recipebox/pkg/logger"
)

// healthPollInterval is how often Run polls /healthz while the dataset loads.
const healthPollInterval = 100 * time.Millisecond

// Runner executes a load run against one server.
type Runner struct {
	cfg    Config
	client *Client
	log    logger.Logger
}

// NewRunner validates cfg and returns a Runner.
func NewRunner(cfg Config, log logger.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return &Runner{cfg: cfg, client: NewClient(cfg.BaseURL, cfg.Timeout), log: log}, nil
}

// Run waits for readiness, casts every planned vote and verifies the
// aggregates. It assumes no other client votes during the run.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	r.log.Info(ctx, "starting vote load run",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("sessions", r.cfg.Sessions),
		logger.Int("votes", r.cfg.Votes),
		logger.Int("workers", r.cfg.Workers),
		logger.Any("seed", r.cfg.Seed))

	if err := r.waitHealthy(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	ids, err := r.client.RecipeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if len(ids) == 0 {
		return nil, errors.New("service has no recipes")
	}

	before, err := r.counts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("read baseline counts: %w", err)
	}

	plans := GeneratePlans(r.cfg.Seed, r.cfg.Sessions, r.cfg.Votes, ids)
	accepted := r.execute(ctx, plans, stats)

	after, err := r.counts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("read final counts: %w", err)
	}
	stats.Mismatches = Verify(before, after, accepted)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.report(ctx, stats)
	return stats, nil
}

func (r *Runner) waitHealthy(ctx context.Context) error {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()
	for {
		err := r.client.Health(ctx)
		if err == nil {
			return nil
		}
		var se *StatusError
		if !errors.As(err, &se) || se.Status != http.StatusServiceUnavailable {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) counts(ctx context.Context, ids []int) (map[int]int, error) {
	out := make(map[int]int, len(ids))
	for _, id := range ids {
		n, err := r.client.RatingCount(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, nil
}

// execute runs the plans on a worker pool and returns accepted votes per recipe.
func (r *Runner) execute(ctx context.Context, plans []Plan, stats *Stats) map[int]int {
	var (
		mu        sync.Mutex
		accepted  = make(map[int]int)
		opened    atomic.Int64
		submitted atomic.Int64
		ok        atomic.Int64
		rejected  atomic.Int64
		repeats   atomic.Int64
		throttled atomic.Int64
		failed    atomic.Int64
	)

	planCh := make(chan Plan, r.cfg.Workers*2)
	var wg sync.WaitGroup
	for range r.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range planCh {
				sid, err := r.client.OpenSession(ctx)
				if err != nil {
					r.log.Debug(ctx, "open session failed", logger.Error(err))
					failed.Add(int64(len(p.Votes)))
					continue
				}
				opened.Add(1)

				for _, v := range p.Votes {
					if ctx.Err() != nil {
						break
					}
					submitted.Add(1)
					got, err := r.client.Vote(ctx, sid, v.RecipeID, v.Value)
					var se *StatusError
					switch {
					case errors.As(err, &se) && se.Status == http.StatusTooManyRequests:
						throttled.Add(1)
					case err != nil:
						failed.Add(1)
						r.log.Debug(ctx, "vote failed", logger.Error(err))
					case got:
						ok.Add(1)
						if v.Repeat {
							repeats.Add(1)
						}
						mu.Lock()
						accepted[v.RecipeID]++
						mu.Unlock()
					default:
						rejected.Add(1)
					}
					if r.cfg.Verbose {
						r.log.Info(ctx, "vote",
							logger.String("session", sid),
							logger.Int("recipe", v.RecipeID),
							logger.Int("value", v.Value),
							logger.Bool("repeat", v.Repeat),
							logger.Bool("accepted", got),
						)
					}
				}

				if err := r.client.CloseSession(context.WithoutCancel(ctx), sid); err != nil {
					r.log.Debug(ctx, "close session failed", logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(planCh)
		for _, p := range plans {
			select {
			case <-ctx.Done():
				return
			case planCh <- p:
			}
		}
	}()
	wg.Wait()

	stats.SessionsOpened = int(opened.Load())
	stats.VotesSubmitted = int(submitted.Load())
	stats.VotesAccepted = int(ok.Load())
	stats.VotesRejected = int(rejected.Load())
	stats.RepeatsAccepted = int(repeats.Load())
	stats.VotesThrottled = int(throttled.Load())
	stats.VotesFailed = int(failed.Load())
	return accepted
}

func (r *Runner) report(ctx context.Context, stats *Stats) {
	var votesPerSecond float64
	if stats.Duration > 0 {
		votesPerSecond = float64(stats.VotesSubmitted) / stats.Duration.Seconds()
	}
	r.log.Info(ctx, "final statistics",
		logger.Int("sessionsOpened", stats.SessionsOpened),
		logger.Int("votesSubmitted", stats.VotesSubmitted),
		logger.Int("votesAccepted", stats.VotesAccepted),
		logger.Int("votesRejected", stats.VotesRejected),
		logger.Int("repeatsAccepted", stats.RepeatsAccepted),
		logger.Int("votesThrottled", stats.VotesThrottled),
		logger.Int("votesFailed", stats.VotesFailed),
		logger.Int("mismatches", len(stats.Mismatches)),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("votesPerSecond", votesPerSecond))
	for _, m := range stats.Mismatches {
		r.log.Warn(ctx, "rating count mismatch",
			logger.Int("recipe", m.RecipeID),
			logger.Int("before", m.Before),
			logger.Int("after", m.After),
			logger.Int("accepted", m.Accepted))
	}
}
