package rating_test

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"testing"

	"github.com/okian/recipebox/internal/adapters/storage"
	"github.com/okian/recipebox/internal/domain/rating"
	"github.com/okian/recipebox/internal/domain/recipe"
	"github.com/okian/recipebox/internal/domain/votegate"
	. "github.com/smartystreets/goconvey/convey"
)

type memRepo struct {
	mu     sync.Mutex
	stored map[int]rating.Stats
	saves  int
	broken bool
}

func (r *memRepo) Load(context.Context) (map[int]rating.Stats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.broken {
		return map[int]rating.Stats{}, false
	}
	if r.stored == nil {
		return map[int]rating.Stats{}, true
	}
	return maps.Clone(r.stored), true
}

func (r *memRepo) Save(_ context.Context, s map[int]rating.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.broken {
		return
	}
	r.stored = maps.Clone(s)
}

type memGate struct {
	mu    sync.Mutex
	voted map[string]bool
}

func (g *memGate) key(sid string, id int) string { return fmt.Sprintf("%s/%d", sid, id) }

func (g *memGate) HasVoted(_ context.Context, sid string, id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voted[g.key(sid, id)]
}

func (g *memGate) Record(_ context.Context, sid string, id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.voted == nil {
		g.voted = map[string]bool{}
	}
	g.voted[g.key(sid, id)] = true
}

func dataset() []recipe.Recipe {
	return []recipe.Recipe{
		{ID: 1, Title: "Chocolate Cake", Rating: 4.0, Votes: 10},
		{ID: 2, Title: "Plain Toast"},
		{ID: 3, Title: "Beef Wellington", Rating: 4.8, Votes: 5},
	}
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	Convey("Given an aggregator over an empty store", t, func() {
		repo := &memRepo{}
		gate := &memGate{}
		agg := rating.NewAggregator(dataset(), repo, gate)
		agg.Init(ctx)

		Convey("Then the store is seeded from the dataset", func() {
			So(repo.saves, ShouldEqual, 1)
			So(repo.stored, ShouldHaveLength, 2)
			So(agg.Stats(ctx, 1).RatingCount, ShouldEqual, 10)
		})

		Convey("When a session votes 5 on the 4.0 recipe", func() {
			ok := agg.Submit(ctx, "s1", 1, 5)

			Convey("Then the vote is accepted and persisted", func() {
				So(ok, ShouldBeTrue)
				s := agg.Stats(ctx, 1)
				So(s.RatingCount, ShouldEqual, 11)
				So(s.AverageRating, ShouldAlmostEqual, 4.0909, 0.0001)
				So(repo.stored[1], ShouldResemble, s)
			})

			Convey("And the same session votes again", func() {
				before := agg.Stats(ctx, 1)
				ok := agg.Submit(ctx, "s1", 1, 3)

				Convey("Then the vote is rejected and nothing changes", func() {
					So(ok, ShouldBeFalse)
					So(agg.Stats(ctx, 1), ShouldResemble, before)
					So(repo.stored[1], ShouldResemble, before)
				})
			})

			Convey("And another session votes on the same recipe", func() {
				So(agg.Submit(ctx, "s2", 1, 1), ShouldBeTrue)

				Convey("Then both votes count", func() {
					So(agg.Stats(ctx, 1).RatingCount, ShouldEqual, 12)
					So(agg.Stats(ctx, 1).TotalRating, ShouldEqual, 46)
				})
			})
		})

		Convey("When invalid values are submitted", func() {
			for _, v := range []float64{0, 6, 2.5} {
				So(agg.Submit(ctx, "s1", 1, v), ShouldBeFalse)
			}

			Convey("Then the aggregate and the gate are untouched", func() {
				So(agg.Stats(ctx, 1).RatingCount, ShouldEqual, 10)
				So(gate.HasVoted(ctx, "s1", 1), ShouldBeFalse)
				So(agg.Submit(ctx, "s1", 1, 4), ShouldBeTrue)
			})
		})

		Convey("When a recipe without a baseline gets its first vote", func() {
			s, ok := agg.SubmitStats(ctx, "s1", 2, 4)

			Convey("Then it starts from zero", func() {
				So(ok, ShouldBeTrue)
				So(s, ShouldResemble, rating.Stats{TotalRating: 4, RatingCount: 1, AverageRating: 4})
			})
		})

		Convey("When a rejected vote asks for stats", func() {
			s, ok := agg.SubmitStats(ctx, "s1", 3, 9)

			Convey("Then the current stats are returned", func() {
				So(ok, ShouldBeFalse)
				So(s.RatingCount, ShouldEqual, 5)
			})
		})

		Convey("When sorting by average", func() {
			So(agg.Submit(ctx, "s1", 2, 5), ShouldBeTrue)
			avg := agg.AverageFunc()

			Convey("Then the effective averages are used", func() {
				So(avg(1), ShouldEqual, 4.0)
				So(avg(2), ShouldEqual, 5.0)
				So(avg(3), ShouldEqual, 4.8)
				So(avg(99), ShouldEqual, 0)
			})
		})

		Convey("When many sessions vote concurrently", func() {
			var wg sync.WaitGroup
			for i := range 40 {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					agg.Submit(ctx, fmt.Sprintf("c%d", n), 3, 5)
				}(i)
			}
			wg.Wait()

			Convey("Then every vote is counted once", func() {
				So(agg.Stats(ctx, 3).RatingCount, ShouldEqual, 45)
				So(repo.stored[3].RatingCount, ShouldEqual, 45)
			})
		})
	})

	Convey("Given an aggregator whose store already holds aggregates", t, func() {
		repo := &memRepo{stored: map[int]rating.Stats{1: {TotalRating: 10, RatingCount: 2, AverageRating: 5}}}
		agg := rating.NewAggregator(dataset(), repo, &memGate{})
		agg.Init(ctx)

		Convey("Then the store is not reseeded", func() {
			So(repo.saves, ShouldEqual, 0)
			So(agg.Stats(ctx, 1).AverageRating, ShouldEqual, 5)
			So(agg.Stats(ctx, 3).RatingCount, ShouldEqual, 5)
		})
	})

	Convey("Given a store that cannot be read or written", t, func() {
		repo := &memRepo{broken: true}
		agg := rating.NewAggregator(dataset(), repo, &memGate{})
		agg.Init(ctx)

		Convey("When a vote is cast", func() {
			ok := agg.Submit(ctx, "s1", 1, 5)

			Convey("Then it still succeeds against the baseline", func() {
				So(ok, ShouldBeTrue)
				So(agg.Stats(ctx, 1).RatingCount, ShouldEqual, 11)
			})
		})
	})

	Convey("Given an unreadable store at startup", t, func() {
		repo := &memRepo{broken: true, stored: map[int]rating.Stats{1: {TotalRating: 99, RatingCount: 20, AverageRating: 4.95}}}
		agg := rating.NewAggregator(dataset(), repo, &memGate{})
		agg.Init(ctx)

		Convey("Then the stored aggregates are not overwritten by the seed", func() {
			So(repo.saves, ShouldEqual, 0)
			So(repo.stored[1].RatingCount, ShouldEqual, 20)
		})
	})

	Convey("Given an aggregator over a memory store and a vote gate", t, func() {
		mem := storage.NewMemoryStore()
		gate := votegate.New()
		agg := rating.NewAggregator(dataset(), storage.NewRatingRepository(mem), gate)
		agg.Init(ctx)

		vote := func(c context.Context, sid string, id int) bool {
			gate.Open(c, sid)
			return agg.Submit(c, sid, id, 5)
		}
		stored := func() map[int]rating.Stats {
			var m map[int]rating.Stats
			So(storage.GetJSON(ctx, mem, storage.KeyRatingStats, &m), ShouldBeNil)
			return m
		}

		for i := range 5 {
			So(vote(ctx, fmt.Sprintf("a%d", i), 1), ShouldBeTrue)
			So(vote(ctx, fmt.Sprintf("b%d", i), 3), ShouldBeTrue)
		}
		So(agg.Stats(ctx, 1).RatingCount, ShouldEqual, 15)
		So(agg.Stats(ctx, 3).RatingCount, ShouldEqual, 10)

		Convey("When reads fail and another vote arrives", func() {
			mem.FailReads(true)
			ok := vote(ctx, "late", 1)
			mem.FailReads(false)

			Convey("Then the count keeps growing from the cache", func() {
				So(ok, ShouldBeTrue)
				So(agg.Stats(ctx, 1).RatingCount, ShouldEqual, 16)
			})

			Convey("Then the other stored aggregates survive", func() {
				m := stored()
				So(m[3].RatingCount, ShouldEqual, 10)
				So(m[1].RatingCount, ShouldEqual, 15)
			})

			Convey("And reads recover before the next vote", func() {
				So(vote(ctx, "next", 3), ShouldBeTrue)

				Convey("Then the vote kept in memory is written too", func() {
					m := stored()
					So(m[1].RatingCount, ShouldEqual, 16)
					So(m[3].RatingCount, ShouldEqual, 11)
				})
			})
		})

		Convey("When the caller's context is cancelled during a vote", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			ok := vote(cctx, "gone", 3)

			Convey("Then the vote is applied and persisted", func() {
				So(ok, ShouldBeTrue)
				So(agg.Stats(ctx, 3).RatingCount, ShouldEqual, 11)
				So(stored()[3].RatingCount, ShouldEqual, 11)
			})

			Convey("Then a restart keeps every count", func() {
				again := rating.NewAggregator(dataset(), storage.NewRatingRepository(mem), votegate.New())
				again.Init(ctx)
				So(again.Stats(ctx, 1).RatingCount, ShouldEqual, 15)
				So(again.Stats(ctx, 3).RatingCount, ShouldEqual, 11)
			})
		})
	})
}
