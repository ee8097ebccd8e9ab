package votegate_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/recipebox/internal/domain/votegate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new gate", t, func() {
		g := votegate.New()

		Convey("Then it is empty", func() {
			So(g.Size(), ShouldEqual, 0)
			So(g.Sessions(), ShouldEqual, 0)
			So(g.HasVoted(ctx, "s1", 1), ShouldBeFalse)
		})

		Convey("When a session votes for the first time", func() {
			seen := g.SeenAndRecord(ctx, "s1", 1)

			Convey("Then the vote is new and recorded", func() {
				So(seen, ShouldBeFalse)
				So(g.HasVoted(ctx, "s1", 1), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And it votes again on the same recipe", func() {
				seen := g.SeenAndRecord(ctx, "s1", 1)

				Convey("Then it is reported as seen", func() {
					So(seen, ShouldBeTrue)
					So(g.Size(), ShouldEqual, 1)
				})
			})

			Convey("And another session votes on the same recipe", func() {
				seen := g.SeenAndRecord(ctx, "s2", 1)

				Convey("Then flags are per session", func() {
					So(seen, ShouldBeFalse)
					So(g.Sessions(), ShouldEqual, 2)
				})
			})
		})

		Convey("When a session is forgotten", func() {
			g.Open(ctx, "s1")
			g.Open(ctx, "s2")
			g.Record(ctx, "s1", 1)
			g.Record(ctx, "s1", 2)
			g.Record(ctx, "s2", 1)
			g.Forget(ctx, "s1")

			Convey("Then only its flags are dropped", func() {
				So(g.HasVoted(ctx, "s1", 1), ShouldBeFalse)
				So(g.HasVoted(ctx, "s2", 1), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
				So(g.Sessions(), ShouldEqual, 1)
			})

			Convey("And forgetting an unknown session is harmless", func() {
				g.Forget(ctx, "nope")
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And a late vote for it arrives", func() {
				g.Record(ctx, "s1", 3)

				Convey("Then the session is not brought back", func() {
					So(g.HasVoted(ctx, "s1", 3), ShouldBeFalse)
					So(g.Sessions(), ShouldEqual, 1)
					So(g.Size(), ShouldEqual, 1)
				})
			})
		})
	})

	Convey("Given a gate bounded to two sessions", t, func() {
		var evicted []string
		g := votegate.New(
			votegate.WithMaxSessions(2),
			votegate.WithEvictHook(func(sid string) { evicted = append(evicted, sid) }),
		)
		g.Open(ctx, "a")
		g.Open(ctx, "b")
		g.Record(ctx, "b", 1)
		g.Record(ctx, "a", 1)

		Convey("When a third session opens", func() {
			g.Open(ctx, "c")

			Convey("Then the oldest opened session is evicted", func() {
				So(evicted, ShouldResemble, []string{"a"})
				So(g.HasVoted(ctx, "a", 1), ShouldBeFalse)
				So(g.HasVoted(ctx, "b", 1), ShouldBeTrue)
				So(g.Sessions(), ShouldEqual, 2)
				So(g.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a vote is recorded for a session that was never opened", func() {
			g.Record(ctx, "ghost", 1)

			Convey("Then no live session is evicted for it", func() {
				So(evicted, ShouldBeEmpty)
				So(g.HasVoted(ctx, "ghost", 1), ShouldBeFalse)
				So(g.HasVoted(ctx, "a", 1), ShouldBeTrue)
				So(g.Sessions(), ShouldEqual, 2)
			})
		})

		Convey("When the middle session is forgotten and two more open", func() {
			g.Forget(ctx, "b")
			g.Open(ctx, "c")
			g.Open(ctx, "d")

			Convey("Then eviction still follows open order", func() {
				So(evicted, ShouldResemble, []string{"a"})
				So(g.Sessions(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given an unbounded gate", t, func() {
		g := votegate.New(votegate.WithMaxSessions(0))
		for i := range 500 {
			sid := fmt.Sprintf("s%d", i)
			g.Open(ctx, sid)
			g.Record(ctx, sid, 1)
		}

		Convey("Then nothing is evicted", func() {
			So(g.Sessions(), ShouldEqual, 500)
			So(g.Size(), ShouldEqual, 500)
		})
	})

	Convey("Given concurrent votes from one session", t, func() {
		g := votegate.New()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !g.SeenAndRecord(ctx, "s1", 7) {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one is recorded as new", func() {
			So(fresh, ShouldEqual, 1)
			So(g.Size(), ShouldEqual, 1)
		})
	})
}
