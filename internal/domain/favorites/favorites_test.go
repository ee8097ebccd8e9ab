package favorites_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/okian/recipebox/internal/domain/favorites"
	. "github.com/smartystreets/goconvey/convey"
)

type memRepo struct {
	mu    sync.Mutex
	ids   []int
	saves int
}

func (r *memRepo) Load(context.Context) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ids)
}

func (r *memRepo) Save(_ context.Context, ids []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.ids = slices.Clone(ids)
}

func TestSet(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty favorite set", t, func() {
		repo := &memRepo{}
		s := favorites.New(repo)
		s.Init(ctx)

		Convey("When a recipe is toggled", func() {
			added := s.Toggle(ctx, 3)

			Convey("Then it is added and persisted", func() {
				So(added, ShouldBeTrue)
				So(s.Contains(ctx, 3), ShouldBeTrue)
				So(repo.ids, ShouldResemble, []int{3})
			})

			Convey("And toggled again", func() {
				added := s.Toggle(ctx, 3)

				Convey("Then it is removed", func() {
					So(added, ShouldBeFalse)
					So(s.Contains(ctx, 3), ShouldBeFalse)
					So(repo.ids, ShouldBeEmpty)
					So(repo.saves, ShouldEqual, 2)
				})
			})
		})

		Convey("When several recipes are added", func() {
			s.Toggle(ctx, 5)
			s.Toggle(ctx, 1)
			s.Toggle(ctx, 9)
			s.Toggle(ctx, 1)

			Convey("Then insertion order is kept", func() {
				So(s.List(ctx), ShouldResemble, []int{5, 9})
				So(s.Len(), ShouldEqual, 2)
			})

			Convey("Then List returns a copy", func() {
				l := s.List(ctx)
				l[0] = 100
				So(s.Contains(ctx, 100), ShouldBeFalse)
			})
		})
	})

	Convey("Given a stored list with duplicates", t, func() {
		repo := &memRepo{ids: []int{2, 4, 2}}
		s := favorites.New(repo)
		s.Init(ctx)

		Convey("Then each id is loaded once", func() {
			So(s.List(ctx), ShouldResemble, []int{2, 4})
		})
	})
}
