package rating_test

import (
	"math"
	"testing"

	"github.com/okian/recipebox/internal/domain/rating"
	"github.com/okian/recipebox/internal/domain/recipe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given a recipe with a dataset baseline", t, func() {
		r := &recipe.Recipe{ID: 1, Rating: 4.0, Votes: 10}

		Convey("When nothing is stored", func() {
			s := rating.Resolve(map[int]rating.Stats{}, r, 1)

			Convey("Then the baseline is used", func() {
				So(s, ShouldResemble, rating.Stats{TotalRating: 40, RatingCount: 10, AverageRating: 4})
			})
		})

		Convey("When an aggregate is stored", func() {
			stored := map[int]rating.Stats{1: {TotalRating: 9, RatingCount: 2, AverageRating: 4.5}}
			s := rating.Resolve(stored, r, 1)

			Convey("Then the stored aggregate wins", func() {
				So(s.RatingCount, ShouldEqual, 2)
				So(s.AverageRating, ShouldEqual, 4.5)
			})
		})
	})

	Convey("Given a recipe without a baseline", t, func() {
		r := &recipe.Recipe{ID: 2}

		Convey("Then zeros are returned", func() {
			So(rating.Resolve(nil, r, 2), ShouldResemble, rating.Stats{})
			So(rating.Resolve(nil, nil, 2), ShouldResemble, rating.Stats{})
		})
	})
}

func TestStatsAdd(t *testing.T) {
	Convey("Given the baseline 4.0 over 10 votes", t, func() {
		s := rating.Baseline(&recipe.Recipe{Rating: 4.0, Votes: 10})

		Convey("When a 5 is added", func() {
			next := s.Add(5)

			Convey("Then the count grows by one and the average is recomputed", func() {
				So(next.RatingCount, ShouldEqual, 11)
				So(next.TotalRating, ShouldEqual, 45)
				So(next.AverageRating, ShouldAlmostEqual, 4.0909, 0.0001)
				So(next.AverageRating, ShouldEqual, next.TotalRating/float64(next.RatingCount))
			})

			Convey("Then the original value is unchanged", func() {
				So(s.RatingCount, ShouldEqual, 10)
			})
		})
	})
}

func TestSeedFromDataset(t *testing.T) {
	Convey("Given recipes with and without baselines", t, func() {
		rs := []recipe.Recipe{
			{ID: 1, Rating: 4.5, Votes: 2},
			{ID: 2},
			{ID: 3, Rating: 3, Votes: 1},
		}
		seeded := rating.SeedFromDataset(rs)

		Convey("Then only recipes with a baseline are seeded", func() {
			So(seeded, ShouldHaveLength, 2)
			So(seeded[1].TotalRating, ShouldEqual, 9)
			So(seeded[3].RatingCount, ShouldEqual, 1)
			_, ok := seeded[2]
			So(ok, ShouldBeFalse)
		})
	})
}

func TestValidateVote(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"one", 1, true},
		{"five", 5, true},
		{"three", 3, true},
		{"zero", 0, false},
		{"six", 6, false},
		{"fraction", 2.5, false},
		{"negative", -1, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rating.ValidateVote(tt.value)
			if (err == nil) != tt.ok {
				t.Fatalf("ValidateVote(%v) = %v, want ok=%v", tt.value, err, tt.ok)
			}
		})
	}
}
