package recipe_test

import (
	"testing"

	"github.com/okian/recipebox/internal/domain/recipe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDifficulty(t *testing.T) {
	Convey("Given the known difficulties", t, func() {
		Convey("Then they rank Easy < Medium < Hard", func() {
			So(recipe.Easy.Rank(), ShouldBeLessThan, recipe.Medium.Rank())
			So(recipe.Medium.Rank(), ShouldBeLessThan, recipe.Hard.Rank())
			So(recipe.Difficulty("Extreme").Rank(), ShouldEqual, 0)
			So(recipe.Difficulty("Extreme").Valid(), ShouldBeFalse)
		})

		Convey("Then parsing ignores case and spaces", func() {
			d, ok := recipe.ParseDifficulty(" medium ")
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, recipe.Medium)

			_, ok = recipe.ParseDifficulty("impossible")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSelectors(t *testing.T) {
	Convey("Given a small recipe list", t, func() {
		list := []recipe.Recipe{
			{ID: 1, Category: "Desserts", Difficulty: recipe.Easy},
			{ID: 2, Category: "Soups", Difficulty: recipe.Hard},
			{ID: 3, Category: "Desserts", Difficulty: recipe.Easy},
		}

		Convey("Then categories start with All and keep dataset order", func() {
			So(recipe.Categories(list), ShouldResemble, []string{"All", "Desserts", "Soups"})
		})

		Convey("Then difficulties are distinct", func() {
			So(recipe.Difficulties(list), ShouldResemble, []string{"All", "Easy", "Hard"})
		})

		Convey("Then Find locates by id", func() {
			r, ok := recipe.Find(list, 2)
			So(ok, ShouldBeTrue)
			So(r.Category, ShouldEqual, "Soups")

			_, ok = recipe.Find(list, 99)
			So(ok, ShouldBeFalse)
		})

		Convey("Then baseline presence follows rating and votes", func() {
			So((&recipe.Recipe{}).HasBaseline(), ShouldBeFalse)
			So((&recipe.Recipe{Rating: 4, Votes: 10}).HasBaseline(), ShouldBeTrue)
		})
	})
}
