package team_test

import (
	"errors"
	"testing"

	"github.com/okian/flagmap/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistryResolve(t *testing.T) {
	Convey("Given the default registry", t, func() {
		r := team.Default()

		Convey("Then it holds every franchise", func() {
			So(r.Len(), ShouldEqual, 32)
		})

		Convey("When resolving the same alias twice", func() {
			a, errA := r.Resolve("Oakland")
			b, errB := r.Resolve("Oakland")

			Convey("Then both calls agree", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldEqual, b)
				So(a, ShouldEqual, team.ID("LV"))
			})
		})

		Convey("When resolving every listed alias", func() {
			Convey("Then each lands on its own team", func() {
				for _, tm := range r.Teams() {
					for _, alias := range tm.Aliases {
						id, err := r.Resolve(alias)
						So(err, ShouldBeNil)
						So(id, ShouldEqual, tm.ID)
					}
					id, err := r.Resolve(tm.Slug())
					So(err, ShouldBeNil)
					So(id, ShouldEqual, tm.ID)
				}
			})
		})

		Convey("When resolving source-specific spellings", func() {
			cases := map[string]team.ID{
				"kansas-city-chiefs":  "KC",
				"san-francisco-49ers": "SF",
				"N.Y. Giants":         "NYG",
				"n.y. jets":           "NYJ",
				"St. Louis":           "LAR",
				"STL":                 "LAR",
				"LA":                  "LAR",
				"SD":                  "LAC",
				"  San   Diego ":      "LAC",
				"Las Vegas Raiders":   "LV",
				"WASHINGTON":          "WAS",
			}
			for alias, want := range cases {
				id, err := r.Resolve(alias)
				So(err, ShouldBeNil)
				So(id, ShouldEqual, want)
			}
		})

		Convey("When resolving an ambiguous city", func() {
			_, err := r.Resolve("Los Angeles")

			Convey("Then it is unknown rather than guessed", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, team.ErrUnknownTeam), ShouldBeTrue)
				var ute *team.UnknownTeamError
				So(errors.As(err, &ute), ShouldBeTrue)
				So(ute.Alias, ShouldEqual, "Los Angeles")
			})
		})
	})
}

func TestRegistryConstruction(t *testing.T) {
	Convey("Given custom team rows", t, func() {
		Convey("When two teams claim the same alias", func() {
			_, err := team.New([]team.Team{
				{ID: "AAA", City: "Alpha", Name: "Ants", Aliases: []string{"Shared"}},
				{ID: "BBB", City: "Beta", Name: "Bees", Aliases: []string{"shared"}},
			})

			Convey("Then construction fails", func() {
				So(errors.Is(err, team.ErrDuplicateAlias), ShouldBeTrue)
			})
		})

		Convey("When a team repeats its own alias", func() {
			r, err := team.New([]team.Team{
				{ID: "AAA", City: "Alpha", Name: "Ants", Aliases: []string{"AAA", "alpha ants"}},
			})

			Convey("Then construction succeeds", func() {
				So(err, ShouldBeNil)
				id, err := r.Resolve("Alpha Ants")
				So(err, ShouldBeNil)
				So(id, ShouldEqual, team.ID("AAA"))
			})
		})

		Convey("When a row has no id", func() {
			_, err := team.FromRows([]team.Row{{City: "Nowhere", Name: "Ghosts"}})

			Convey("Then construction fails", func() {
				So(errors.Is(err, team.ErrInvalidTeam), ShouldBeTrue)
			})
		})

		Convey("When building from external rows", func() {
			r, err := team.FromRows([]team.Row{
				{ID: " KC ", City: "Kansas City", Name: "Chiefs", Aliases: []string{"KAN"}},
			})

			Convey("Then fields are trimmed and lookups work", func() {
				So(err, ShouldBeNil)
				tm, ok := r.Lookup("KC")
				So(ok, ShouldBeTrue)
				So(tm.DisplayName(), ShouldEqual, "Kansas City Chiefs")
				So(tm.Slug(), ShouldEqual, "kansas-city-chiefs")
			})
		})
	})
}
