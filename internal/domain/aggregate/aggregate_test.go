package aggregate_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

var game = gamekey.Key{Season: 2019, Week: 1, Away: "PIT", Home: "NE"}

func penalty(phase model.Phase, name string, yards int) model.Penalty {
	return model.Penalty{
		Game:     game,
		Team:     "PIT",
		Phase:    phase,
		Name:     name,
		Category: model.Category(phase, name),
		Yards:    yards,
	}
}

func repeat(p model.Penalty, n int) []model.Penalty {
	out := make([]model.Penalty, n)
	for i := range out {
		out[i] = p
		out[i].ID = fmt.Sprintf("%s-%d", p.Category, i)
	}
	return out
}

func TestBuildVocabulary(t *testing.T) {
	Convey("Given penalties of varying frequency", t, func() {
		var events []model.Penalty
		events = append(events, repeat(penalty(model.Offense, "False Start", 5), 50)...)
		events = append(events, repeat(penalty(model.Defense, "Defensive Holding", 5), 60)...)
		events = append(events, repeat(penalty(model.Defense, "Taunting", 15), 49)...)
		events = append(events, repeat(penalty(model.SpecialTeams, "Illegal Block Above the Waist", 10), 80)...)

		Convey("When building with the defaults", func() {
			v := aggregate.BuildVocabulary(events)

			Convey("Then rare and special teams categories are left out", func() {
				So(v.Columns(), ShouldResemble, []string{"Def_Holding", "Off_False_Start"})
				So(v.Has("Def_Taunting"), ShouldBeFalse)
				So(v.Has("ST_Illegal_Block_Above_the_Waist"), ShouldBeFalse)
			})
		})

		Convey("When the threshold and exclusions are changed", func() {
			v := aggregate.BuildVocabulary(events, aggregate.WithMinSupport(1), aggregate.WithExcludedPhases())

			Convey("Then every category is a column", func() {
				So(v.Len(), ShouldEqual, 4)
			})
		})
	})
}

func TestFold(t *testing.T) {
	Convey("Given drives and placed penalties", t, func() {
		v := aggregate.NewVocabulary("Off_False_Start", "Def_Holding")
		drives := []model.Drive{
			{Game: game, Seq: 0, Start: 3600},
			{Game: game, Seq: 1, Start: 1800},
			{Game: game, Seq: 2, Start: 900},
		}
		placed := []aggregate.Placed{
			{Drive: 1, Penalty: penalty(model.Offense, "False Start", 5)},
			{Drive: 1, Penalty: penalty(model.Defense, "Defensive Holding", 5)},
			{Drive: 1, Penalty: penalty(model.Defense, "Taunting", 15)},
			{Drive: 2, Penalty: penalty(model.SpecialTeams, "Kick Catch Interference", 15)},
		}

		Convey("When folding", func() {
			got, err := aggregate.Fold(v, drives, placed)

			Convey("Then every drive has every column", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 3)
				for _, d := range got {
					So(len(d.Totals.Counts), ShouldEqual, 2)
				}
				So(got[0].Totals.Counts["Def_Holding"], ShouldEqual, 0)
			})

			Convey("Then counts and totals land on the assigned drive", func() {
				tot := got[1].Totals
				So(tot.Counts["Off_False_Start"], ShouldEqual, 1)
				So(tot.Counts["Def_Holding"], ShouldEqual, 1)
				So(tot.Yards["Def_Holding"], ShouldEqual, 5)
				So(tot.OffPen, ShouldEqual, 1)
				So(tot.OffYards, ShouldEqual, 5)
				So(tot.DefPen, ShouldEqual, 2)
				So(tot.DefYards, ShouldEqual, 20)
			})

			Convey("Then special teams flags reach no totals", func() {
				tot := got[2].Totals
				So(tot.OffPen+tot.DefPen, ShouldEqual, 0)
				So(tot.OffYards+tot.DefYards, ShouldEqual, 0)
			})
		})

		Convey("When folding the same input twice into fresh aggregates", func() {
			a, errA := aggregate.Fold(v, drives, placed)
			b, errB := aggregate.Fold(v, drives, placed)

			Convey("Then the totals are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When a placement names a missing drive", func() {
			_, err := aggregate.Fold(v, drives, []aggregate.Placed{{Drive: 9, Penalty: penalty(model.Offense, "False Start", 5)}})
			So(errors.Is(err, aggregate.ErrUnknownDrive), ShouldBeTrue)
		})
	})
}

func TestFoldTeams(t *testing.T) {
	Convey("Given team performance rows", t, func() {
		v := aggregate.NewVocabulary("Off_False_Start")
		rows := []model.TeamPerformance{
			{Game: game, Team: "PIT", Opponent: "NE"},
			{Game: game, Team: "NE", Opponent: "PIT"},
		}
		ne := penalty(model.Defense, "Offside", 5)
		ne.Team = "NE"
		other := penalty(model.Offense, "False Start", 5)
		other.Game = gamekey.Key{Season: 2019, Week: 2, Away: "PIT", Home: "SEA"}
		events := []model.Penalty{penalty(model.Offense, "False Start", 5), ne, other}

		Convey("When folding by game and penalised team", func() {
			got, missed := aggregate.FoldTeams(v, rows, events)

			Convey("Then each flag lands on its own team row", func() {
				So(missed, ShouldEqual, 1)
				So(got[0].Totals.Counts["Off_False_Start"], ShouldEqual, 1)
				So(got[0].Totals.OffPen, ShouldEqual, 1)
				So(got[1].Totals.DefPen, ShouldEqual, 1)
				So(got[1].Totals.DefYards, ShouldEqual, 5)
				So(got[1].Performance.Opponent, ShouldEqual, team.ID("PIT"))
			})
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given penalties with yardage", t, func() {
		var events []model.Penalty
		events = append(events, repeat(penalty(model.Offense, "False Start", 5), 3)...)
		declined := penalty(model.Offense, "False Start", 0)
		declined.Declined = true
		events = append(events, declined)
		for _, y := range []int{2, 45, 30, 1} {
			events = append(events, penalty(model.Defense, "Defensive Pass Interference", y))
		}
		off := penalty(model.Defense, "Defensive Holding", 5)
		off.Offsetting = true
		events = append(events, off)

		Convey("When summarising", func() {
			got := aggregate.Summarize(events)

			Convey("Then counts include every flag and yardage ignores declined ones", func() {
				So(got, ShouldResemble, []aggregate.CategorySummary{
					{Category: "Def_Pass_Interference", Occurrences: 4, Yards: aggregate.SpotFoul},
					{Category: "Off_False_Start", Occurrences: 4, Yards: "5"},
				})
			})
		})
	})
}
