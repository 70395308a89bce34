package csvio_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/flagmap/internal/adapters/csvio"
	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func TestRead(t *testing.T) {
	Convey("Given a ragged csv with a byte order mark", t, func() {
		path := writeFixture(t, "drives.csv", "\ufeffgame_id,Team, quarter\n2019_1_PIT_NE,PIT,1\n2019_1_PIT_NE,NE\n")

		Convey("When read", func() {
			tbl, err := csvio.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then columns are found case-insensitively", func() {
				So(tbl.Len(), ShouldEqual, 2)
				So(tbl.Has("GAME_ID"), ShouldBeTrue)
				So(tbl.Get(0, "team"), ShouldEqual, "PIT")
				So(tbl.Get(0, "quarter"), ShouldEqual, "1")
			})

			Convey("Then short rows read missing cells as empty", func() {
				So(tbl.Get(1, "quarter"), ShouldEqual, "")
				rec := tbl.Record(1)
				So(len(rec.Values), ShouldEqual, 3)
			})

			Convey("Then missing required columns are reported", func() {
				err := tbl.Require("game_id", "result", "los")
				So(errors.Is(err, csvio.ErrMissingColumn), ShouldBeTrue)
				var mc *csvio.MissingColumnError
				So(errors.As(err, &mc), ShouldBeTrue)
				So(mc.Columns, ShouldResemble, []string{"result", "los"})
			})

			Convey("Then line numbers count the header", func() {
				So(tbl.Line(0), ShouldEqual, 2)
			})
		})
	})

	Convey("Given an empty file", t, func() {
		_, err := csvio.ReadFile(writeFixture(t, "empty.csv", ""))
		So(errors.Is(err, csvio.ErrEmptyFile), ShouldBeTrue)
	})

	Convey("Given a missing file", t, func() {
		_, err := csvio.ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})
}

func TestTeamsRoundTrip(t *testing.T) {
	Convey("Given the default registry written to disk", t, func() {
		path := filepath.Join(t.TempDir(), "teams.csv")
		So(csvio.WriteTeams(path, team.Default().Teams()), ShouldBeNil)

		Convey("When read back into a registry", func() {
			rows, err := csvio.ReadTeams(path)
			So(err, ShouldBeNil)
			reg, err := team.FromRows(rows)
			So(err, ShouldBeNil)

			Convey("Then legacy aliases still resolve", func() {
				So(reg.Len(), ShouldEqual, 32)
				id, err := reg.Resolve("Oakland")
				So(err, ShouldBeNil)
				So(id, ShouldEqual, team.ID("LV"))
			})
		})
	})
}

func TestWriteDrives(t *testing.T) {
	Convey("Given enriched drives with passthrough columns", t, func() {
		src := model.Record{Header: []string{"game_id", "team_id", "result", "coach"}, Values: []string{"2019_01_PIT_NE", "PIT", "Punt", "Tomlin"}}
		k := gamekey.Key{Season: 2019, Week: 1, Away: "PIT", Home: "NE"}
		vocab := aggregate.NewVocabulary("Off_False_Start", "Def_Holding")
		drives := []aggregate.DriveTotals{{
			Drive: model.Drive{Game: k, Seq: 1, Team: "PIT", Quarter: 1, Start: 3600, LOS: 75, Source: src},
			Totals: aggregate.Totals{
				Counts: map[string]int{"Off_False_Start": 2, "Def_Holding": 0},
				OffPen: 2, OffYards: 10,
			},
		}}
		path := filepath.Join(t.TempDir(), "out", "drives.csv")

		Convey("When written", func() {
			So(csvio.WriteDrives(path, vocab, drives), ShouldBeNil)
			lines := readLines(t, path)

			Convey("Then source columns come first, derived and count columns follow", func() {
				So(lines[0], ShouldEqual, "game_id,team_id,result,coach,seq,quarter,time_left,los,Def_Holding,Off_False_Start,total_off_pen,total_def_pen,total_off_pen_yards,total_def_pen_yards")
				So(lines[1], ShouldEqual, "2019_1_PIT_NE,PIT,Punt,Tomlin,1,1,01:00:00,75,0,2,2,0,10,0")
			})
		})
	})
}

func TestWriteTeamPerformancesAndSummary(t *testing.T) {
	Convey("Given a team row and a summary", t, func() {
		dir := t.TempDir()
		k := gamekey.Key{Season: 2019, Week: 1, Away: "PIT", Home: "NE"}
		vocab := aggregate.NewVocabulary("Def_Holding")
		teams := []aggregate.TeamTotals{{
			Performance: model.TeamPerformance{Game: k, Team: "NE", Opponent: "PIT"},
			Totals:      aggregate.Totals{Counts: map[string]int{"Def_Holding": 1}, DefPen: 1, DefYards: 5},
		}}
		summary := []aggregate.CategorySummary{{Category: "Def_Holding", Occurrences: 1, Yards: "5"}}

		So(csvio.WriteTeamPerformances(filepath.Join(dir, "teams.csv"), vocab, teams), ShouldBeNil)
		So(csvio.WriteSummary(filepath.Join(dir, "summary.csv"), summary), ShouldBeNil)

		Convey("Then both files carry the expected rows", func() {
			tl := readLines(t, filepath.Join(dir, "teams.csv"))
			So(tl[0], ShouldEqual, "game_id,team_id,opp_team_id,Def_Holding,total_off_pen,total_def_pen,total_off_pen_yards,total_def_pen_yards")
			So(tl[1], ShouldEqual, "2019_1_PIT_NE,NE,PIT,1,0,1,0,5")

			sl := readLines(t, filepath.Join(dir, "summary.csv"))
			So(sl, ShouldResemble, []string{"category,num_occ,yards", "Def_Holding,1,5"})
		})
	})
}

func TestWritePenalties(t *testing.T) {
	Convey("Given a normalised penalty", t, func() {
		src := model.Record{Header: []string{"Player", "Pos", "Ref Crew"}, Values: []string{"J. Doe", "T", "Hochuli"}}
		p := model.Penalty{
			Game: gamekey.Key{Season: 2019, Week: 1, Away: "PIT", Home: "NE"},
			Team: "PIT", Opponent: "NE", Phase: model.Offense, Name: "False Start",
			Category: "Off_False_Start", Quarter: 2, Clock: "07:30", Remaining: 2250,
			Yards: 5, Declined: true, Source: src,
		}
		path := filepath.Join(t.TempDir(), "penalties.csv")

		Convey("When written", func() {
			So(csvio.WritePenalties(path, []model.Penalty{p}), ShouldBeNil)
			lines := readLines(t, path)

			Convey("Then the fixed columns are filled", func() {
				So(len(lines), ShouldEqual, 2)
				So(lines[1], ShouldEqual, "2019_1_PIT_NE,PIT,NE,False Start,J. Doe,T,,2019,1,2,07:30,00:37:30,,,Hochuli,Yes,No,5,No,No,Off,Off_False_Start")
			})
		})
	})

	Convey("Given penalties read from lower-case headers, out of order", t, func() {
		src := model.Record{Header: []string{"player", "pos", "ref crew"}, Values: []string{"J. Doe", "T", "Hochuli"}}
		day1 := time.Date(2019, 9, 8, 0, 0, 0, 0, time.UTC)
		day2 := day1.AddDate(0, 0, 7)
		pitNE := gamekey.Key{Season: 2019, Week: 1, Away: "PIT", Home: "NE"}
		denOAK := gamekey.Key{Season: 2019, Week: 1, Away: "DEN", Home: "OAK"}
		mk := func(k gamekey.Key, d time.Time, rem int) model.Penalty {
			return model.Penalty{Game: k, Team: k.Away, Opponent: k.Home, Phase: model.Defense,
				Name: "Holding", Remaining: rem, Date: d, Source: src}
		}
		events := []model.Penalty{
			mk(pitNE, day2, 100),
			mk(pitNE, day1, 900),
			mk(pitNE, day1, 3000),
			mk(denOAK, day1, 50),
		}
		path := filepath.Join(t.TempDir(), "penalties.csv")
		So(csvio.WritePenalties(path, events), ShouldBeNil)
		lines := readLines(t, path)

		Convey("Then source columns are found regardless of case", func() {
			So(lines[1], ShouldContainSubstring, ",J. Doe,T,")
			So(lines[1], ShouldContainSubstring, ",Hochuli,")
		})

		Convey("Then rows are sorted by date, game and time left descending", func() {
			So(len(lines), ShouldEqual, 5)
			So(lines[1], ShouldStartWith, "2019_1_DEN_OAK,")
			So(lines[2], ShouldContainSubstring, ",00:50:00,")
			So(lines[3], ShouldContainSubstring, ",00:15:00,")
			So(lines[4], ShouldContainSubstring, "2019-09-15")
			So(events[0].Remaining, ShouldEqual, 100)
		})
	})
}
