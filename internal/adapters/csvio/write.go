package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/flagmap/internal/domain/aggregate"
	"github.com/okian/flagmap/internal/domain/clock"
	"github.com/okian/flagmap/internal/domain/model"
)

// Totals columns appended after the vocabulary columns.
const (
	ColTotalOffPen      = "total_off_pen"
	ColTotalDefPen      = "total_def_pen"
	ColTotalOffPenYards = "total_off_pen_yards"
	ColTotalDefPenYards = "total_def_pen_yards"
)

// Derived columns. They overwrite a source column of the same name, or are
// appended after the source columns.
var (
	driveColumns = []string{"game_id", "team_id", "seq", "quarter", "time_left", "los"} //nolint:gochecknoglobals // fixed layout
	teamColumns  = []string{"game_id", "team_id", "opp_team_id"}                       //nolint:gochecknoglobals // fixed layout
	totalColumns = []string{ColTotalOffPen, ColTotalDefPen, ColTotalOffPenYards, ColTotalDefPenYards} //nolint:gochecknoglobals // fixed layout

	penaltyColumns = []string{ //nolint:gochecknoglobals // fixed layout
		"game_id", "team_id", "opp_id", "penalty", "player", "pos", "date", "year", "week",
		"quarter", "time", "time_left", "down", "dist", "ref_crew", "declined", "offsetting",
		"yardage", "home", "postseason", "phase", "category",
	}
)

// WriteDrives writes one row per enriched drive: source columns in source
// order, the derived drive columns, one count column per vocabulary category
// and the four totals.
func WriteDrives(path string, vocab aggregate.Vocabulary, drives []aggregate.DriveTotals) error {
	var src []string
	if len(drives) > 0 {
		src = drives[0].Drive.Source.Header
	}
	base := mergeHeader(src, driveColumns)
	header := append(append(append([]string(nil), base...), vocab.Columns()...), totalColumns...)

	rows := make([][]string, 0, len(drives))
	for i := range drives {
		d := &drives[i].Drive
		row := passthrough(d.Source, base, map[string]string{
			"game_id":   d.Game.String(),
			"team_id":   string(d.Team),
			"seq":       strconv.Itoa(d.Seq),
			"quarter":   strconv.Itoa(d.Quarter),
			"time_left": clock.Format(d.Start),
			"los":       strconv.Itoa(d.LOS),
		})
		rows = append(rows, appendTotals(row, vocab, drives[i].Totals))
	}
	return writeFile(path, header, rows)
}

// WriteTeamPerformances writes one row per enriched team-game.
func WriteTeamPerformances(path string, vocab aggregate.Vocabulary, teams []aggregate.TeamTotals) error {
	var src []string
	if len(teams) > 0 {
		src = teams[0].Performance.Source.Header
	}
	base := mergeHeader(src, teamColumns)
	header := append(append(append([]string(nil), base...), vocab.Columns()...), totalColumns...)

	rows := make([][]string, 0, len(teams))
	for i := range teams {
		p := &teams[i].Performance
		row := passthrough(p.Source, base, map[string]string{
			"game_id":     p.Game.String(),
			"team_id":     string(p.Team),
			"opp_team_id": string(p.Opponent),
		})
		rows = append(rows, appendTotals(row, vocab, teams[i].Totals))
	}
	return writeFile(path, header, rows)
}

// WritePenalties writes the normalised penalty log ordered by date, game
// and time remaining, most time left first. events is not reordered.
func WritePenalties(path string, events []model.Penalty) error {
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := &events[order[a]], &events[order[b]]
		if !pa.Date.Equal(pb.Date) {
			return pa.Date.Before(pb.Date)
		}
		if ka, kb := pa.Game.String(), pb.Game.String(); ka != kb {
			return ka < kb
		}
		return pa.Remaining > pb.Remaining
	})

	rows := make([][]string, 0, len(events))
	for _, i := range order {
		p := &events[i]
		date := ""
		if !p.Date.IsZero() {
			date = p.Date.Format("2006-01-02")
		}
		rows = append(rows, []string{
			p.Game.String(), string(p.Team), string(p.Opponent), p.Name,
			p.Source.Get("Player"), p.Source.Get("Pos"), date,
			strconv.Itoa(p.Game.Season), strconv.Itoa(p.Game.Week),
			strconv.Itoa(p.Quarter), p.Clock, clock.Format(p.Remaining),
			p.Source.Get("Down"), p.Source.Get("Dist"), p.Source.Get("Ref Crew"),
			yesNo(p.Declined), yesNo(p.Offsetting), strconv.Itoa(p.Yards),
			yesNo(p.Home), yesNo(p.Postseason), string(p.Phase), p.Category,
		})
	}
	return writeFile(path, penaltyColumns, rows)
}

// WriteSummary writes the per-category penalty summary.
func WriteSummary(path string, summary []aggregate.CategorySummary) error {
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{s.Category, strconv.Itoa(s.Occurrences), s.Yards})
	}
	return writeFile(path, []string{"category", "num_occ", "yards"}, rows)
}

// WriteTable writes header and rows to path, creating parent directories.
func WriteTable(path string, header []string, rows [][]string) error {
	return writeFile(path, header, rows)
}

func writeFile(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func mergeHeader(src, derived []string) []string {
	out := append([]string(nil), src...)
	have := make(map[string]struct{}, len(src))
	for _, h := range src {
		have[columnKey(h)] = struct{}{}
	}
	for _, d := range derived {
		if _, ok := have[columnKey(d)]; !ok {
			out = append(out, d)
		}
	}
	return out
}

func passthrough(src model.Record, header []string, set map[string]string) []string {
	row := make([]string, len(header))
	for i, h := range header {
		if v, ok := set[columnKey(h)]; ok {
			row[i] = v
			continue
		}
		row[i] = src.Get(h)
	}
	return row
}

// columnKey folds a header name the way model.SameColumn compares them.
// Derived column names are already lower case.
func columnKey(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func appendTotals(row []string, vocab aggregate.Vocabulary, t aggregate.Totals) []string {
	for _, c := range vocab.Columns() {
		row = append(row, strconv.Itoa(t.Counts[c]))
	}
	return append(row,
		strconv.Itoa(t.OffPen), strconv.Itoa(t.DefPen),
		strconv.Itoa(t.OffYards), strconv.Itoa(t.DefYards),
	)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
