package synth

import (
	"fmt"

	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/types"
)

// CheckReport compares a run report with the expectation and returns one
// line per mismatch.
func CheckReport(r types.RunReport, exp Expectation) []string {
	var out []string
	check := func(name string, got, want int) {
		if got != want {
			out = append(out, fmt.Sprintf("%s: got %d, want %d", name, got, want))
		}
	}
	check("games", r.Games, exp.Games)
	check("drives", r.Drives, exp.Drives)
	check("penalties", r.Penalties, exp.Penalties)
	check("assigned", r.Assigned, exp.Assigned)
	check("unassigned", r.Unassigned, 0)
	check("team rows", r.TeamRows, exp.TeamRows)
	check("duplicate rows", r.Diagnostics.Warnings[model.KindDuplicateRow], exp.Duplicates)
	check("unresolved games", r.Diagnostics.Errors[model.KindUnresolvedGame], exp.Unresolved)
	check("failed games", len(r.Diagnostics.FailedGames), 0)
	return out
}

// CheckDrives compares the enriched drives of one game with the expected
// tallies.
func CheckDrives(key string, got []types.DriveView, want []DriveCount) []string {
	if len(got) != len(want) {
		return []string{fmt.Sprintf("%s: got %d drives, want %d", key, len(got), len(want))}
	}
	var out []string
	for i, d := range got {
		w := want[i]
		if d.Seq != w.Seq || d.TeamID != string(w.Team) {
			out = append(out, fmt.Sprintf("%s drive %d: got seq %d team %s, want seq %d team %s",
				key, i, d.Seq, d.TeamID, w.Seq, w.Team))
			continue
		}
		if d.TotalOffPen != w.OffPen || d.TotalDefPen != w.DefPen {
			out = append(out, fmt.Sprintf("%s drive %d: got off/def %d/%d, want %d/%d",
				key, d.Seq, d.TotalOffPen, d.TotalDefPen, w.OffPen, w.DefPen))
		}
	}
	return out
}
