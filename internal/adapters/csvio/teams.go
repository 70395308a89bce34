package csvio

import (
	"strings"

	"github.com/okian/flagmap/internal/domain/team"
)

// Team table columns. Aliases are separated by '|'.
const (
	ColTeamID      = "team_id"
	ColTeamCity    = "city"
	ColTeamName    = "name"
	ColTeamAliases = "aliases"
)

// ReadTeams reads a registry table.
func ReadTeams(path string) ([]team.Row, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ColTeamID, ColTeamCity, ColTeamName); err != nil {
		return nil, err
	}
	rows := make([]team.Row, 0, t.Len())
	for i := range t.Rows {
		r := team.Row{
			ID:   t.Get(i, ColTeamID),
			City: t.Get(i, ColTeamCity),
			Name: t.Get(i, ColTeamName),
		}
		for _, a := range strings.Split(t.Get(i, ColTeamAliases), "|") {
			if a = strings.TrimSpace(a); a != "" {
				r.Aliases = append(r.Aliases, a)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// WriteTeams writes a registry table readable by ReadTeams.
func WriteTeams(path string, teams []team.Team) error {
	rows := make([][]string, 0, len(teams))
	for _, tm := range teams {
		rows = append(rows, []string{string(tm.ID), tm.City, tm.Name, strings.Join(tm.Aliases, "|")})
	}
	return writeFile(path, []string{ColTeamID, ColTeamCity, ColTeamName, ColTeamAliases}, rows)
}
