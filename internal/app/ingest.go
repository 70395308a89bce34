package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/flagmap/internal/adapters/csvio"
	"github.com/okian/flagmap/internal/domain/clock"
	"github.com/okian/flagmap/internal/domain/dedupe"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/model"
	"github.com/okian/flagmap/internal/domain/team"
	"github.com/okian/flagmap/pkg/metrics"
)

// Dataset labels used in diagnostics, logs and metrics.
const (
	datasetGames        = "games"
	datasetDrives       = "drives"
	datasetPenalties    = "penalties"
	datasetPerformances = "team_performances"
)

// Source columns.
const (
	colGameID    = "game_id"
	colDate      = "date"
	colTeamID    = "team_id"
	colQuarter   = "quarter"
	colTime      = "time"
	colResult    = "result"
	colLOS       = "los"
	colHomeCoach = "home_coach"
	colAwayCoach = "away_coach"

	colPenTeam       = "Team"
	colPenOpp        = "Opp"
	colPenPhase      = "Phase"
	colPenName       = "Penalty"
	colPenDate       = "Date"
	colPenWeek       = "Week"
	colPenQuarter    = "Quarter"
	colPenTime       = "Time"
	colPenYards      = "Yardage"
	colPenHome       = "Home"
	colPenDeclined   = "Declined"
	colPenOffsetting = "Offsetting"
	colPenRefCrew    = "Ref Crew"
)

// Columns added to team performance rows.
const (
	colCoach      = "coach"
	colOppCoach   = "opp_coach"
	colYear       = "year"
	colWeek       = "week"
	colHome       = "home"
	colPostseason = "postseason"
	colRefCrew    = "ref_crew"
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "2006-01-02 15:04:05"} //nolint:gochecknoglobals // fixed parse order

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q", s)
}

// kindOf maps a record error onto a diagnostics kind.
func kindOf(err error) string {
	switch {
	case errors.Is(err, team.ErrUnknownTeam):
		return model.KindUnknownTeam
	case errors.Is(err, gamekey.ErrUnresolvedGame):
		return model.KindUnresolvedGame
	case errors.Is(err, gamekey.ErrMalformedKey):
		return model.KindMalformedKey
	case errors.Is(err, clock.ErrNoQuarter):
		return model.KindNoQuarter
	case errors.Is(err, clock.ErrMalformedClock):
		return model.KindMalformedClock
	default:
		return model.KindMalformedRow
	}
}

// ingest turns source tables into domain records for one run. Rejected rows
// are counted in diag and skipped.
type ingest struct {
	reg       *team.Registry
	norm      *gamekey.Normalizer
	diag      *model.Diagnostics
	deduper   dedupe.Deduper
	clockOpts []clock.Option
}

func (in *ingest) reject(dataset string, t *csvio.Table, i int, err error) {
	kind := kindOf(err)
	in.diag.Error(kind, fmt.Errorf("%s line %d: %w", dataset, t.Line(i), err))
	metrics.RecordRowRejected(dataset, kind)
}

func (in *ingest) duplicate(ctx context.Context, dataset string, t *csvio.Table, i int) bool {
	key := dedupe.Fingerprint(append([]string{dataset}, t.Rows[i]...)...)
	if !in.deduper.SeenAndRecord(ctx, key) {
		return false
	}
	in.diag.Warn(model.KindDuplicateRow, fmt.Errorf("%s line %d: duplicate row", dataset, t.Line(i)))
	metrics.RecordDuplicateRow(dataset)
	return true
}

// games reads the catalog. Keys are canonicalised through the registry and
// duplicates by key are dropped.
func (in *ingest) games(ctx context.Context, t *csvio.Table) (map[gamekey.Key]model.Game, error) {
	if err := t.Require(colGameID); err != nil {
		return nil, err
	}
	metrics.RecordRowsRead(datasetGames, t.Len())
	out := make(map[gamekey.Key]model.Game, t.Len())
	for i := range t.Rows {
		key, err := gamekey.Canonicalize(in.reg, t.Get(i, colGameID))
		if err != nil {
			in.reject(datasetGames, t, i, err)
			continue
		}
		if in.deduper.SeenAndRecord(ctx, dedupe.Fingerprint(datasetGames, key.String())) {
			in.diag.Warn(model.KindDuplicateRow, fmt.Errorf("%s line %d: duplicate game %s", datasetGames, t.Line(i), key))
			metrics.RecordDuplicateRow(datasetGames)
			continue
		}
		g := model.Game{Key: key, Source: t.Record(i)}
		if raw := t.Get(i, colDate); raw != "" {
			if d, err := parseDate(raw); err == nil {
				g.Date = d
			}
		}
		out[key] = g
	}
	return out, nil
}

// resolveKey canonicalises a source game id and matches it against the
// catalog in either orientation.
func (in *ingest) resolveKey(raw string) (gamekey.Resolution, error) {
	k, err := gamekey.Canonicalize(in.reg, raw)
	if err != nil {
		return gamekey.Resolution{}, err
	}
	return in.norm.Match(k)
}

// drives groups drive rows by catalog game, keeping source order.
func (in *ingest) drives(t *csvio.Table) (map[gamekey.Key][]model.DriveRow, error) {
	if err := t.Require(colGameID, colTeamID, colQuarter, colTime, colResult); err != nil {
		return nil, err
	}
	metrics.RecordRowsRead(datasetDrives, t.Len())
	out := make(map[gamekey.Key][]model.DriveRow)
	for i := range t.Rows {
		res, err := in.resolveKey(t.Get(i, colGameID))
		if err != nil {
			in.reject(datasetDrives, t, i, err)
			continue
		}
		id, err := in.reg.Resolve(t.Get(i, colTeamID))
		if err != nil {
			in.reject(datasetDrives, t, i, err)
			continue
		}
		row := model.DriveRow{
			Game:   res.Key,
			Team:   id,
			Clock:  t.Get(i, colTime),
			Result: t.Get(i, colResult),
			LOS:    t.Get(i, colLOS),
			Line:   t.Line(i),
			Source: t.Record(i),
		}
		q, ok, err := clock.ParseQuarter(t.Get(i, colQuarter), in.clockOpts...)
		if err != nil {
			in.reject(datasetDrives, t, i, err)
			continue
		}
		if ok {
			row.Quarter = &q
		}
		out[res.Key] = append(out[res.Key], row)
	}
	return out, nil
}

// penalties resolves each flag to its catalog game and computes its time
// remaining.
func (in *ingest) penalties(ctx context.Context, t *csvio.Table) ([]model.Penalty, error) {
	err := t.Require(colPenTeam, colPenOpp, colPenPhase, colPenName, colPenDate,
		colPenWeek, colPenQuarter, colPenTime, colPenHome)
	if err != nil {
		return nil, err
	}
	metrics.RecordRowsRead(datasetPenalties, t.Len())
	out := make([]model.Penalty, 0, t.Len())
	for i := range t.Rows {
		if in.duplicate(ctx, datasetPenalties, t, i) {
			continue
		}
		p, err := in.penalty(t, i)
		if err != nil {
			in.reject(datasetPenalties, t, i, err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (in *ingest) penalty(t *csvio.Table, i int) (model.Penalty, error) {
	date, err := parseDate(t.Get(i, colPenDate))
	if err != nil {
		return model.Penalty{}, err
	}
	season := gamekey.SeasonOf(date)
	week, post, err := gamekey.ResolveWeek(season, t.Get(i, colPenWeek))
	if err != nil {
		return model.Penalty{}, err
	}

	own, opp := t.Get(i, colPenTeam), t.Get(i, colPenOpp)
	away, home := own, opp
	if yes(t.Get(i, colPenHome)) {
		away, home = opp, own
	}
	res, err := in.norm.CanonicalGameKey(season, week, away, home)
	if err != nil {
		if errors.Is(err, gamekey.ErrUnresolvedGame) {
			in.diag.Match(gamekey.Unresolved.String())
			metrics.RecordGameResolved(gamekey.Unresolved.String())
		}
		return model.Penalty{}, err
	}
	in.diag.Match(res.Match.String())
	metrics.RecordGameResolved(res.Match.String())

	id, err := in.reg.Resolve(own)
	if err != nil {
		return model.Penalty{}, err
	}

	phase, ok := model.ParsePhase(t.Get(i, colPenPhase))
	if !ok {
		return model.Penalty{}, fmt.Errorf("phase %q", t.Get(i, colPenPhase))
	}
	q, ok, err := clock.ParseQuarter(t.Get(i, colPenQuarter), in.clockOpts...)
	if err != nil {
		return model.Penalty{}, err
	}
	if !ok {
		return model.Penalty{}, clock.ErrNoQuarter
	}
	clk := t.Get(i, colPenTime)
	rem, err := clock.TimeRemaining(q, clk, in.clockOpts...)
	if err != nil {
		return model.Penalty{}, err
	}
	yards := 0
	if raw := t.Get(i, colPenYards); raw != "" {
		if yards, err = strconv.Atoi(raw); err != nil {
			return model.Penalty{}, fmt.Errorf("yardage %q", raw)
		}
	}

	name := t.Get(i, colPenName)
	return model.Penalty{
		ID:         "p" + strconv.Itoa(t.Line(i)),
		Game:       res.Key,
		Team:       id,
		Opponent:   res.Key.Opponent(id),
		Home:       id == res.Key.Home,
		Postseason: post,
		Phase:      phase,
		Name:       name,
		Category:   model.Category(phase, name),
		Quarter:    q,
		Clock:      clk,
		Remaining:  rem,
		Yards:      yards,
		Declined:   yes(t.Get(i, colPenDeclined)),
		Offsetting: yes(t.Get(i, colPenOffsetting)),
		Date:       date,
		Source:     t.Record(i),
	}, nil
}

// flagContext is what the penalty log knows about a game beyond its key.
type flagContext struct {
	postseason bool
	refCrew    string
}

type teamGame struct {
	game gamekey.Key
	team team.ID
}

// flagContexts indexes penalties by (game, team) and by game. The first flag
// wins; a later flag only fills a missing crew.
func flagContexts(penalties []model.Penalty) (map[teamGame]flagContext, map[gamekey.Key]flagContext) {
	byTeam := make(map[teamGame]flagContext)
	byGame := make(map[gamekey.Key]flagContext)
	merge := func(c flagContext, ok bool, p *model.Penalty) flagContext {
		if !ok {
			return flagContext{postseason: p.Postseason, refCrew: p.Source.Get(colPenRefCrew)}
		}
		if c.refCrew == "" {
			c.refCrew = p.Source.Get(colPenRefCrew)
		}
		return c
	}
	for i := range penalties {
		p := &penalties[i]
		k := teamGame{game: p.Game, team: p.Team}
		c, ok := byTeam[k]
		byTeam[k] = merge(c, ok, p)
		c, ok = byGame[p.Game]
		byGame[p.Game] = merge(c, ok, p)
	}
	return byTeam, byGame
}

// performances reads team box-score rows. Each row gets the opponent and
// coaches from the catalog entry, and the season, week, home flag,
// postseason flag and referee crew. The last two come from the team's own
// flags in that game, else any flag in the game; postseason falls back to
// the calendar and the crew is left blank for games without flags.
func (in *ingest) performances(
	t *csvio.Table,
	games map[gamekey.Key]model.Game,
	penalties []model.Penalty,
) ([]model.TeamPerformance, error) {
	if err := t.Require(colGameID, colTeamID); err != nil {
		return nil, err
	}
	metrics.RecordRowsRead(datasetPerformances, t.Len())
	byTeam, byGame := flagContexts(penalties)
	out := make([]model.TeamPerformance, 0, t.Len())
	for i := range t.Rows {
		res, err := in.resolveKey(t.Get(i, colGameID))
		if err != nil {
			in.reject(datasetPerformances, t, i, err)
			continue
		}
		id, err := in.reg.Resolve(t.Get(i, colTeamID))
		if err != nil {
			in.reject(datasetPerformances, t, i, err)
			continue
		}
		if !res.Key.Has(id) {
			in.diag.Error(model.KindOrphanPerformance,
				fmt.Errorf("%s line %d: %s does not play in %s", datasetPerformances, t.Line(i), id, res.Key))
			metrics.RecordRowRejected(datasetPerformances, model.KindOrphanPerformance)
			continue
		}
		rec := t.Record(i)
		if g, ok := games[res.Key]; ok && g.Source.Has(colHomeCoach) {
			own, other := g.Source.Get(colAwayCoach), g.Source.Get(colHomeCoach)
			if id == res.Key.Home {
				own, other = other, own
			}
			rec = rec.With(colCoach, own).With(colOppCoach, other)
		}

		fc, ok := byTeam[teamGame{game: res.Key, team: id}]
		if !ok {
			fc, ok = byGame[res.Key]
		}
		if !ok {
			fc.postseason = gamekey.IsPostseason(res.Key.Season, res.Key.Week)
		}
		rec = rec.With(colYear, strconv.Itoa(res.Key.Season)).
			With(colWeek, strconv.Itoa(res.Key.Week)).
			With(colHome, yesNo(id == res.Key.Home)).
			With(colPostseason, yesNo(fc.postseason)).
			With(colRefCrew, fc.refCrew)

		out = append(out, model.TeamPerformance{
			Game:     res.Key,
			Team:     id,
			Opponent: res.Key.Opponent(id),
			Source:   rec,
		})
	}
	return out, nil
}

func yes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
