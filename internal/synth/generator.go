package synth

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/flagmap/internal/domain/clock"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/team"
)

// Source headers of the generated files.
var (
	GamesHeader        = []string{"game_id", "season", "week", "date", "away_team", "home_team", "away_coach", "home_coach"}                                       //nolint:gochecknoglobals // fixed layout
	DrivesHeader       = []string{"game_id", "team_id", "quarter", "time", "result", "los", "plays", "yards"}                                                     //nolint:gochecknoglobals // fixed layout
	PerformancesHeader = []string{"game_id", "team_id", "points", "total_yards"}                                                                                  //nolint:gochecknoglobals // fixed layout
	PenaltiesHeader    = []string{"Team", "Opp", "Phase", "Penalty", "Player", "Pos", "Date", "Week", "Quarter", "Time", "Down", "Dist", "Ref Crew", "Yardage", "Home", "Declined", "Offsetting"} //nolint:gochecknoglobals // fixed layout
)

const (
	regulation   = clock.DefaultRegulationPeriods
	periodLength = clock.DefaultPeriodLength
	gameLength   = regulation * periodLength
	halfTime     = gameLength / 2
)

type flag struct {
	name  string
	yards int // 0 means spot foul
}

var (
	offenseFlags = []flag{ //nolint:gochecknoglobals // static lookup table
		{"False Start", 5}, {"Offensive Holding", 10}, {"Illegal Formation", 5},
		{"Delay of Game", 5}, {"Offensive Pass Interference", 10},
	}
	defenseFlags = []flag{ //nolint:gochecknoglobals // static lookup table
		{"Defensive Holding", 5}, {"Defensive Offside", 5}, {"Roughing the Passer", 15},
		{"Defensive Pass Interference", 0}, {"Unnecessary Roughness", 15},
	}
	specialFlags = []flag{ //nolint:gochecknoglobals // static lookup table
		{"Illegal Block Above the Waist", 10}, {"Running Into the Kicker", 5},
	}
	driveResults = []string{"Punt", "Touchdown", "Field Goal", "Interception", "Fumble", "Downs", "Missed FG"} //nolint:gochecknoglobals // static lookup table
	positions    = []string{"QB", "RB", "WR", "TE", "T", "G", "C", "DE", "DT", "LB", "CB", "SS", "FS"}        //nolint:gochecknoglobals // static lookup table

	// Penalty logs print these franchises under a label other than their city.
	cityLabels = map[team.ID]string{ //nolint:gochecknoglobals // static lookup table
		"NYG": "N.Y. Giants",
		"NYJ": "N.Y. Jets",
		"LAC": "LA Chargers",
		"LAR": "LA Rams",
	}
)

// relocation is a franchise that played under another code before a season.
type relocation struct {
	until int
	code  string
	city  string
	slug  string
}

var relocations = map[team.ID]relocation{ //nolint:gochecknoglobals // static lookup table
	"LAR": {until: 2016, code: "STL", city: "St. Louis", slug: "st-louis-rams"},
	"LAC": {until: 2017, code: "SD", city: "San Diego", slug: "san-diego-chargers"},
	"LV":  {until: 2020, code: "OAK", city: "Oakland", slug: "oakland-raiders"},
}

// Dataset is one generated season.
type Dataset struct {
	Teams        []team.Team
	Games        [][]string
	Drives       [][]string
	Penalties    [][]string
	Performances [][]string
	Expected     Expectation
}

type generator struct {
	cfg    Config
	rng    *rand.Rand
	reg    *team.Registry
	teams  []team.Team
	season int
	out    *Dataset
}

// Generate builds a deterministic season from cfg.
func Generate(cfg Config) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := team.Default()
	g := &generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5eed)), //nolint:gosec // deterministic fixtures
		reg:    reg,
		teams:  reg.Teams(),
		season: cfg.Season,
		out: &Dataset{
			Teams:    reg.Teams(),
			Expected: Expectation{PerGame: make(map[string][]DriveCount)},
		},
	}

	n := 0
	for week := 1; week <= cfg.Weeks; week++ {
		order := g.rng.Perm(len(g.teams))
		for i := 0; i < cfg.GamesPerWeek; i++ {
			away, home := g.teams[order[2*i]].ID, g.teams[order[2*i+1]].ID
			g.game(n, gamekey.Key{Season: g.season, Week: week, Away: away, Home: home})
			n++
		}
	}
	if cfg.Noise && len(g.out.Penalties) > 0 {
		// Same teams one week past the schedule: no catalog entry.
		row := append([]string(nil), g.out.Penalties[0]...)
		row[7] = strconv.Itoa(cfg.Weeks + 1)
		g.out.Penalties = append(g.out.Penalties, row)
		g.out.Expected.Unresolved++
	}
	return g.out, nil
}

func (g *generator) game(n int, key gamekey.Key) {
	date := time.Date(g.season, time.September, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(key.Week-1))
	catalogID := g.legacyKey(key)
	g.out.Games = append(g.out.Games, []string{
		catalogID, strconv.Itoa(key.Season), strconv.Itoa(key.Week), date.Format("2006-01-02"),
		g.code(key.Away), g.code(key.Home), g.coach(key.Away), g.coach(key.Home),
	})
	if catalogID != key.String() {
		g.out.Expected.Legacy = append(g.out.Expected.Legacy, catalogID)
	}
	g.out.Expected.Games++

	starts := g.starts()
	counts := g.drives(n, key, starts)
	g.penalties(n, key, date, starts, counts)
	g.out.Expected.PerGame[key.String()] = counts

	perfID := catalogID
	if n%4 == 2 {
		perfID = g.legacyKey(key.Reversed())
	}
	for _, id := range []team.ID{key.Away, key.Home} {
		g.out.Performances = append(g.out.Performances, []string{
			perfID, g.code(id), strconv.Itoa(3 * g.rng.IntN(12)), strconv.Itoa(200 + g.rng.IntN(250)),
		})
	}
	g.out.Expected.TeamRows += 2
}

// starts returns strictly decreasing drive start times, the first at kickoff.
func (g *generator) starts() []int {
	n := g.cfg.DrivesPerGame
	step := gameLength / n
	out := make([]int, n)
	out[0] = gameLength
	for i := 1; i < n; i++ {
		out[i] = gameLength - i*step - g.rng.IntN(step/3)
	}
	return out
}

func (g *generator) drives(n int, key gamekey.Key, starts []int) []DriveCount {
	gameID := g.legacyKey(key)
	if n%3 == 1 {
		gameID = g.legacyKey(key.Reversed())
		g.out.Expected.Reversed = append(g.out.Expected.Reversed, key.String())
	}
	half := 0
	for i, s := range starts {
		if s > halfTime {
			half = i
		}
	}
	last := len(starts) - 1

	counts := make([]DriveCount, len(starts))
	prevQ := 0
	for i, s := range starts {
		offense := key.Away
		if i%2 == 1 {
			offense = key.Home
		}
		q, clk := quarterClock(s)
		quarter := strconv.Itoa(q)
		result := driveResults[g.rng.IntN(len(driveResults))]
		switch {
		case i == half:
			result, quarter = "End of Half", ""
		case i == last:
			result, quarter = "End of Game", ""
		case i%4 == 2 && q == prevQ:
			quarter = ""
		}
		prevQ = q

		side := g.code(offense)
		if g.rng.IntN(2) == 0 {
			side = g.code(key.Opponent(offense))
		}
		g.out.Drives = append(g.out.Drives, []string{
			gameID, g.code(offense), quarter, clk, result,
			fmt.Sprintf("%s %d", side, 1+g.rng.IntN(50)),
			strconv.Itoa(1 + g.rng.IntN(12)), strconv.Itoa(g.rng.IntN(80) - 5),
		})
		counts[i] = DriveCount{Seq: i + 1, Team: offense}
	}
	g.out.Expected.Drives += len(starts)
	return counts
}

func (g *generator) penalties(n int, key gamekey.Key, date time.Time, starts []int, counts []DriveCount) {
	for k := 0; k < g.cfg.PenaltiesPerGame; k++ {
		d := g.rng.IntN(len(starts))
		lo := 0
		if d+1 < len(starts) {
			lo = starts[d+1]
		}
		t := lo + 1 + g.rng.IntN(starts[d]-lo)
		q, clk := quarterClock(t)

		offense := counts[d].Team
		defense := key.Opponent(offense)
		var (
			phase    string
			f        flag
			penalized team.ID
		)
		switch roll := g.rng.IntN(10); {
		case roll < 5:
			phase, f, penalized = "Off", offenseFlags[g.rng.IntN(len(offenseFlags))], offense
			counts[d].OffPen++
		case roll < 9:
			phase, f, penalized = "Def", defenseFlags[g.rng.IntN(len(defenseFlags))], defense
			counts[d].DefPen++
		default:
			phase, f, penalized = "ST", specialFlags[g.rng.IntN(len(specialFlags))], offense
			if g.rng.IntN(2) == 0 {
				penalized = defense
			}
		}
		yards := f.yards
		if yards == 0 {
			yards = 5 + g.rng.IntN(36)
		}
		declined := "No"
		if g.rng.IntN(10) == 0 {
			declined, yards = "Yes", 0
		}
		home := "No"
		if penalized == key.Home {
			home = "Yes"
		}

		row := []string{
			g.slug(penalized), g.city(key.Opponent(penalized)), phase, f.name,
			fmt.Sprintf("Player %d", 1+g.rng.IntN(53)), positions[g.rng.IntN(len(positions))],
			date.Format("2006-01-02"), strconv.Itoa(key.Week), strconv.Itoa(q), clk,
			strconv.Itoa(1 + g.rng.IntN(4)), strconv.Itoa(1 + g.rng.IntN(15)),
			fmt.Sprintf("Crew %d", 1+g.rng.IntN(17)), strconv.Itoa(yards), home, declined, "No",
		}
		g.out.Penalties = append(g.out.Penalties, row)
		g.out.Expected.Penalties++
		g.out.Expected.Assigned++
		if k == 0 && n%7 == 3 {
			g.out.Penalties = append(g.out.Penalties, append([]string(nil), row...))
			g.out.Expected.Duplicates++
		}
	}
}

// quarterClock converts seconds remaining in regulation (t > 0) into the
// quarter and the "mm:ss" game clock.
func quarterClock(t int) (int, string) {
	q := regulation - (t-1)/periodLength
	rem := t - (regulation-q)*periodLength
	return q, fmt.Sprintf("%02d:%02d", rem/60, rem%60)
}

func (g *generator) code(id team.ID) string {
	if r, ok := relocations[id]; ok && g.season < r.until {
		return r.code
	}
	return string(id)
}

func (g *generator) legacyKey(k gamekey.Key) string {
	return fmt.Sprintf("%d_%d_%s_%s", k.Season, k.Week, g.code(k.Away), g.code(k.Home))
}

func (g *generator) city(id team.ID) string {
	if r, ok := relocations[id]; ok && g.season < r.until {
		return r.city
	}
	if l, ok := cityLabels[id]; ok {
		return l
	}
	t, _ := g.reg.Lookup(id)
	return t.City
}

func (g *generator) slug(id team.ID) string {
	if r, ok := relocations[id]; ok && g.season < r.until {
		return r.slug
	}
	t, _ := g.reg.Lookup(id)
	return t.Slug()
}

func (g *generator) coach(id team.ID) string {
	t, _ := g.reg.Lookup(id)
	return t.Name + " Head Coach"
}
