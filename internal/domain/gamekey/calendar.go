package gamekey

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// seventeenGameSeason is the first season with an 18-week regular season,
// which pushes every postseason round back one week.
const seventeenGameSeason = 2021

var postseasonWeeks = map[string]int{ //nolint:gochecknoglobals // static lookup table
	"wildcard weekend":         18,
	"wild card weekend":        18,
	"divisional playoffs":      19,
	"conference championships": 20,
	"super bowl":               21,
}

// SeasonOf returns the season a game date belongs to. January through March
// games close out the previous calendar year's season.
func SeasonOf(date time.Time) int {
	if date.Month() <= time.March {
		return date.Year() - 1
	}
	return date.Year()
}

// ResolveWeek maps a week label to the catalog's week number. Numeric labels
// ("7", "Week 7") are regular-season weeks; postseason round names map past
// the last regular week of that season.
func ResolveWeek(season int, label string) (week int, postseason bool, err error) {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.TrimSpace(strings.TrimPrefix(l, "week"))
	if n, convErr := strconv.Atoi(l); convErr == nil {
		return n, false, nil
	}
	base, ok := postseasonWeeks[l]
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownWeek, label)
	}
	if season >= seventeenGameSeason {
		base++
	}
	return base, true, nil
}

// IsPostseason reports whether week falls after the regular season of
// season, using the same week numbering as ResolveWeek.
func IsPostseason(season, week int) bool {
	first := postseasonWeeks["wildcard weekend"]
	if season >= seventeenGameSeason {
		first++
	}
	return week >= first
}
