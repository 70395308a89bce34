// Package gamekey derives canonical game keys from source records and
// reconciles home/away orientation against the authoritative game catalog.
package gamekey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/flagmap/internal/domain/team"
)

// Key identifies one game as (season, week, away, home).
type Key struct {
	Season int
	Week   int
	Away   team.ID
	Home   team.ID
}

// String renders the catalog form "<season>_<week>_<away>_<home>".
func (k Key) String() string {
	return fmt.Sprintf("%d_%d_%s_%s", k.Season, k.Week, k.Away, k.Home)
}

// Reversed swaps the two teams.
func (k Key) Reversed() Key {
	k.Away, k.Home = k.Home, k.Away
	return k
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// Has reports whether id plays in the game.
func (k Key) Has(id team.ID) bool {
	return k.Away == id || k.Home == id
}

// Opponent returns the other team, or "" when id does not play in the game.
func (k Key) Opponent(id team.ID) team.ID {
	switch id {
	case k.Away:
		return k.Home
	case k.Home:
		return k.Away
	}
	return ""
}

// Parse reads "<season>_<week>_<away>_<home>". Leading zeros in the week are
// accepted, so "2019_01_ARI_SF" and "2019_1_ARI_SF" parse to the same key.
// Team codes are taken verbatim; use Canonicalize to map legacy codes.
func Parse(s string) (Key, error) {
	parts := strings.Split(strings.TrimSpace(s), "_")
	if len(parts) != 4 {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	season, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("%w: season in %q", ErrMalformedKey, s)
	}
	week, err := strconv.Atoi(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("%w: week in %q", ErrMalformedKey, s)
	}
	if parts[2] == "" || parts[3] == "" {
		return Key{}, fmt.Errorf("%w: team in %q", ErrMalformedKey, s)
	}
	return Key{Season: season, Week: week, Away: team.ID(parts[2]), Home: team.ID(parts[3])}, nil
}

// Canonicalize parses a source game id and rewrites both team codes through
// the registry, so retired codes (OAK, SD, STL, LA) map to current ids.
func Canonicalize(reg *team.Registry, raw string) (Key, error) {
	k, err := Parse(raw)
	if err != nil {
		return Key{}, err
	}
	if k.Away, err = reg.Resolve(string(k.Away)); err != nil {
		return Key{}, fmt.Errorf("game %s: %w", raw, err)
	}
	if k.Home, err = reg.Resolve(string(k.Home)); err != nil {
		return Key{}, fmt.Errorf("game %s: %w", raw, err)
	}
	return k, nil
}

// Match tags how a key was resolved against the known set.
type Match int

// Match kinds.
const (
	Unresolved Match = iota
	MatchedForward
	MatchedReversed
)

func (m Match) String() string {
	switch m {
	case MatchedForward:
		return "forward"
	case MatchedReversed:
		return "reversed"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of normalising one source record.
type Resolution struct {
	Key   Key
	Match Match
}

// Inverted reports whether the source record's home/away orientation is the
// opposite of the catalog's.
func (r Resolution) Inverted() bool {
	return r.Match == MatchedReversed
}

// Normalizer resolves source records to known catalog keys. It is read-only
// after construction and may be shared across goroutines.
type Normalizer struct {
	registry *team.Registry
	known    map[Key]struct{}
}

// NewNormalizer builds a normalizer over the authoritative key set.
func NewNormalizer(reg *team.Registry, known []Key) *Normalizer {
	n := &Normalizer{
		registry: reg,
		known:    make(map[Key]struct{}, len(known)),
	}
	for _, k := range known {
		n.known[k] = struct{}{}
	}
	return n
}

// Registry returns the team registry used for alias resolution.
func (n *Normalizer) Registry() *team.Registry {
	return n.registry
}

// Known reports whether k is in the catalog.
func (n *Normalizer) Known(k Key) bool {
	_, ok := n.known[k]
	return ok
}

// Len returns the size of the known-key set.
func (n *Normalizer) Len() int {
	return len(n.known)
}

// Keys returns the known keys ordered by season, week, away, home.
func (n *Normalizer) Keys() []Key {
	out := make([]Key, 0, len(n.known))
	for k := range n.known {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// CanonicalGameKey resolves both teams, builds the key with away first and
// falls back to the reversed key when the source orientation disagrees with
// the catalog. Team resolution failures are returned as-is.
func (n *Normalizer) CanonicalGameKey(season, week int, away, home string) (Resolution, error) {
	a, err := n.registry.Resolve(away)
	if err != nil {
		return Resolution{}, err
	}
	h, err := n.registry.Resolve(home)
	if err != nil {
		return Resolution{}, err
	}
	return n.Match(Key{Season: season, Week: week, Away: a, Home: h})
}

// Match looks up an already-canonical key, trying the reversed orientation
// second.
func (n *Normalizer) Match(forward Key) (Resolution, error) {
	if n.Known(forward) {
		return Resolution{Key: forward, Match: MatchedForward}, nil
	}
	if rev := forward.Reversed(); n.Known(rev) {
		return Resolution{Key: rev, Match: MatchedReversed}, nil
	}
	return Resolution{Key: forward, Match: Unresolved}, &UnresolvedGameError{Forward: forward}
}

// Less orders keys by season, week, away, home.
func Less(a, b Key) bool {
	if a.Season != b.Season {
		return a.Season < b.Season
	}
	if a.Week != b.Week {
		return a.Week < b.Week
	}
	if a.Away != b.Away {
		return a.Away < b.Away
	}
	return a.Home < b.Home
}
