// Package team holds the registry that maps every known team spelling onto one
// canonical team identifier.
package team

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ID is a canonical short team code, e.g. "KC".
type ID string

// Team describes one franchise and every string that must resolve to it.
type Team struct {
	ID      ID
	City    string
	Name    string
	Aliases []string
}

// DisplayName returns "<City> <Name>".
func (t Team) DisplayName() string {
	return strings.TrimSpace(t.City + " " + t.Name)
}

// Slug returns the dashed lower-case display name, e.g. "kansas-city-chiefs".
func (t Team) Slug() string {
	return strings.ToLower(strings.Join(strings.Fields(t.DisplayName()), "-"))
}

// Row is the external registry record: canonical id, city, name and
// historical aliases.
type Row struct {
	ID      string
	City    string
	Name    string
	Aliases []string
}

// Registry resolves aliases to canonical ids. It is immutable after New and
// safe for concurrent readers.
type Registry struct {
	byAlias map[string]ID
	byID    map[ID]Team
}

// New builds a registry. Besides the explicit aliases, each team's id, display
// name and slug resolve to it. An alias claimed by two teams is an error.
func New(teams []Team) (*Registry, error) {
	r := &Registry{
		byAlias: make(map[string]ID, len(teams)*8),
		byID:    make(map[ID]Team, len(teams)),
	}
	for _, t := range teams {
		if strings.TrimSpace(string(t.ID)) == "" {
			return nil, fmt.Errorf("%w: empty id for %q", ErrInvalidTeam, t.DisplayName())
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: id %s registered twice", ErrInvalidTeam, t.ID)
		}
		t.Aliases = append([]string(nil), t.Aliases...)
		r.byID[t.ID] = t

		names := append([]string{string(t.ID), t.DisplayName(), t.Slug()}, t.Aliases...)
		for _, name := range names {
			k := foldKey(name)
			if k == "" {
				continue
			}
			if owner, ok := r.byAlias[k]; ok && owner != t.ID {
				return nil, fmt.Errorf("%w: %q claimed by %s and %s", ErrDuplicateAlias, name, owner, t.ID)
			}
			r.byAlias[k] = t.ID
		}
	}
	return r, nil
}

// FromRows builds a registry from external rows.
func FromRows(rows []Row) (*Registry, error) {
	teams := make([]Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, Team{
			ID:      ID(strings.TrimSpace(row.ID)),
			City:    strings.TrimSpace(row.City),
			Name:    strings.TrimSpace(row.Name),
			Aliases: row.Aliases,
		})
	}
	return New(teams)
}

// Resolve returns the canonical id for a name, code, slug or alias.
func (r *Registry) Resolve(nameOrCode string) (ID, error) {
	if id, ok := r.byAlias[foldKey(nameOrCode)]; ok {
		return id, nil
	}
	return "", &UnknownTeamError{Alias: nameOrCode}
}

// Lookup returns the team registered under a canonical id.
func (r *Registry) Lookup(id ID) (Team, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Teams returns all registered teams ordered by id.
func (r *Registry) Teams() []Team {
	out := make([]Team, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered teams.
func (r *Registry) Len() int {
	return len(r.byID)
}

// foldKey normalises whitespace and case so lookups ignore both.
// cases.Caser is stateful, so a fresh one is used per call.
func foldKey(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
