package team

// defaultTeams is the built-in NFL table. Aliases cover the city labels used
// by penalty logs, the dashed slugs used by team pages (implicit via Slug) and
// the retired codes still present in older game catalogs.
var defaultTeams = []Team{ //nolint:gochecknoglobals // static lookup table
	{ID: "ARI", City: "Arizona", Name: "Cardinals", Aliases: []string{"Arizona", "ARZ", "CRD", "phoenix-cardinals"}},
	{ID: "ATL", City: "Atlanta", Name: "Falcons", Aliases: []string{"Atlanta"}},
	{ID: "BAL", City: "Baltimore", Name: "Ravens", Aliases: []string{"Baltimore", "BLT", "RAV"}},
	{ID: "BUF", City: "Buffalo", Name: "Bills", Aliases: []string{"Buffalo"}},
	{ID: "CAR", City: "Carolina", Name: "Panthers", Aliases: []string{"Carolina"}},
	{ID: "CHI", City: "Chicago", Name: "Bears", Aliases: []string{"Chicago"}},
	{ID: "CIN", City: "Cincinnati", Name: "Bengals", Aliases: []string{"Cincinnati"}},
	{ID: "CLE", City: "Cleveland", Name: "Browns", Aliases: []string{"Cleveland", "CLV"}},
	{ID: "DAL", City: "Dallas", Name: "Cowboys", Aliases: []string{"Dallas"}},
	{ID: "DEN", City: "Denver", Name: "Broncos", Aliases: []string{"Denver"}},
	{ID: "DET", City: "Detroit", Name: "Lions", Aliases: []string{"Detroit"}},
	{ID: "GB", City: "Green Bay", Name: "Packers", Aliases: []string{"Green Bay", "GNB"}},
	{ID: "HOU", City: "Houston", Name: "Texans", Aliases: []string{"Houston", "HST", "HTX"}},
	{ID: "IND", City: "Indianapolis", Name: "Colts", Aliases: []string{"Indianapolis", "CLT"}},
	{ID: "JAX", City: "Jacksonville", Name: "Jaguars", Aliases: []string{"Jacksonville", "JAC"}},
	{ID: "KC", City: "Kansas City", Name: "Chiefs", Aliases: []string{"Kansas City", "KAN"}},
	{ID: "LAC", City: "Los Angeles", Name: "Chargers", Aliases: []string{"LA Chargers", "San Diego", "San Diego Chargers", "SD", "SDG", "san-diego-chargers"}},
	{ID: "LAR", City: "Los Angeles", Name: "Rams", Aliases: []string{"LA Rams", "St. Louis", "St. Louis Rams", "STL", "LA", "RAM", "st-louis-rams"}},
	{ID: "LV", City: "Las Vegas", Name: "Raiders", Aliases: []string{"Las Vegas", "Oakland", "Oakland Raiders", "OAK", "LVR", "RAI", "oakland-raiders"}},
	{ID: "MIA", City: "Miami", Name: "Dolphins", Aliases: []string{"Miami"}},
	{ID: "MIN", City: "Minnesota", Name: "Vikings", Aliases: []string{"Minnesota"}},
	{ID: "NE", City: "New England", Name: "Patriots", Aliases: []string{"New England", "NWE"}},
	{ID: "NO", City: "New Orleans", Name: "Saints", Aliases: []string{"New Orleans", "NOR"}},
	{ID: "NYG", City: "New York", Name: "Giants", Aliases: []string{"N.Y. Giants", "NY Giants"}},
	{ID: "NYJ", City: "New York", Name: "Jets", Aliases: []string{"N.Y. Jets", "NY Jets"}},
	{ID: "PHI", City: "Philadelphia", Name: "Eagles", Aliases: []string{"Philadelphia"}},
	{ID: "PIT", City: "Pittsburgh", Name: "Steelers", Aliases: []string{"Pittsburgh"}},
	{ID: "SF", City: "San Francisco", Name: "49ers", Aliases: []string{"San Francisco", "SFO"}},
	{ID: "SEA", City: "Seattle", Name: "Seahawks", Aliases: []string{"Seattle"}},
	{ID: "TB", City: "Tampa Bay", Name: "Buccaneers", Aliases: []string{"Tampa Bay", "TAM"}},
	{ID: "TEN", City: "Tennessee", Name: "Titans", Aliases: []string{"Tennessee", "OTI"}},
	{ID: "WAS", City: "Washington", Name: "Commanders", Aliases: []string{"Washington", "WSH", "Washington Football Team", "Washington Redskins", "washington-redskins", "washington-football-team"}},
}

// Default returns a registry over the built-in NFL table.
func Default() *Registry {
	r, err := New(defaultTeams)
	if err != nil {
		// The static table is covered by tests; a failure here is a programming error.
		panic("team: invalid default table: " + err.Error())
	}
	return r
}
