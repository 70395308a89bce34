package model

import (
	"time"

	"github.com/okian/flagmap/internal/domain/clock"
	"github.com/okian/flagmap/internal/domain/gamekey"
	"github.com/okian/flagmap/internal/domain/team"
)

// Game is one catalog entry.
type Game struct {
	Key    gamekey.Key
	Date   time.Time
	Source Record
}

// Drive is one possession of a game.
type Drive struct {
	Game gamekey.Key
	// Seq is the position within the game after ordering by start.
	Seq     int
	Team    team.ID
	Quarter int
	Clock   string
	// Start is seconds remaining in regulation when the drive began.
	Start  int
	Marker clock.Marker
	// LOS is the starting line of scrimmage as yards to the goal line.
	LOS    int
	Source Record
}

// TeamPerformance is one team's box-score row for one game.
type TeamPerformance struct {
	Game     gamekey.Key
	Team     team.ID
	Opponent team.ID
	Source   Record
}

// DriveRow is a drive as read, before its quarter and clock are resolved.
type DriveRow struct {
	Game gamekey.Key
	Team team.ID
	// Quarter is nil when the source left it blank.
	Quarter *int
	Clock   string
	Result  string
	LOS     string
	Line    int
	Source  Record
}

// GameJob is the per-game unit of work: the catalog entry with its drive
// rows in source order and its resolved penalties.
type GameJob struct {
	RunID     string
	Game      Game
	Drives    []DriveRow
	Penalties []Penalty
}
