package models

import (
	"fmt"
	"time"
)

// GameRecord represents one normalized matchup from the schedule feed.
// Records are rebuilt from the feed on every refresh and never persisted.
type GameRecord struct {
	GameID      string     `json:"gameId"`
	Home        string     `json:"home"`
	Away        string     `json:"away"`
	HomeLogo    string     `json:"homeLogo"`
	AwayLogo    string     `json:"awayLogo"`
	HomeRecord  string     `json:"homeRecord"`
	AwayRecord  string     `json:"awayRecord"`
	Kickoff     *time.Time `json:"kickoff"`
	KickoffText string     `json:"kickoffText"`
	Completed   bool       `json:"completed"`
	StatusText  string     `json:"statusText"`
	WinnerTeam  string     `json:"winnerTeam"`
}

// Locked reports whether new selections for this matchup must be rejected.
// A game with no known kickoff time never locks.
func (g *GameRecord) Locked(now time.Time) bool {
	if g.Kickoff == nil {
		return false
	}
	return !now.Before(*g.Kickoff)
}

// KickoffMillis returns the kickoff timestamp in epoch milliseconds,
// or 0 when the kickoff is unknown.
func (g *GameRecord) KickoffMillis() int64 {
	if g.Kickoff == nil {
		return 0
	}
	return g.Kickoff.UnixMilli()
}

// HasTeam reports whether the given team name is one of the two participants.
func (g *GameRecord) HasTeam(team string) bool {
	return team != "" && (team == g.Home || team == g.Away)
}

// Description returns a short human-readable matchup description.
func (g *GameRecord) Description() string {
	return fmt.Sprintf("%s at %s", g.Away, g.Home)
}
