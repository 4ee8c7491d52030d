package models

import (
	"fmt"
	"strings"
	"time"
)

// PickRecord represents one participant's saved pick for one matchup.
// The Key is the Mongo document _id: a deterministic composite of league,
// normalized display name, and game ID. Resubmitting the same pick for the
// same (league, user, game) triple always lands on the same document, so
// upserts replace rather than duplicate.
type PickRecord struct {
	Key         string    `bson:"_id" json:"key"`
	LeagueID    string    `bson:"league_id" json:"leagueId"`
	DisplayName string    `bson:"display_name" json:"displayName"`
	NameKey     string    `bson:"name_key" json:"nameKey"`
	GameID      string    `bson:"game_id" json:"gameId"`
	Team        string    `bson:"team" json:"team"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// NormalizeDisplayName trims and lower-cases a display name for use in
// pick keys and user queries. "Alex" and " alex " identify the same user.
func NormalizeDisplayName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BuildPickKey computes the deterministic document key for a pick.
// Callers must always compute the same key for the same triple; uniqueness
// is enforced by key construction, not by a database constraint.
func BuildPickKey(leagueID, displayName, gameID string) string {
	return fmt.Sprintf("%s|%s|%s", strings.TrimSpace(leagueID), NormalizeDisplayName(displayName), gameID)
}

// NewPickRecord creates a pick record for the given selection.
// CreatedAt is left zero: the repository assigns it server-side on insert.
func NewPickRecord(leagueID, displayName, gameID, team string) *PickRecord {
	leagueID = strings.TrimSpace(leagueID)
	displayName = strings.TrimSpace(displayName)

	return &PickRecord{
		Key:         BuildPickKey(leagueID, displayName, gameID),
		LeagueID:    leagueID,
		DisplayName: displayName,
		NameKey:     NormalizeDisplayName(displayName),
		GameID:      gameID,
		Team:        team,
	}
}
