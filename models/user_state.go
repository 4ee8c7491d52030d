package models

// DefaultLeagueID is the league used when the participant has not set one.
const DefaultLeagueID = "demo-league"

// UserState is the locally persisted participant profile and in-progress
// picks. It is loaded at startup, mutated on every edit, and written back
// whole on every change (write-through, no partial saves).
type UserState struct {
	DisplayName string            `json:"displayName"`
	LeagueID    string            `json:"leagueId"`
	Week        string            `json:"week,omitempty"`
	Picks       map[string]string `json:"picks"`
}

// NewUserState returns a fresh default state.
func NewUserState() *UserState {
	return &UserState{
		DisplayName: "",
		LeagueID:    DefaultLeagueID,
		Picks:       make(map[string]string),
	}
}

// Normalize repairs a state loaded from storage: a missing league falls back
// to the given default (or DefaultLeagueID when that is empty too) and a nil
// picks map is replaced so callers can index freely.
func (s *UserState) Normalize(defaultLeague string) {
	if defaultLeague == "" {
		defaultLeague = DefaultLeagueID
	}
	if s.LeagueID == "" {
		s.LeagueID = defaultLeague
	}
	if s.Picks == nil {
		s.Picks = make(map[string]string)
	}
}

// SetPick records the chosen team for a game. An empty team clears the pick,
// keeping the at-most-one-pick-per-game invariant.
func (s *UserState) SetPick(gameID, team string) {
	if s.Picks == nil {
		s.Picks = make(map[string]string)
	}
	if team == "" {
		delete(s.Picks, gameID)
		return
	}
	s.Picks[gameID] = team
}

// Pick returns the chosen team for a game, or "" if none.
func (s *UserState) Pick(gameID string) string {
	return s.Picks[gameID]
}
