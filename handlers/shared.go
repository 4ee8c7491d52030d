package handlers

import (
	"net/url"
	"sort"

	"pickem-app-go/models"
)

// sortGamesByKickoff sorts games chronologically by kickoff time.
// Games with unknown kickoff sort last; ties break alphabetically by home
// team name.
func sortGamesByKickoff(games []models.GameRecord) {
	sort.SliceStable(games, func(i, j int) bool {
		ki, kj := games[i].Kickoff, games[j].Kickoff
		if ki == nil && kj == nil {
			return games[i].Home < games[j].Home
		}
		if ki == nil {
			return false
		}
		if kj == nil {
			return true
		}
		if !ki.Equal(*kj) {
			return ki.Before(*kj)
		}
		return games[i].Home < games[j].Home
	})
}

// statusRedirect builds a redirect target carrying a status message and type
// ("info", "success", "error") for the games page to display.
func statusRedirect(message, statusType string) string {
	q := url.Values{}
	q.Set("status", message)
	q.Set("type", statusType)
	return "/?" + q.Encode()
}
