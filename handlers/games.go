package handlers

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pickem-app-go/logging"
	"pickem-app-go/models"
	"pickem-app-go/services"
)

// GameHandler renders the game cards page and the per-game pick lists
type GameHandler struct {
	templates *template.Template
	schedule  *services.ScheduleService
	picks     *services.PickService
	logger    *logging.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(templates *template.Template, schedule *services.ScheduleService, picks *services.PickService) *GameHandler {
	return &GameHandler{
		templates: templates,
		schedule:  schedule,
		picks:     picks,
		logger:    logging.WithPrefix("GameHandler"),
	}
}

// GameCard is one rendered matchup card
type GameCard struct {
	Game     models.GameRecord
	Selected string
	Locked   bool
	Picks    []*models.PickRecord
	PicksMsg string
}

// GamesPageData is the template payload for the games page
type GamesPageData struct {
	Title         string
	Status        string
	StatusType    string
	State         *models.UserState
	RemoteEnabled bool
	ScheduleOK    bool
	LeaguePicks   int64
	Cards         []GameCard
}

// GetGames handles GET / and GET /games - displays all game cards
func (h *GameHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	h.logger.Debugf("HTTP: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	state := h.picks.State()
	games := h.schedule.Games()
	sortGamesByKickoff(games)

	now := time.Now()
	cards := make([]GameCard, 0, len(games))
	for _, game := range games {
		card := GameCard{
			Game:     game,
			Selected: state.Pick(game.GameID),
			Locked:   game.Locked(now),
		}
		card.Picks, card.PicksMsg = h.loadPickList(r, game.GameID)
		cards = append(cards, card)
	}

	status := r.URL.Query().Get("status")
	statusType := r.URL.Query().Get("type")
	if status == "" {
		switch {
		case !h.schedule.Loaded():
			status, statusType = "Failed to load schedule. Please refresh.", "error"
		case !h.picks.RemoteEnabled():
			status, statusType = "Local mode: remote pick store not configured.", "info"
		default:
			status, statusType = "Schedule loaded. Select your picks and click Submit All Picks.", "success"
		}
	}

	var leaguePicks int64
	if h.picks.RemoteEnabled() {
		if count, err := h.picks.LeaguePickCount(r.Context()); err != nil {
			h.logger.Warnf("Failed to count league picks: %v", err)
		} else {
			leaguePicks = count
		}
	}

	data := GamesPageData{
		Title:         "Pick'em",
		Status:        status,
		StatusType:    statusType,
		State:         state,
		RemoteEnabled: h.picks.RemoteEnabled(),
		ScheduleOK:    h.schedule.Loaded(),
		LeaguePicks:   leaguePicks,
		Cards:         cards,
	}

	if err := h.templates.ExecuteTemplate(w, "games.html", data); err != nil {
		h.logger.Errorf("Template error: %v", err)
		http.Error(w, "Unable to render games", http.StatusInternalServerError)
	}
}

// GetGamePicks handles GET /games/{id}/picks - the pick list partial
func (h *GameHandler) GetGamePicks(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	card := GameCard{Game: models.GameRecord{GameID: gameID}}
	card.Picks, card.PicksMsg = h.loadPickList(r, gameID)

	if err := h.templates.ExecuteTemplate(w, "pick-list", card); err != nil {
		h.logger.Errorf("Template error for pick list %s: %v", gameID, err)
		http.Error(w, "Unable to render picks", http.StatusInternalServerError)
	}
}

// loadPickList fetches the aggregated picks for one game, degrading to a
// short message when the remote store is unavailable or the query fails.
func (h *GameHandler) loadPickList(r *http.Request, gameID string) ([]*models.PickRecord, string) {
	if !h.picks.RemoteEnabled() {
		return nil, "Realtime disabled (no DB configured)."
	}

	picks, err := h.picks.PicksForGame(r.Context(), gameID)
	if err != nil {
		h.logger.Errorf("Failed to load picks for game %s: %v", gameID, err)
		return nil, "Failed to load picks."
	}
	if len(picks) == 0 {
		return nil, "No picks yet."
	}
	return picks, ""
}
