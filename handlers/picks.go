package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"pickem-app-go/logging"
	"pickem-app-go/services"
)

// PickHandler handles selection changes, profile edits, submit-all, refresh,
// and clear-local actions. Every action redirects back to the games page
// with a status message; failures are converted to messages here so nothing
// propagates uncaught.
type PickHandler struct {
	schedule *services.ScheduleService
	picks    *services.PickService
	logger   *logging.Logger
}

// NewPickHandler creates a new pick handler
func NewPickHandler(schedule *services.ScheduleService, picks *services.PickService) *PickHandler {
	return &PickHandler{
		schedule: schedule,
		picks:    picks,
		logger:   logging.WithPrefix("PickHandler"),
	}
}

// PostPick handles POST /picks - a single selection change
func (h *PickHandler) PostPick(w http.ResponseWriter, r *http.Request) {
	gameID := r.FormValue("gameId")
	team := r.FormValue("team")

	if gameID == "" {
		http.Redirect(w, r, statusRedirect("Missing game.", "error"), http.StatusSeeOther)
		return
	}

	err := h.picks.SetPick(gameID, team)
	switch {
	case errors.Is(err, services.ErrGameLocked):
		http.Redirect(w, r, statusRedirect("Game is locked: kickoff has passed.", "error"), http.StatusSeeOther)
	case errors.Is(err, services.ErrUnknownGame):
		http.Redirect(w, r, statusRedirect("Unknown game. Try refreshing the schedule.", "error"), http.StatusSeeOther)
	case errors.Is(err, services.ErrInvalidTeam):
		http.Redirect(w, r, statusRedirect("That team is not playing in this game.", "error"), http.StatusSeeOther)
	case err != nil:
		h.logger.Errorf("Failed to save pick for game %s: %v", gameID, err)
		http.Redirect(w, r, statusRedirect("Failed to save pick.", "error"), http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// PostProfile handles POST /profile - display name, league, and week edits
func (h *PickHandler) PostProfile(w http.ResponseWriter, r *http.Request) {
	displayName := r.FormValue("displayName")
	leagueID := r.FormValue("leagueId")
	week := r.FormValue("week")

	if err := h.picks.UpdateProfile(displayName, leagueID, week); err != nil {
		h.logger.Errorf("Failed to save profile: %v", err)
		http.Redirect(w, r, statusRedirect("Failed to save profile.", "error"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// PostSubmit handles POST /submit - submit all selected picks
func (h *PickHandler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := h.picks.SubmitAll(r.Context())

	switch {
	case errors.Is(err, services.ErrNameRequired):
		http.Redirect(w, r, statusRedirect("Please enter your name.", "error"), http.StatusSeeOther)
	case errors.Is(err, services.ErrNoPicks):
		http.Redirect(w, r, statusRedirect("Please select at least one pick.", "error"), http.StatusSeeOther)
	case errors.Is(err, services.ErrRemoteUnavailable):
		http.Redirect(w, r, statusRedirect("Remote pick store not configured. Running in local mode.", "error"), http.StatusSeeOther)
	case err != nil:
		h.logger.Errorf("Submit failed: %d submitted, %d failed: %v", result.Submitted, result.Failed, err)
		http.Redirect(w, r, statusRedirect("Failed to submit picks. Please try again.", "error"), http.StatusSeeOther)
	default:
		message := fmt.Sprintf("Successfully submitted %d picks!", result.Submitted)
		http.Redirect(w, r, statusRedirect(message, "success"), http.StatusSeeOther)
	}
}

// PostRefresh handles POST /refresh - re-fetch the schedule and reconcile
func (h *PickHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	week := h.picks.State().Week

	if err := h.schedule.Refresh(r.Context(), week); err != nil {
		h.logger.Errorf("Schedule refresh failed: %v", err)
		http.Redirect(w, r, statusRedirect("Failed to load schedule. Please refresh.", "error"), http.StatusSeeOther)
		return
	}

	if err := h.picks.Reconcile(r.Context()); err != nil {
		h.logger.Errorf("Reconciliation failed: %v", err)
		http.Redirect(w, r, statusRedirect("Schedule loaded, but saved picks could not be restored.", "error"), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, statusRedirect("Schedule loaded. Select your picks and click Submit All Picks.", "success"), http.StatusSeeOther)
}

// PostClear handles POST /clear - drop all local state
func (h *PickHandler) PostClear(w http.ResponseWriter, r *http.Request) {
	if err := h.picks.ClearLocal(); err != nil {
		h.logger.Errorf("Failed to clear local state: %v", err)
		http.Redirect(w, r, statusRedirect("Failed to clear local selections.", "error"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, statusRedirect("Cleared local selections.", "info"), http.StatusSeeOther)
}
