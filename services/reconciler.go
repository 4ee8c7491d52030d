package services

import (
	"context"
	"fmt"

	"pickem-app-go/metrics"
	"pickem-app-go/models"
)

// Reconcile merges local selections with the remote store after a schedule
// refresh. Remote is authoritative: matchups with no saved remote pick lose
// their local selection, and saved remote picks are reapplied through the
// normal selection-change path.
//
// Clearing must finish before reapplying begins, since both touch state
// keyed by game ID; after the pass each rendered matchup holds exactly the
// remote-saved pick or nothing. Running the pass twice with unchanged remote
// data is a no-op the second time.
func (s *PickService) Reconcile(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	state := s.store.Load()
	nameKey := models.NormalizeDisplayName(state.DisplayName)
	if nameKey == "" {
		return nil
	}

	remote, err := s.repo.FindByLeagueAndUser(ctx, state.LeagueID, nameKey)
	if err != nil {
		return fmt.Errorf("failed to fetch remote picks for reconciliation: %w", err)
	}
	metrics.ReconcileRuns.Inc()

	saved := make(map[string]string, len(remote))
	for _, pick := range remote {
		saved[pick.GameID] = pick.Team
	}

	// Step 1: clear stale local selections. Direct state mutation, not the
	// selection-change path: clearing must not produce a remote write.
	games := s.schedule.Games()
	cleared := 0
	_, err = s.store.Update(func(state *models.UserState) {
		for _, game := range games {
			if _, ok := saved[game.GameID]; ok {
				continue
			}
			if _, has := state.Picks[game.GameID]; has {
				delete(state.Picks, game.GameID)
				cleared++
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to clear stale selections: %w", err)
	}

	// Step 2: reapply remote selections through the normal path. Writing the
	// same value back is harmless, and an already-saved pick is not subject
	// to the kickoff lock: it reflects a choice made before lock time.
	reapplied := 0
	for _, game := range games {
		team, ok := saved[game.GameID]
		if !ok {
			continue
		}
		if err := s.applyPick(game.GameID, team); err != nil {
			return fmt.Errorf("failed to reapply pick for game %s: %w", game.GameID, err)
		}
		reapplied++
	}

	s.logger.Infof("Reconciled picks for %s: %d remote, %d cleared, %d reapplied",
		state.DisplayName, len(remote), cleared, reapplied)
	return nil
}
