package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"pickem-app-go/localstore"
	"pickem-app-go/logging"
	"pickem-app-go/metrics"
	"pickem-app-go/models"
)

// PickRepository is the remote document store the pick service writes
// through. A nil repository means the remote store is unconfigured and the
// app runs in local-only mode.
type PickRepository interface {
	Upsert(ctx context.Context, pick *models.PickRecord) error
	FindByLeagueAndGame(ctx context.Context, leagueID, gameID string) ([]*models.PickRecord, error)
	FindByLeagueAndUser(ctx context.Context, leagueID, nameKey string) ([]*models.PickRecord, error)
	CountByLeague(ctx context.Context, leagueID string) (int64, error)
}

var (
	// ErrGameLocked is returned when a selection arrives at or after kickoff
	ErrGameLocked = errors.New("game is locked: kickoff has passed")

	// ErrUnknownGame is returned for selections on games not in the schedule
	ErrUnknownGame = errors.New("unknown game")

	// ErrInvalidTeam is returned when the chosen team is not a participant
	ErrInvalidTeam = errors.New("team is not playing in this game")

	// ErrNameRequired is returned when submitting without a display name
	ErrNameRequired = errors.New("display name is required")

	// ErrNoPicks is returned when submitting with nothing selected
	ErrNoPicks = errors.New("no picks selected")

	// ErrRemoteUnavailable is returned for remote operations in local-only mode
	ErrRemoteUnavailable = errors.New("remote pick store is not available")
)

// PickService handles selection changes, submit-all, and pick display.
// All local mutations are write-through: every change persists the whole
// UserState immediately.
type PickService struct {
	repo     PickRepository
	store    *localstore.Store
	schedule *ScheduleService
	logger   *logging.Logger
	now      func() time.Time
}

// NewPickService creates a pick service. repo may be nil for local-only mode.
func NewPickService(repo PickRepository, store *localstore.Store, schedule *ScheduleService) *PickService {
	return &PickService{
		repo:     repo,
		store:    store,
		schedule: schedule,
		logger:   logging.WithPrefix("PickService"),
		now:      time.Now,
	}
}

// RemoteEnabled reports whether the remote pick store is configured
func (s *PickService) RemoteEnabled() bool {
	return s.repo != nil
}

// State returns the current local user state
func (s *PickService) State() *models.UserState {
	return s.store.Load()
}

// SetPick records a selection change for a game. Selections are rejected
// once kickoff has passed. An empty team clears the selection. The change
// is persisted locally immediately; remote persistence happens on submit.
func (s *PickService) SetPick(gameID, team string) error {
	game, ok := s.schedule.Game(gameID)
	if !ok {
		return ErrUnknownGame
	}
	if game.Locked(s.now()) {
		return ErrGameLocked
	}
	if team != "" && !game.HasTeam(team) {
		return ErrInvalidTeam
	}

	if err := s.applyPick(gameID, team); err != nil {
		return err
	}
	if team == "" {
		s.logger.Debugf("Cleared pick for %s", game.Description())
	} else {
		s.logger.Debugf("Picked %s in %s", team, game.Description())
	}
	return nil
}

// applyPick is the selection-change path shared by user input and
// reconciliation: read-modify-write the whole state, no lock check.
func (s *PickService) applyPick(gameID, team string) error {
	_, err := s.store.Update(func(state *models.UserState) {
		state.SetPick(gameID, team)
	})
	if err != nil {
		return fmt.Errorf("failed to persist pick: %w", err)
	}
	return nil
}

// UpdateProfile persists display name, league, and week edits (write-through).
// An empty league falls back to the store's configured default.
func (s *PickService) UpdateProfile(displayName, leagueID, week string) error {
	_, err := s.store.Update(func(state *models.UserState) {
		state.DisplayName = displayName
		state.LeagueID = leagueID
		state.Week = week
	})
	if err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	return nil
}

// ClearLocal drops all local selections and profile state
func (s *PickService) ClearLocal() error {
	return s.store.Clear()
}

// SubmitResult summarizes a submit-all run
type SubmitResult struct {
	Submitted int
	Failed    int
}

// SubmitAll upserts one pick record per selected matchup, concurrently, and
// waits for all writes to settle. A partial failure reports an overall
// failure while leaving the succeeded writes in place: at-least-one-failure
// semantics, no rollback. Selections for games missing from the current
// schedule are skipped.
func (s *PickService) SubmitAll(ctx context.Context) (SubmitResult, error) {
	var result SubmitResult

	if s.repo == nil {
		return result, ErrRemoteUnavailable
	}

	state := s.store.Load()
	if models.NormalizeDisplayName(state.DisplayName) == "" {
		return result, ErrNameRequired
	}

	var records []*models.PickRecord
	for gameID, team := range state.Picks {
		if _, ok := s.schedule.Game(gameID); !ok {
			s.logger.Debugf("Skipping pick for game %s: not in current schedule", gameID)
			continue
		}
		records = append(records, models.NewPickRecord(state.LeagueID, state.DisplayName, gameID, team))
	}
	if len(records) == 0 {
		return result, ErrNoPicks
	}

	// One upsert per pick, concurrently; a plain group (no shared cancel) so
	// in-flight writes always run to completion.
	var g errgroup.Group
	outcomes := make([]error, len(records))
	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			err := s.repo.Upsert(ctx, record)
			outcomes[i] = err
			if err != nil {
				metrics.PickUpserts.WithLabelValues(metrics.OutcomeFailure).Inc()
				return fmt.Errorf("pick %s: %w", record.GameID, err)
			}
			metrics.PickUpserts.WithLabelValues(metrics.OutcomeSuccess).Inc()
			return nil
		})
	}

	err := g.Wait()
	for _, outcome := range outcomes {
		if outcome != nil {
			result.Failed++
		} else {
			result.Submitted++
		}
	}

	if err != nil {
		s.logger.Errorf("Submit finished with failures: %d submitted, %d failed", result.Submitted, result.Failed)
		return result, fmt.Errorf("failed to submit all picks: %w", err)
	}

	s.logger.Infof("Submitted %d picks for %s in league %s", result.Submitted, state.DisplayName, state.LeagueID)
	return result, nil
}

// LeaguePickCount returns the number of saved picks across the user's league.
func (s *PickService) LeaguePickCount(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, ErrRemoteUnavailable
	}

	state := s.store.Load()
	count, err := s.repo.CountByLeague(ctx, state.LeagueID)
	if err != nil {
		return 0, fmt.Errorf("failed to count league picks: %w", err)
	}
	return count, nil
}

// PicksForGame returns all saved picks for a matchup in the user's league,
// for the aggregated pick list display.
func (s *PickService) PicksForGame(ctx context.Context, gameID string) ([]*models.PickRecord, error) {
	if s.repo == nil {
		return nil, ErrRemoteUnavailable
	}

	state := s.store.Load()
	picks, err := s.repo.FindByLeagueAndGame(ctx, state.LeagueID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for game %s: %w", gameID, err)
	}
	return picks, nil
}
