package services

import (
	"context"
	"sync"

	"pickem-app-go/logging"
	"pickem-app-go/metrics"
	"pickem-app-go/models"
)

// ScheduleService holds the current normalized schedule. Game records are
// rebuilt from the feed on every refresh and kept only in memory; the
// snapshot is what the handlers render and what the pick service validates
// selections against.
type ScheduleService struct {
	feed   *ESPNService
	logger *logging.Logger

	mu    sync.RWMutex
	games []models.GameRecord
	byID  map[string]models.GameRecord
}

// NewScheduleService creates a schedule service over the given feed client
func NewScheduleService(feed *ESPNService) *ScheduleService {
	return &ScheduleService{
		feed:   feed,
		logger: logging.WithPrefix("Schedule"),
		byID:   make(map[string]models.GameRecord),
	}
}

// Refresh fetches the scoreboard and replaces the snapshot. A fetch or
// decode failure leaves the previous snapshot in place and is returned to
// the caller as a retryable failure; there is no automatic retry.
func (s *ScheduleService) Refresh(ctx context.Context, week string) error {
	games, err := s.feed.GetScoreboard(ctx, week)
	if err != nil {
		metrics.ScheduleFetches.WithLabelValues(metrics.OutcomeFailure).Inc()
		s.logger.Errorf("Schedule refresh failed: %v", err)
		return err
	}
	metrics.ScheduleFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()

	byID := make(map[string]models.GameRecord, len(games))
	for _, g := range games {
		byID[g.GameID] = g
	}

	s.mu.Lock()
	s.games = games
	s.byID = byID
	s.mu.Unlock()

	s.logger.Infof("Schedule refreshed: %d games", len(games))
	return nil
}

// Games returns the current snapshot in feed order
func (s *ScheduleService) Games() []models.GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]models.GameRecord, len(s.games))
	copy(games, s.games)
	return games
}

// Game returns the snapshot record for a game ID
func (s *ScheduleService) Game(gameID string) (models.GameRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.byID[gameID]
	return game, ok
}

// Loaded reports whether at least one successful refresh has happened
func (s *ScheduleService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games) > 0
}
