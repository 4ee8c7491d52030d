package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// Store is the durable local selection store: a single JSON slot holding the
// serialized UserState. Reads and writes are synchronous; a mutex serializes
// read-modify-write cycles under the single-actor assumption.
type Store struct {
	mu            sync.Mutex
	path          string
	defaultLeague string
	logger        *logging.Logger
}

// New creates a store backed by the given file path. defaultLeague fills the
// league slot of fresh or league-less states; empty means the built-in default.
func New(path, defaultLeague string) *Store {
	return &Store{
		path:          path,
		defaultLeague: defaultLeague,
		logger:        logging.WithPrefix("LocalStore"),
	}
}

// Load returns the persisted UserState, or a fresh default state when nothing
// is persisted or the persisted payload fails to parse. Corrupt data is
// treated as absent and never surfaces as an error.
func (s *Store) Load() *models.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() *models.UserState {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf("Could not read state file %s: %v", s.path, err)
		}
		return s.freshState()
	}

	var state models.UserState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warnf("State file %s is corrupt, starting fresh: %v", s.path, err)
		return s.freshState()
	}

	state.Normalize(s.defaultLeague)
	return &state
}

func (s *Store) freshState() *models.UserState {
	state := models.NewUserState()
	if s.defaultLeague != "" {
		state.LeagueID = s.defaultLeague
	}
	return state
}

// Save writes the full state, overwriting any prior value. The write goes
// through a temp file and rename so a crash mid-write cannot corrupt the slot.
func (s *Store) Save(state *models.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *Store) save(state *models.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Update applies fn to the current state and writes the result back, all
// under the store lock. Callers get whole-structure read-modify-write
// semantics without racing other mutations. The result is re-normalized
// before the save, so clearing the league falls back to the default.
func (s *Store) Update(fn func(*models.UserState)) (*models.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	fn(state)
	state.Normalize(s.defaultLeague)
	if err := s.save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Clear removes the persisted slot entirely. The next Load returns defaults.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear state file: %w", err)
	}
	return nil
}
