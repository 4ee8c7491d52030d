package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pickem-app-go/database"
	"pickem-app-go/logging"
)

// PickChangeEvent describes a change to the picks collection
type PickChangeEvent struct {
	Operation string `json:"operation"`
	LeagueID  string `json:"leagueId,omitempty"`
	GameID    string `json:"gameId,omitempty"`
}

// PickStreamWatcher watches the picks collection and triggers a callback on
// every change, driving the live pick-list updates in the UI.
type PickStreamWatcher struct {
	db       *database.MongoDB
	onChange func(event PickChangeEvent)
	logger   *logging.Logger
}

// NewPickStreamWatcher creates a new pick stream watcher
func NewPickStreamWatcher(db *database.MongoDB, onChange func(event PickChangeEvent)) *PickStreamWatcher {
	return &PickStreamWatcher{
		db:       db,
		onChange: onChange,
		logger:   logging.WithPrefix("PickStream"),
	}
}

// StartWatching begins watching the picks collection in the background
func (w *PickStreamWatcher) StartWatching() {
	go w.watch()
}

func (w *PickStreamWatcher) watch() {
	w.logger.Info("Starting to watch picks collection for changes")
	collection := w.db.GetCollection("picks")

	// Watch with auto-reconnect on stream errors
	for {
		ctx := context.Background()

		opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
		stream, err := collection.Watch(ctx, bson.A{}, opts)
		if err != nil {
			w.logger.Errorf("Error creating change stream: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		w.logger.Info("Connected to picks change stream")

		for stream.Next(ctx) {
			var event bson.M
			if err := stream.Decode(&event); err != nil {
				w.logger.Errorf("Error decoding change event: %v", err)
				continue
			}

			operation, _ := event["operationType"].(string)
			change := PickChangeEvent{Operation: operation}

			if fullDoc, ok := event["fullDocument"].(bson.M); ok {
				if leagueID, ok := fullDoc["league_id"].(string); ok {
					change.LeagueID = leagueID
				}
				if gameID, ok := fullDoc["game_id"].(string); ok {
					change.GameID = gameID
				}
			}

			w.logger.Debugf("Pick change: op=%s league=%s game=%s", change.Operation, change.LeagueID, change.GameID)

			if w.onChange != nil {
				w.onChange(change)
			}
		}

		if err := stream.Err(); err != nil {
			w.logger.Errorf("Change stream error: %v", err)
		}

		stream.Close(ctx)
		w.logger.Warn("Picks change stream closed, reconnecting in 5 seconds...")
		time.Sleep(5 * time.Second)
	}
}
