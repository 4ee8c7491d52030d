package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// MongoPickRepository stores pick records in the picks collection, keyed by
// the deterministic pick key so writes are idempotent upserts.
type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoPickRepository creates a new MongoDB pick repository
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.GetCollection("picks")
	logger := logging.WithPrefix("PickRepo")

	// Create indexes for the two query shapes the app uses
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "league_id", Value: 1},
				{Key: "game_id", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "league_id", Value: 1},
				{Key: "name_key", Value: 1},
			},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warnf("Could not create pick indexes: %v", err)
	}

	return &MongoPickRepository{
		collection: collection,
		logger:     logger,
	}
}

// Upsert creates or replaces the pick record at its deterministic key.
// Safe to call repeatedly with identical arguments. The creation timestamp
// is assigned server-side on first insert and preserved on replacement.
func (r *MongoPickRepository) Upsert(ctx context.Context, pick *models.PickRecord) error {
	filter := bson.M{"_id": pick.Key}

	// Pipeline update so created_at comes from the server clock ($$NOW) and
	// survives resubmission of the same key.
	update := bson.A{
		bson.M{"$set": bson.M{
			"league_id":    pick.LeagueID,
			"display_name": pick.DisplayName,
			"name_key":     pick.NameKey,
			"game_id":      pick.GameID,
			"team":         pick.Team,
			"created_at":   bson.M{"$ifNull": bson.A{"$created_at", "$$NOW"}},
		}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert pick %s: %w", pick.Key, err)
	}

	if result.UpsertedCount > 0 {
		r.logger.Debugf("Inserted pick %s", pick.Key)
	} else {
		r.logger.Debugf("Replaced pick %s", pick.Key)
	}
	return nil
}

// FindByLeagueAndGame retrieves all pick records for a matchup, oldest first,
// for the per-game pick list display.
func (r *MongoPickRepository) FindByLeagueAndGame(ctx context.Context, leagueID, gameID string) ([]*models.PickRecord, error) {
	filter := bson.M{
		"league_id": leagueID,
		"game_id":   gameID,
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks by league and game: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePicks(ctx, cursor)
}

// FindByLeagueAndUser retrieves all pick records for a participant, for
// reconciliation after a schedule refresh. nameKey must already be
// normalized (trimmed, lower-cased).
func (r *MongoPickRepository) FindByLeagueAndUser(ctx context.Context, leagueID, nameKey string) ([]*models.PickRecord, error) {
	filter := bson.M{
		"league_id": leagueID,
		"name_key":  nameKey,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks by league and user: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePicks(ctx, cursor)
}

// CountByLeague returns the number of pick records in a league
func (r *MongoPickRepository) CountByLeague(ctx context.Context, leagueID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"league_id": leagueID})
}

func decodePicks(ctx context.Context, cursor *mongo.Cursor) ([]*models.PickRecord, error) {
	var picks []*models.PickRecord
	for cursor.Next(ctx) {
		var pick models.PickRecord
		if err := cursor.Decode(&pick); err != nil {
			return nil, fmt.Errorf("failed to decode pick: %w", err)
		}
		picks = append(picks, &pick)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("pick cursor error: %w", err)
	}
	return picks, nil
}
