package repository

import (
	"context"

	"github.com/hilthontt/guessit/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every repository in this package
// relies on. Run once at startup; CreateMany is idempotent.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	playerIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "room_code", Value: 1},
				{Key: "joined_at", Value: 1},
			},
		},
		{
			Keys:    bson.D{{Key: "connection_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := database.Collection(db.PlayersCollection).Indexes().CreateMany(ctx, playerIndexes); err != nil {
		return err
	}

	questionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "text", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := database.Collection(db.QuestionsCollection).Indexes().CreateMany(ctx, questionIndexes); err != nil {
		return err
	}

	// The unique compound key is what makes Upsert overwrite instead of
	// double counting a resubmission.
	answerIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "player_id", Value: 1},
				{Key: "room_code", Value: 1},
				{Key: "question_text", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "room_code", Value: 1},
				{Key: "question_text", Value: 1},
			},
		},
	}
	if _, err := database.Collection(db.AnswersCollection).Indexes().CreateMany(ctx, answerIndexes); err != nil {
		return err
	}

	return nil
}
