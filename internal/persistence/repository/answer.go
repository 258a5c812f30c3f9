package repository

import (
	"context"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type answerRepository struct {
	db *mongo.Database
}

func NewAnswerRepository(db *mongo.Database) domain.AnswerRepository {
	return &answerRepository{
		db: db,
	}
}

func (r *answerRepository) Upsert(ctx context.Context, answer *domain.Answer) error {
	collection := r.db.Collection(db.AnswersCollection)

	filter := bson.M{
		"player_id":     answer.PlayerID,
		"room_code":     answer.RoomCode,
		"question_text": answer.QuestionText,
	}
	update := bson.M{
		"$set": bson.M{
			"text": answer.Text,
		},
		"$setOnInsert": bson.M{
			"player_id":     answer.PlayerID,
			"room_code":     answer.RoomCode,
			"question_text": answer.QuestionText,
			"submitted_at":  answer.SubmittedAt,
		},
	}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *answerRepository) ListByQuestion(ctx context.Context, roomCode, questionText string) ([]*domain.Answer, error) {
	collection := r.db.Collection(db.AnswersCollection)

	filter := bson.M{
		"room_code":     roomCode,
		"question_text": questionText,
	}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*domain.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *answerRepository) CountByQuestion(ctx context.Context, roomCode, questionText string) (int, error) {
	collection := r.db.Collection(db.AnswersCollection)

	filter := bson.M{
		"room_code":     roomCode,
		"question_text": questionText,
	}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (r *answerRepository) DeleteByRoom(ctx context.Context, roomCode string) error {
	collection := r.db.Collection(db.AnswersCollection)

	_, err := collection.DeleteMany(ctx, bson.M{"room_code": roomCode})
	return err
}

