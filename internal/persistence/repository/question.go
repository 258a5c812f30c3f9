package repository

import (
	"context"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type questionRepository struct {
	db *mongo.Database
}

func NewQuestionRepository(db *mongo.Database) domain.QuestionRepository {
	return &questionRepository{
		db: db,
	}
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	collection := r.db.Collection(db.QuestionsCollection)

	// Upsert on text keeps repeated seeding idempotent.
	filter := bson.M{"text": question.Text}
	update := bson.M{"$setOnInsert": question}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *questionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	collection := r.db.Collection(db.QuestionsCollection)

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*domain.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) Count(ctx context.Context) (int, error) {
	collection := r.db.Collection(db.QuestionsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

