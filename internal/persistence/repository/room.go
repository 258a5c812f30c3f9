package repository

import (
	"context"
	"errors"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type roomRepository struct {
	db *mongo.Database
}

func NewRoomRepository(db *mongo.Database) domain.RoomRepository {
	return &roomRepository{
		db: db,
	}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	collection := r.db.Collection(db.RoomsCollection)

	_, err := collection.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrRoomAlreadyExists
	}

	return err
}

func (r *roomRepository) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	collection := r.db.Collection(db.RoomsCollection)

	var room domain.Room
	err := collection.FindOne(ctx, bson.M{"_id": code}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	collection := r.db.Collection(db.RoomsCollection)

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": room.Code}, room)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}

func (r *roomRepository) Delete(ctx context.Context, code string) error {
	collection := r.db.Collection(db.RoomsCollection)

	_, err := collection.DeleteOne(ctx, bson.M{"_id": code})
	return err
}
