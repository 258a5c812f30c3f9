package repository

import (
	"context"
	"errors"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type playerRepository struct {
	db *mongo.Database
}

func NewPlayerRepository(db *mongo.Database) domain.PlayerRepository {
	return &playerRepository{
		db: db,
	}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	collection := r.db.Collection(db.PlayersCollection)

	_, err := collection.InsertOne(ctx, player)
	return err
}

func (r *playerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	collection := r.db.Collection(db.PlayersCollection)

	var player domain.Player
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	return &player, nil
}

func (r *playerRepository) GetByConnectionID(ctx context.Context, connectionID string) (*domain.Player, error) {
	collection := r.db.Collection(db.PlayersCollection)

	var player domain.Player
	err := collection.FindOne(ctx, bson.M{"connection_id": connectionID}).Decode(&player)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	return &player, nil
}

func (r *playerRepository) ListByRoom(ctx context.Context, roomCode string) ([]*domain.Player, error) {
	collection := r.db.Collection(db.PlayersCollection)

	opts := options.Find().SetSort(bson.D{
		{Key: "joined_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := collection.Find(ctx, bson.M{"room_code": roomCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*domain.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *playerRepository) CountByRoom(ctx context.Context, roomCode string) (int, error) {
	collection := r.db.Collection(db.PlayersCollection)

	count, err := collection.CountDocuments(ctx, bson.M{"room_code": roomCode})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	collection := r.db.Collection(db.PlayersCollection)

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": player.ID}, player)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrPlayerNotFound
	}

	return nil
}

func (r *playerRepository) Delete(ctx context.Context, id string) error {
	collection := r.db.Collection(db.PlayersCollection)

	_, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *playerRepository) DeleteByRoom(ctx context.Context, roomCode string) error {
	collection := r.db.Collection(db.PlayersCollection)

	_, err := collection.DeleteMany(ctx, bson.M{"room_code": roomCode})
	return err
}

