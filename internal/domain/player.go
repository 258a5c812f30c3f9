package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/guessit/internal/infrastructure/validate"
)

// Player is one participant in a room, bound to a single live
// connection. TargetID is set at game start and references exactly one
// other player in the same room.
type Player struct {
	ID           string    `json:"id" bson:"_id"`
	RoomCode     string    `json:"roomCode" bson:"room_code"`
	Name         string    `json:"name" bson:"name"`
	ConnectionID string    `json:"connectionId" bson:"connection_id"`
	TargetID     string    `json:"-" bson:"target_id"`
	Active       bool      `json:"active" bson:"active"`
	JoinedAt     time.Time `json:"joinedAt" bson:"joined_at"`
}

type PlayerRepository interface {
	Create(ctx context.Context, player *Player) error
	GetByID(ctx context.Context, id string) (*Player, error)
	GetByConnectionID(ctx context.Context, connectionID string) (*Player, error)
	// ListByRoom returns the room's players in join order.
	ListByRoom(ctx context.Context, roomCode string) ([]*Player, error)
	CountByRoom(ctx context.Context, roomCode string) (int, error)
	Update(ctx context.Context, player *Player) error
	Delete(ctx context.Context, id string) error
	DeleteByRoom(ctx context.Context, roomCode string) error
}

func NewPlayer(roomCode, rawName, connectionID string) (*Player, error) {
	validateName := validate.Compose(
		validate.Required(),
		validate.MinLength(1),
		validate.MaxLength(50),
	)

	if err := validateName(rawName); err != nil {
		return nil, err
	}

	return &Player{
		ID:           uuid.NewString(),
		RoomCode:     roomCode,
		Name:         strings.TrimSpace(rawName),
		ConnectionID: connectionID,
		Active:       true,
		JoinedAt:     time.Now(),
	}, nil
}
