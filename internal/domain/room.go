package domain

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

const (
	roomCodeLength = 4

	// Unambiguous charset: no I, O, 0 or 1.
	roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var charsetLen = big.NewInt(int64(len(roomCodeChars)))

// Phase is the lifecycle state of a room's game.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseInRound  Phase = "in_round"
	PhaseComplete Phase = "complete"
)

// Room is one play session. Players join it by code while it is in the
// lobby phase; once started it walks through its sampled questions one
// round at a time.
type Room struct {
	Code          string    `json:"code" bson:"_id"`
	QuestionCount int       `json:"questionCount" bson:"question_count"`
	Phase         Phase     `json:"phase" bson:"phase"`
	Questions     []string  `json:"questions,omitempty" bson:"questions"`
	CurrentRound  int       `json:"currentRound" bson:"current_round"`
	RoundSize     int       `json:"roundSize" bson:"round_size"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByCode(ctx context.Context, code string) (*Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, code string) error
}

func NewRoom(code string, questionCount int) *Room {
	return &Room{
		Code:          strings.ToUpper(code),
		QuestionCount: questionCount,
		Phase:         PhaseLobby,
		CreatedAt:     time.Now(),
	}
}

// CurrentQuestion returns the question being played, or false once the
// room is out of questions.
func (r *Room) CurrentQuestion() (string, bool) {
	if r.Phase != PhaseInRound || r.CurrentRound >= len(r.Questions) {
		return "", false
	}
	return r.Questions[r.CurrentRound], true
}

// AdvanceRound moves the room to the next question, or to the complete
// phase when none remain. Reports whether the game is over.
func (r *Room) AdvanceRound() bool {
	r.CurrentRound++
	if r.CurrentRound >= len(r.Questions) {
		r.Phase = PhaseComplete
		return true
	}
	return false
}

// GenerateRoomCode returns a short human-typeable code. Uniqueness among
// active rooms is enforced by the store, not here.
func GenerateRoomCode() (string, error) {
	var sb strings.Builder
	sb.Grow(roomCodeLength)

	for i := 0; i < roomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(roomCodeChars[n.Int64()])
	}

	return sb.String(), nil
}
