package domain

import (
	"context"
	"time"
)

// Answer is one player's free-text response to a question. At most one
// answer exists per (player, question text) pair; resubmitting
// overwrites. The subject of an answer (who it is about) is derived at
// reveal time from the author's target.
type Answer struct {
	PlayerID     string    `json:"playerId" bson:"player_id"`
	RoomCode     string    `json:"roomCode" bson:"room_code"`
	QuestionText string    `json:"questionText" bson:"question_text"`
	Text         string    `json:"text" bson:"text"`
	SubmittedAt  time.Time `json:"submittedAt" bson:"submitted_at"`
}

type AnswerRepository interface {
	// Upsert stores the answer, replacing any previous answer by the
	// same player to the same question text.
	Upsert(ctx context.Context, answer *Answer) error
	// ListByQuestion returns all answers for one question in a room, in
	// submission order.
	ListByQuestion(ctx context.Context, roomCode, questionText string) ([]*Answer, error)
	// CountByQuestion returns the number of distinct players in the room
	// who have answered the question.
	CountByQuestion(ctx context.Context, roomCode, questionText string) (int, error)
	DeleteByRoom(ctx context.Context, roomCode string) error
}
