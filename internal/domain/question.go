package domain

import (
	"context"

	"github.com/google/uuid"
)

// Question is a prompt from the shared pool. Immutable once created; a
// subset is sampled per game.
type Question struct {
	ID   string `json:"id" bson:"_id"`
	Text string `json:"text" bson:"text"`
}

type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	List(ctx context.Context) ([]*Question, error)
	Count(ctx context.Context) (int, error)
}

func NewQuestion(text string) (*Question, error) {
	if text == "" {
		return nil, ErrInvalidInput
	}

	return &Question{
		ID:   uuid.NewString(),
		Text: text,
	}, nil
}

// DefaultQuestions seeds an empty pool so a fresh deployment is playable
// without any admin setup.
var DefaultQuestions = []string{
	"What would they bring to a deserted island?",
	"What song is permanently stuck in their head?",
	"What would they do with a million dollars?",
	"What is their hidden talent?",
	"What job would they be terrible at?",
	"What would their autobiography be called?",
	"What is their guilty pleasure?",
	"What animal best represents them?",
}
