package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hilthontt/guessit/internal/domain"
)

type questionRepository struct {
	questions []domain.Question
	seen      map[string]struct{} // question text, for dedup
	mu        *sync.RWMutex
}

func NewQuestionRepository() domain.QuestionRepository {
	return &questionRepository{
		seen: make(map[string]struct{}),
		mu:   &sync.RWMutex{},
	}
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	if question == nil || question.Text == "" {
		return domain.ErrInvalidInput
	}

	if question.ID == "" {
		question.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seen[question.Text]; exists {
		return nil // idempotent: prompt already pooled
	}

	r.questions = append(r.questions, *question)
	r.seen[question.Text] = struct{}{}

	return nil
}

func (r *questionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cpy := make([]*domain.Question, len(r.questions))
	for i := range r.questions {
		q := r.questions[i]
		cpy[i] = &q
	}

	return cpy, nil
}

func (r *questionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.questions), nil
}
