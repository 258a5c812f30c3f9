package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/guessit/internal/domain"
)

type answerRepository struct {
	answers map[string][]domain.Answer // room code -> answers in submission order
	mu      *sync.RWMutex
}

func NewAnswerRepository() domain.AnswerRepository {
	return &answerRepository{
		answers: make(map[string][]domain.Answer),
		mu:      &sync.RWMutex{},
	}
}

// Upsert replaces any earlier answer by the same player to the same
// question text, keeping the original slot so submission order holds.
func (r *answerRepository) Upsert(ctx context.Context, answer *domain.Answer) error {
	if answer == nil || answer.PlayerID == "" || answer.RoomCode == "" || answer.QuestionText == "" {
		return domain.ErrInvalidInput
	}

	if answer.SubmittedAt.IsZero() {
		answer.SubmittedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	roomAnswers := r.answers[answer.RoomCode]
	for i, a := range roomAnswers {
		if a.PlayerID == answer.PlayerID && a.QuestionText == answer.QuestionText {
			roomAnswers[i] = *answer
			return nil
		}
	}

	r.answers[answer.RoomCode] = append(roomAnswers, *answer)

	return nil
}

func (r *answerRepository) ListByQuestion(ctx context.Context, roomCode, questionText string) ([]*domain.Answer, error) {
	if roomCode == "" || questionText == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Answer
	for i := range r.answers[roomCode] {
		a := r.answers[roomCode][i]
		if a.QuestionText == questionText {
			matched = append(matched, &a)
		}
	}

	return matched, nil
}

func (r *answerRepository) CountByQuestion(ctx context.Context, roomCode, questionText string) (int, error) {
	if roomCode == "" || questionText == "" {
		return 0, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Upsert keeps one entry per (player, question), so a plain count is
	// already a distinct-player count.
	count := 0
	for _, a := range r.answers[roomCode] {
		if a.QuestionText == questionText {
			count++
		}
	}

	return count, nil
}

func (r *answerRepository) DeleteByRoom(ctx context.Context, roomCode string) error {
	if roomCode == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.answers, roomCode)

	return nil
}
