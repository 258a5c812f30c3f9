package game

import (
	"errors"

	"github.com/hilthontt/guessit/internal/domain"
)

// Machine-readable error kinds reported back to the originating
// connection. A failed action never produces events for anyone else.
const (
	KindInvalidState          = "invalidState"
	KindNotFound              = "notFound"
	KindInsufficientPlayers   = "insufficientPlayers"
	KindInsufficientQuestions = "insufficientQuestions"
	KindRoomFull              = "roomFull"
	KindMalformedAction       = "malformedAction"
	KindInternal              = "internal"
)

func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrInsufficientPlayers):
		return KindInsufficientPlayers
	case errors.Is(err, domain.ErrEmptyQuestionPool):
		return KindInsufficientQuestions
	case errors.Is(err, domain.ErrRoomFull):
		return KindRoomFull
	case errors.Is(err, domain.ErrMalformedAction), errors.Is(err, domain.ErrInvalidInput):
		return KindMalformedAction
	default:
		return KindInternal
	}
}
