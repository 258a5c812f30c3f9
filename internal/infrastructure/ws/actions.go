package ws

import (
	"encoding/json"
	"fmt"

	"github.com/hilthontt/guessit/internal/domain"
)

// Inbound action kinds. The set is closed; anything else is rejected at
// decode time instead of being silently ignored.
const (
	ActionJoinGame     = "joinGame"
	ActionStartGame    = "startGame"
	ActionSubmitAnswer = "submitAnswer"
	ActionLeaveGame    = "leaveGame"
)

// Action is a decoded client frame.
type Action struct {
	Action        string `json:"action"`
	Name          string `json:"name,omitempty"`          // joinGame
	QuestionCount int    `json:"questionCount,omitempty"` // startGame
	Question      string `json:"question,omitempty"`      // submitAnswer
	Answer        string `json:"answer,omitempty"`        // submitAnswer
}

func decodeAction(raw []byte) (*Action, error) {
	var action Action
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, fmt.Errorf("%w: not a JSON action frame", domain.ErrMalformedAction)
	}

	switch action.Action {
	case ActionJoinGame:
		if action.Name == "" {
			return nil, fmt.Errorf("%w: joinGame requires a name", domain.ErrMalformedAction)
		}
	case ActionStartGame:
		// questionCount is optional; the room default applies.
	case ActionSubmitAnswer:
		if action.Question == "" {
			return nil, fmt.Errorf("%w: submitAnswer requires a question", domain.ErrMalformedAction)
		}
		if action.Answer == "" {
			return nil, fmt.Errorf("%w: submitAnswer requires an answer", domain.ErrMalformedAction)
		}
	case ActionLeaveGame:
	case "":
		return nil, fmt.Errorf("%w: missing action kind", domain.ErrMalformedAction)
	default:
		return nil, fmt.Errorf("%w: unrecognized action %q", domain.ErrMalformedAction, action.Action)
	}

	return &action, nil
}
