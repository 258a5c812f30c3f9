package game

import "github.com/hilthontt/guessit/internal/infrastructure/bus"

const (
	PlayerJoinedEvent   = "playerJoined"
	GameStartedEvent    = "gameStarted"
	AnswerReceivedEvent = "answerReceived"
	RevealAnswersEvent  = "revealAnswers"
	GameCompleteEvent   = "gameComplete"
	PlayerLeftEvent     = "playerLeft"
	ErrorEvent          = "error"
)

// Payload structs
type PlayerJoinedPayload struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

type GameStartedPayload struct {
	Questions     []string `json:"questions"`
	YourTarget    string   `json:"yourTarget"`
	QuestionCount int      `json:"questionCount"`
}

type AnswerReceivedPayload struct {
	Name     string `json:"name"`
	Question string `json:"question"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

type RevealEntry struct {
	Writer   string `json:"writer"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
	Question string `json:"question"`
}

type RevealAnswersPayload struct {
	Question string        `json:"question"`
	Answers  []RevealEntry `json:"answers"`
}

type PlayerLeftPayload struct {
	Name string `json:"name"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewPlayerJoined(name string, players []string) *bus.Event {
	return &bus.Event{
		Type: PlayerJoinedEvent,
		Data: PlayerJoinedPayload{
			Name:    name,
			Players: players,
		},
	}
}

func NewGameStarted(questions []string, yourTarget string) *bus.Event {
	return &bus.Event{
		Type: GameStartedEvent,
		Data: GameStartedPayload{
			Questions:     questions,
			YourTarget:    yourTarget,
			QuestionCount: len(questions),
		},
	}
}

func NewAnswerReceived(name, question string, answered, total int) *bus.Event {
	return &bus.Event{
		Type: AnswerReceivedEvent,
		Data: AnswerReceivedPayload{
			Name:     name,
			Question: question,
			Answered: answered,
			Total:    total,
		},
	}
}

func NewRevealAnswers(question string, answers []RevealEntry) *bus.Event {
	return &bus.Event{
		Type: RevealAnswersEvent,
		Data: RevealAnswersPayload{
			Question: question,
			Answers:  answers,
		},
	}
}

func NewGameComplete() *bus.Event {
	return &bus.Event{
		Type: GameCompleteEvent,
		Data: struct{}{},
	}
}

func NewPlayerLeft(name string) *bus.Event {
	return &bus.Event{
		Type: PlayerLeftEvent,
		Data: PlayerLeftPayload{
			Name: name,
		},
	}
}

func NewError(kind, message string) *bus.Event {
	return &bus.Event{
		Type: ErrorEvent,
		Data: ErrorPayload{
			Kind:    kind,
			Message: message,
		},
	}
}
