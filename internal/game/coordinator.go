// Package game owns the per-room state machine: joins, target
// assignment, answer collection and reveals. All mutations for one room
// are serialized behind a per-room lock; distinct rooms proceed in
// parallel.
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/infrastructure/bus"
	"github.com/hilthontt/guessit/internal/infrastructure/logging"
	"github.com/hilthontt/guessit/internal/infrastructure/metrics"
	"github.com/hilthontt/guessit/internal/infrastructure/tracing"
)

type Config struct {
	MaxPlayers           int
	DefaultQuestionCount int
}

func NewDefaultConfig() Config {
	return Config{
		MaxPlayers:           10,
		DefaultQuestionCount: 3,
	}
}

type Coordinator struct {
	cfg       Config
	rooms     domain.RoomRepository
	players   domain.PlayerRepository
	questions domain.QuestionRepository
	answers   domain.AnswerRepository
	bus       bus.Bus
	logger    logging.Logger
	tracer    trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex // room code -> lock
}

func NewCoordinator(
	cfg Config,
	rooms domain.RoomRepository,
	players domain.PlayerRepository,
	questions domain.QuestionRepository,
	answers domain.AnswerRepository,
	b bus.Bus,
	logger logging.Logger,
) *Coordinator {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 10
	}
	if cfg.DefaultQuestionCount <= 0 {
		cfg.DefaultQuestionCount = 3
	}

	return &Coordinator{
		cfg:       cfg,
		rooms:     rooms,
		players:   players,
		questions: questions,
		answers:   answers,
		bus:       b,
		logger:    logger,
		tracer:    tracing.GetTracer("guessit.game"),
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockRoom serializes all state transitions for one room code.
func (c *Coordinator) lockRoom(code string) func() {
	c.mu.Lock()
	lock, ok := c.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[code] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (c *Coordinator) forgetRoom(code string) {
	c.mu.Lock()
	delete(c.locks, code)
	c.mu.Unlock()
}

// CreateRoom reserves a fresh room code ahead of any join.
func (c *Coordinator) CreateRoom(ctx context.Context, questionCount int) (*domain.Room, error) {
	if questionCount <= 0 {
		questionCount = c.cfg.DefaultQuestionCount
	}

	// Codes are short, so collisions with live rooms happen; retry a
	// few times before giving up.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := domain.GenerateRoomCode()
		if err != nil {
			return nil, err
		}

		room := domain.NewRoom(code, questionCount)
		if err := c.rooms.Create(ctx, room); err != nil {
			if err == domain.ErrRoomAlreadyExists {
				continue
			}
			return nil, err
		}

		metrics.RoomsCreated.Inc()
		return room, nil
	}

	return nil, fmt.Errorf("could not allocate a unique room code")
}

// Join adds a player to a lobby, subscribing its connection to the room
// group and announcing the new roster to everyone in it. The room is
// created on first join to an unknown code.
func (c *Coordinator) Join(ctx context.Context, code, name, connectionID string) error {
	ctx, span := c.tracer.Start(ctx, "game.join")
	defer span.End()

	defer c.observe("join", time.Now())
	defer c.lockRoom(code)()

	room, err := c.rooms.GetByCode(ctx, code)
	if err == domain.ErrRoomNotFound {
		room = domain.NewRoom(code, c.cfg.DefaultQuestionCount)
		if err := c.rooms.Create(ctx, room); err != nil {
			return err
		}
		metrics.RoomsCreated.Inc()
	} else if err != nil {
		return err
	}

	if room.Phase != domain.PhaseLobby {
		return fmt.Errorf("cannot join room %s: %w", code, domain.ErrInvalidState)
	}

	count, err := c.players.CountByRoom(ctx, room.Code)
	if err != nil {
		return err
	}
	if count >= c.cfg.MaxPlayers {
		return domain.ErrRoomFull
	}

	player, err := domain.NewPlayer(room.Code, name, connectionID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedAction, err)
	}

	if err := c.players.Create(ctx, player); err != nil {
		return err
	}

	if err := c.bus.Subscribe(room.Code, connectionID); err != nil {
		return err
	}

	roster, err := c.roster(ctx, room.Code)
	if err != nil {
		return err
	}

	metrics.PlayersJoined.Inc()
	c.logger.Info(logging.Game, logging.Join, "player joined", map[logging.ExtraKey]any{
		logging.RoomCode:   room.Code,
		logging.PlayerName: player.Name,
	})

	// The joining player receives the broadcast too.
	return c.bus.Broadcast(ctx, room.Code, NewPlayerJoined(player.Name, roster))
}

// Start samples the question set, assigns every player its target and
// opens the first round. Targets form a single cycle over join order,
// so nobody targets themself and everyone is targeted exactly once.
func (c *Coordinator) Start(ctx context.Context, connectionID string, questionCount int) error {
	ctx, span := c.tracer.Start(ctx, "game.start")
	defer span.End()

	defer c.observe("start", time.Now())

	player, err := c.players.GetByConnectionID(ctx, connectionID)
	if err != nil {
		return err
	}

	defer c.lockRoom(player.RoomCode)()

	room, err := c.rooms.GetByCode(ctx, player.RoomCode)
	if err != nil {
		return err
	}

	if room.Phase != domain.PhaseLobby {
		return fmt.Errorf("game already started in room %s: %w", room.Code, domain.ErrInvalidState)
	}

	players, err := c.players.ListByRoom(ctx, room.Code)
	if err != nil {
		return err
	}
	if len(players) < 2 {
		return domain.ErrInsufficientPlayers
	}

	if questionCount <= 0 {
		questionCount = room.QuestionCount
	}

	sampled, err := c.sampleQuestions(ctx, questionCount)
	if err != nil {
		return err
	}

	// Hamiltonian cycle over join order: each player targets the next,
	// the last wraps to the first.
	for i, p := range players {
		p.TargetID = players[(i+1)%len(players)].ID
		if err := c.players.Update(ctx, p); err != nil {
			return err
		}
	}

	room.Phase = domain.PhaseInRound
	room.Questions = sampled
	room.CurrentRound = 0
	room.RoundSize = len(players)
	if err := c.rooms.Update(ctx, room); err != nil {
		return err
	}

	metrics.GamesStarted.Inc()
	c.logger.Info(logging.Game, logging.Start, "game started", map[logging.ExtraKey]any{
		logging.RoomCode: room.Code,
		"players":        len(players),
		"questions":      len(sampled),
	})

	// Each player learns only its own target; targets are never part of
	// a group broadcast.
	for i, p := range players {
		target := players[(i+1)%len(players)]
		if err := c.bus.SendTo(ctx, p.ConnectionID, NewGameStarted(sampled, target.Name)); err != nil {
			return err
		}
	}

	return nil
}

// SubmitAnswer records an answer to the current question. Resubmission
// overwrites and does not double count. Once every player counted at
// round start has answered, the round is revealed exactly once and the
// room advances.
func (c *Coordinator) SubmitAnswer(ctx context.Context, connectionID, questionText, answerText string) error {
	ctx, span := c.tracer.Start(ctx, "game.submit_answer")
	defer span.End()

	defer c.observe("submitAnswer", time.Now())

	player, err := c.players.GetByConnectionID(ctx, connectionID)
	if err != nil {
		return err
	}

	defer c.lockRoom(player.RoomCode)()

	room, err := c.rooms.GetByCode(ctx, player.RoomCode)
	if err != nil {
		return err
	}

	current, ok := room.CurrentQuestion()
	if !ok {
		return fmt.Errorf("no open round in room %s: %w", room.Code, domain.ErrInvalidState)
	}
	if questionText != current {
		return fmt.Errorf("question %q is not being played: %w", questionText, domain.ErrInvalidState)
	}

	// Reveal order sorts on the submission time, so stamp it here
	// instead of trusting a store default.
	answer := &domain.Answer{
		PlayerID:     player.ID,
		RoomCode:     room.Code,
		QuestionText: current,
		Text:         answerText,
		SubmittedAt:  time.Now(),
	}
	if err := c.answers.Upsert(ctx, answer); err != nil {
		return err
	}

	answered, err := c.answers.CountByQuestion(ctx, room.Code, current)
	if err != nil {
		return err
	}

	metrics.AnswersSubmitted.Inc()

	if err := c.bus.Broadcast(ctx, room.Code, NewAnswerReceived(player.Name, current, answered, room.RoundSize)); err != nil {
		return err
	}

	// Completion is judged against the player count captured at round
	// start, under the room lock, so the reveal fires exactly once even
	// when the last two submissions race.
	if answered < room.RoundSize {
		return nil
	}

	return c.reveal(ctx, room, current)
}

// reveal broadcasts every answer for the finished question and advances
// the room. Caller holds the room lock.
func (c *Coordinator) reveal(ctx context.Context, room *domain.Room, questionText string) error {
	list, err := c.answers.ListByQuestion(ctx, room.Code, questionText)
	if err != nil {
		return err
	}

	entries := make([]RevealEntry, 0, len(list))
	for _, a := range list {
		writer, err := c.players.GetByID(ctx, a.PlayerID)
		if err != nil {
			return err
		}

		// The subject is whoever the writer was answering about.
		subject := ""
		if writer.TargetID != "" {
			target, err := c.players.GetByID(ctx, writer.TargetID)
			if err == nil {
				subject = target.Name
			}
		}

		entries = append(entries, RevealEntry{
			Writer:   writer.Name,
			Subject:  subject,
			Text:     a.Text,
			Question: a.QuestionText,
		})
	}

	complete := room.AdvanceRound()
	if err := c.rooms.Update(ctx, room); err != nil {
		return err
	}

	metrics.RoundsRevealed.Inc()
	c.logger.Info(logging.Game, logging.Reveal, "question revealed", map[logging.ExtraKey]any{
		logging.RoomCode: room.Code,
		"question":       questionText,
		"answers":        len(entries),
	})

	if err := c.bus.Broadcast(ctx, room.Code, NewRevealAnswers(questionText, entries)); err != nil {
		return err
	}

	if complete {
		metrics.GamesCompleted.Inc()
		return c.bus.Broadcast(ctx, room.Code, NewGameComplete())
	}

	return nil
}

// Leave detaches a player from the session. In the lobby the player is
// removed outright so it cannot poison a later target cycle; once a
// round is running the player stays on the roster and still counts
// toward the round's completion denominator.
func (c *Coordinator) Leave(ctx context.Context, connectionID string) error {
	ctx, span := c.tracer.Start(ctx, "game.leave")
	defer span.End()

	player, err := c.players.GetByConnectionID(ctx, connectionID)
	if err != nil {
		// Connection never joined a room; nothing to clean up.
		return nil
	}

	defer c.lockRoom(player.RoomCode)()

	c.bus.Unsubscribe(player.RoomCode, connectionID)

	room, err := c.rooms.GetByCode(ctx, player.RoomCode)
	if err != nil {
		return nil
	}

	if room.Phase == domain.PhaseLobby {
		if err := c.players.Delete(ctx, player.ID); err != nil {
			return err
		}
	} else {
		player.Active = false
		if err := c.players.Update(ctx, player); err != nil {
			return err
		}
	}

	c.logger.Info(logging.Game, logging.Leave, "player left", map[logging.ExtraKey]any{
		logging.RoomCode:   room.Code,
		logging.PlayerName: player.Name,
	})

	if err := c.bus.Broadcast(ctx, room.Code, NewPlayerLeft(player.Name)); err != nil {
		return err
	}

	return c.collectRoom(ctx, room)
}

// collectRoom deletes the room and its records once no player remains
// active. Caller holds the room lock.
func (c *Coordinator) collectRoom(ctx context.Context, room *domain.Room) error {
	players, err := c.players.ListByRoom(ctx, room.Code)
	if err != nil {
		return err
	}

	for _, p := range players {
		if p.Active {
			return nil
		}
	}

	if err := c.players.DeleteByRoom(ctx, room.Code); err != nil {
		return err
	}
	if err := c.answers.DeleteByRoom(ctx, room.Code); err != nil {
		return err
	}
	if err := c.rooms.Delete(ctx, room.Code); err != nil {
		return err
	}

	c.forgetRoom(room.Code)

	return nil
}

func (c *Coordinator) roster(ctx context.Context, roomCode string) ([]string, error) {
	players, err := c.players.ListByRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}

	return names, nil
}

// sampleQuestions draws up to n distinct questions uniformly at random
// without replacement. A pool smaller than n clamps rather than fails;
// an empty pool is an error.
func (c *Coordinator) sampleQuestions(ctx context.Context, n int) ([]string, error) {
	pool, err := c.questions.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrEmptyQuestionPool
	}

	if n > len(pool) {
		n = len(pool)
	}

	sampled := make([]string, 0, n)
	for _, idx := range rand.Perm(len(pool))[:n] {
		sampled = append(sampled, pool[idx].Text)
	}

	return sampled, nil
}

func (c *Coordinator) observe(action string, start time.Time) {
	metrics.ActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}
