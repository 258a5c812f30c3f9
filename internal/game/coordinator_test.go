package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/infrastructure/bus"
	"github.com/hilthontt/guessit/internal/infrastructure/logging"
	"github.com/hilthontt/guessit/internal/infrastructure/repository"
)

type fixture struct {
	coordinator *Coordinator
	bus         *bus.MemoryBus
	rooms       domain.RoomRepository
	players     domain.PlayerRepository
	questions   domain.QuestionRepository
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	rooms := repository.NewRoomRepository(100, time.Hour)
	players := repository.NewPlayerRepository()
	questions := repository.NewQuestionRepository()
	answers := repository.NewAnswerRepository()
	logger := logging.NewNopLogger()
	eventBus := bus.NewMemoryBus(logger)

	return &fixture{
		coordinator: NewCoordinator(cfg, rooms, players, questions, answers, eventBus, logger),
		bus:         eventBus,
		rooms:       rooms,
		players:     players,
		questions:   questions,
	}
}

func (f *fixture) seedQuestions(t *testing.T, texts ...string) {
	t.Helper()
	for _, text := range texts {
		q, err := domain.NewQuestion(text)
		if err != nil {
			t.Fatalf("NewQuestion(%q): %v", text, err)
		}
		if err := f.questions.Create(context.Background(), q); err != nil {
			t.Fatalf("seed question %q: %v", text, err)
		}
	}
}

func (f *fixture) connect(connectionID string) chan *bus.Event {
	ch := make(chan *bus.Event, 64)
	f.bus.Attach(connectionID, ch)
	return ch
}

// drain collects everything currently buffered without blocking.
func drain(ch chan *bus.Event) []*bus.Event {
	var out []*bus.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func findEvent(events []*bus.Event, eventType string) *bus.Event {
	for _, e := range events {
		if e.Type == eventType {
			return e
		}
	}
	return nil
}

func TestJoinBroadcastsRoster(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")
	ctx := context.Background()

	alice := f.connect("conn-alice")
	if err := f.coordinator.Join(ctx, "ABCD", "Alice", "conn-alice"); err != nil {
		t.Fatalf("Join Alice: %v", err)
	}

	events := drain(alice)
	joined := findEvent(events, PlayerJoinedEvent)
	if joined == nil {
		t.Fatal("Alice did not receive playerJoined for her own join")
	}
	payload := joined.Data.(PlayerJoinedPayload)
	if payload.Name != "Alice" {
		t.Errorf("playerJoined name = %q, want Alice", payload.Name)
	}
	if len(payload.Players) != 1 || payload.Players[0] != "Alice" {
		t.Errorf("roster = %v, want [Alice]", payload.Players)
	}

	bob := f.connect("conn-bob")
	if err := f.coordinator.Join(ctx, "ABCD", "Bob", "conn-bob"); err != nil {
		t.Fatalf("Join Bob: %v", err)
	}

	for name, ch := range map[string]chan *bus.Event{"Alice": alice, "Bob": bob} {
		joined := findEvent(drain(ch), PlayerJoinedEvent)
		if joined == nil {
			t.Fatalf("%s did not receive playerJoined for Bob's join", name)
		}
		payload := joined.Data.(PlayerJoinedPayload)
		if len(payload.Players) != 2 {
			t.Errorf("%s saw roster %v, want 2 entries", name, payload.Players)
		}
	}
}

func TestJoinRejectsBadNames(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	ctx := context.Background()

	tests := []struct {
		label string
		name  string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("x", 51)},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			f.connect("conn-x")
			err := f.coordinator.Join(ctx, "ABCD", tc.name, "conn-x")
			if !errors.Is(err, domain.ErrMalformedAction) {
				t.Errorf("Join(%q) error = %v, want ErrMalformedAction", tc.name, err)
			}
		})
	}
}

func TestJoinFullRoom(t *testing.T) {
	f := newFixture(t, Config{MaxPlayers: 2, DefaultQuestionCount: 3})
	ctx := context.Background()

	for _, p := range []struct{ name, conn string }{
		{"Alice", "conn-1"}, {"Bob", "conn-2"},
	} {
		f.connect(p.conn)
		if err := f.coordinator.Join(ctx, "FULL", p.name, p.conn); err != nil {
			t.Fatalf("Join %s: %v", p.name, err)
		}
	}

	f.connect("conn-3")
	if err := f.coordinator.Join(ctx, "FULL", "Carol", "conn-3"); !errors.Is(err, domain.ErrRoomFull) {
		t.Errorf("Join over capacity error = %v, want ErrRoomFull", err)
	}
}

// startThree joins three players and starts the game, returning each
// player's channel keyed by name, drained of the join noise, plus the
// sampled question list.
func startThree(t *testing.T, f *fixture) (map[string]chan *bus.Event, []string) {
	t.Helper()
	ctx := context.Background()

	conns := map[string]chan *bus.Event{}
	for _, p := range []struct{ name, conn string }{
		{"Alice", "conn-alice"}, {"Bob", "conn-bob"}, {"Carol", "conn-carol"},
	} {
		conns[p.name] = f.connect(p.conn)
		if err := f.coordinator.Join(ctx, "GAME", p.name, p.conn); err != nil {
			t.Fatalf("Join %s: %v", p.name, err)
		}
	}
	for _, ch := range conns {
		drain(ch)
	}

	if err := f.coordinator.Start(ctx, "conn-alice", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	started := findEvent(drain(conns["Alice"]), GameStartedEvent)
	if started == nil {
		t.Fatal("Alice did not receive gameStarted")
	}
	questions := started.Data.(GameStartedPayload).Questions

	return conns, questions
}

func TestStartAssignsTargetsInCycle(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3", "q4", "q5")

	conns, questions := startThree(t, f)

	if len(questions) != 3 {
		t.Errorf("sampled %d questions, want 3", len(questions))
	}

	// Join order was Alice, Bob, Carol; targets must follow that cycle.
	want := map[string]string{"Bob": "Carol", "Carol": "Alice"}
	targets := map[string]string{}
	for name, wantTarget := range want {
		started := findEvent(drain(conns[name]), GameStartedEvent)
		if started == nil {
			t.Fatalf("%s did not receive gameStarted", name)
		}
		payload := started.Data.(GameStartedPayload)
		if payload.YourTarget != wantTarget {
			t.Errorf("%s target = %q, want %q", name, payload.YourTarget, wantTarget)
		}
		targets[name] = payload.YourTarget
	}

	for name, target := range targets {
		if name == target {
			t.Errorf("%s targets themself", name)
		}
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1")
	ctx := context.Background()

	alice := f.connect("conn-alice")
	if err := f.coordinator.Join(ctx, "SOLO", "Alice", "conn-alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	drain(alice)

	if err := f.coordinator.Start(ctx, "conn-alice", 0); !errors.Is(err, domain.ErrInsufficientPlayers) {
		t.Errorf("Start error = %v, want ErrInsufficientPlayers", err)
	}
	if e := findEvent(drain(alice), GameStartedEvent); e != nil {
		t.Error("gameStarted was broadcast despite rejected start")
	}
}

func TestStartTwiceRejected(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")

	startThree(t, f)

	err := f.coordinator.Start(context.Background(), "conn-bob", 0)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("second Start error = %v, want ErrInvalidState", err)
	}
}

func TestStartWithEmptyPool(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	ctx := context.Background()

	for _, p := range []struct{ name, conn string }{
		{"Alice", "conn-1"}, {"Bob", "conn-2"},
	} {
		f.connect(p.conn)
		if err := f.coordinator.Join(ctx, "POOL", p.name, p.conn); err != nil {
			t.Fatalf("Join %s: %v", p.name, err)
		}
	}

	if err := f.coordinator.Start(ctx, "conn-1", 0); !errors.Is(err, domain.ErrEmptyQuestionPool) {
		t.Errorf("Start error = %v, want ErrEmptyQuestionPool", err)
	}
}

func TestStartClampsToPoolSize(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "only-one")

	_, questions := startThree(t, f)

	if len(questions) != 1 || questions[0] != "only-one" {
		t.Errorf("sampled %v, want [only-one]", questions)
	}
}

func TestJoinAfterStartRejected(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")

	startThree(t, f)

	f.connect("conn-late")
	err := f.coordinator.Join(context.Background(), "GAME", "Dave", "conn-late")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("late Join error = %v, want ErrInvalidState", err)
	}
}

func TestSubmitAnswerInLobbyRejected(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	ctx := context.Background()

	f.connect("conn-alice")
	if err := f.coordinator.Join(ctx, "ABCD", "Alice", "conn-alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	err := f.coordinator.SubmitAnswer(ctx, "conn-alice", "q1", "an answer")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("SubmitAnswer in lobby error = %v, want ErrInvalidState", err)
	}
}

func TestSubmitAnswerWrongQuestionRejected(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")

	startThree(t, f)

	err := f.coordinator.SubmitAnswer(context.Background(), "conn-alice", "not-in-play", "x")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("SubmitAnswer error = %v, want ErrInvalidState", err)
	}
}

func TestRevealWaitsForAllPlayers(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")
	ctx := context.Background()

	conns, questions := startThree(t, f)
	current := questions[0]

	// Alice answers twice; the resubmission overwrites and must not
	// count as a second player.
	for _, text := range []string{"first draft", "final answer"} {
		if err := f.coordinator.SubmitAnswer(ctx, "conn-alice", current, text); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
	}
	if err := f.coordinator.SubmitAnswer(ctx, "conn-bob", current, "bob says"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	for name, ch := range conns {
		events := drain(ch)
		if e := findEvent(events, RevealAnswersEvent); e != nil {
			t.Fatalf("%s saw a reveal before everyone answered", name)
		}
		received := findEvent(events, AnswerReceivedEvent)
		if received == nil {
			t.Fatalf("%s missed answerReceived progress", name)
		}
		payload := received.Data.(AnswerReceivedPayload)
		if payload.Total != 3 {
			t.Errorf("answerReceived total = %d, want 3", payload.Total)
		}
	}

	if err := f.coordinator.SubmitAnswer(ctx, "conn-carol", current, "carol says"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	reveal := findEvent(drain(conns["Alice"]), RevealAnswersEvent)
	if reveal == nil {
		t.Fatal("no revealAnswers after the last submission")
	}
	payload := reveal.Data.(RevealAnswersPayload)
	if payload.Question != current {
		t.Errorf("reveal question = %q, want %q", payload.Question, current)
	}
	if len(payload.Answers) != 3 {
		t.Fatalf("reveal carries %d answers, want 3", len(payload.Answers))
	}

	// Alice targets Bob, Bob targets Carol, Carol targets Alice.
	wantSubject := map[string]string{"Alice": "Bob", "Bob": "Carol", "Carol": "Alice"}
	texts := map[string]string{}
	for _, entry := range payload.Answers {
		if entry.Subject != wantSubject[entry.Writer] {
			t.Errorf("writer %s has subject %q, want %q", entry.Writer, entry.Subject, wantSubject[entry.Writer])
		}
		texts[entry.Writer] = entry.Text
	}
	if texts["Alice"] != "final answer" {
		t.Errorf("Alice's revealed answer = %q, want the resubmitted one", texts["Alice"])
	}
}

func TestGameCompleteAfterLastQuestion(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "the-only-question")
	ctx := context.Background()

	conns, questions := startThree(t, f)
	current := questions[0]

	for _, conn := range []string{"conn-alice", "conn-bob", "conn-carol"} {
		if err := f.coordinator.SubmitAnswer(ctx, conn, current, "answer from "+conn); err != nil {
			t.Fatalf("SubmitAnswer %s: %v", conn, err)
		}
	}

	events := drain(conns["Bob"])
	if findEvent(events, RevealAnswersEvent) == nil {
		t.Error("missing revealAnswers for the final question")
	}
	if findEvent(events, GameCompleteEvent) == nil {
		t.Error("missing gameComplete after the final reveal")
	}

	room, err := f.rooms.GetByCode(ctx, "GAME")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if room.Phase != domain.PhaseComplete {
		t.Errorf("room phase = %q, want %q", room.Phase, domain.PhaseComplete)
	}
}

func TestLeaveInLobbyRemovesPlayer(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1")
	ctx := context.Background()

	alice := f.connect("conn-alice")
	bob := f.connect("conn-bob")
	for _, p := range []struct{ name, conn string }{
		{"Alice", "conn-alice"}, {"Bob", "conn-bob"},
	} {
		if err := f.coordinator.Join(ctx, "ROOM", p.name, p.conn); err != nil {
			t.Fatalf("Join %s: %v", p.name, err)
		}
	}
	drain(alice)
	drain(bob)

	if err := f.coordinator.Leave(ctx, "conn-bob"); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	left := findEvent(drain(alice), PlayerLeftEvent)
	if left == nil {
		t.Fatal("Alice did not receive playerLeft")
	}
	if name := left.Data.(PlayerLeftPayload).Name; name != "Bob" {
		t.Errorf("playerLeft name = %q, want Bob", name)
	}

	// Bob is gone from the roster, so a start now lacks players.
	if err := f.coordinator.Start(ctx, "conn-alice", 0); !errors.Is(err, domain.ErrInsufficientPlayers) {
		t.Errorf("Start error = %v, want ErrInsufficientPlayers", err)
	}
}

func TestLeaveUnknownConnectionIsNoop(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())

	if err := f.coordinator.Leave(context.Background(), "never-joined"); err != nil {
		t.Errorf("Leave for unknown connection = %v, want nil", err)
	}
}

func TestRoomCollectedWhenEmpty(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")
	ctx := context.Background()

	startThree(t, f)

	for _, conn := range []string{"conn-alice", "conn-bob", "conn-carol"} {
		if err := f.coordinator.Leave(ctx, conn); err != nil {
			t.Fatalf("Leave %s: %v", conn, err)
		}
	}

	if _, err := f.rooms.GetByCode(ctx, "GAME"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("room lookup after collection = %v, want ErrRoomNotFound", err)
	}
	if _, err := f.players.GetByConnectionID(ctx, "conn-alice"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("player lookup after collection = %v, want ErrPlayerNotFound", err)
	}
}

// Reveal order sorts on the submission time, so every answer handed to
// the store must carry a stamp; backends must never see a zero value.
type answerSpy struct {
	domain.AnswerRepository
	last *domain.Answer
}

func (s *answerSpy) Upsert(ctx context.Context, answer *domain.Answer) error {
	s.last = answer
	return s.AnswerRepository.Upsert(ctx, answer)
}

func TestSubmitAnswerStampsSubmissionTime(t *testing.T) {
	rooms := repository.NewRoomRepository(100, time.Hour)
	players := repository.NewPlayerRepository()
	questions := repository.NewQuestionRepository()
	spy := &answerSpy{AnswerRepository: repository.NewAnswerRepository()}
	logger := logging.NewNopLogger()
	eventBus := bus.NewMemoryBus(logger)
	c := NewCoordinator(NewDefaultConfig(), rooms, players, questions, spy, eventBus, logger)
	ctx := context.Background()

	q, err := domain.NewQuestion("the-question")
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	if err := questions.Create(ctx, q); err != nil {
		t.Fatalf("seed question: %v", err)
	}

	for _, p := range []struct{ name, conn string }{
		{"Alice", "conn-1"}, {"Bob", "conn-2"},
	} {
		eventBus.Attach(p.conn, make(chan *bus.Event, 64))
		if err := c.Join(ctx, "TIME", p.name, p.conn); err != nil {
			t.Fatalf("Join %s: %v", p.name, err)
		}
	}
	if err := c.Start(ctx, "conn-1", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := c.SubmitAnswer(ctx, "conn-1", "the-question", "an answer"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if spy.last == nil {
		t.Fatal("no answer reached the store")
	}
	if spy.last.SubmittedAt.IsZero() {
		t.Error("answer reached the store without a submission time")
	}
}

func TestRevealFiresOnceWhenLastSubmissionsRace(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	f.seedQuestions(t, "q1", "q2", "q3")
	ctx := context.Background()

	conns, questions := startThree(t, f)

	for round, current := range questions {
		if err := f.coordinator.SubmitAnswer(ctx, "conn-alice", current, "alice says"); err != nil {
			t.Fatalf("round %d: SubmitAnswer Alice: %v", round, err)
		}

		// The two remaining answers land from separate goroutines, so
		// either one can be the submission that completes the round.
		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, conn := range []string{"conn-bob", "conn-carol"} {
			wg.Add(1)
			go func(conn string) {
				defer wg.Done()
				errs <- f.coordinator.SubmitAnswer(ctx, conn, current, "answer from "+conn)
			}(conn)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("round %d: concurrent SubmitAnswer: %v", round, err)
			}
		}

		lastRound := round == len(questions)-1
		for name, ch := range conns {
			reveals, completes := 0, 0
			for _, e := range drain(ch) {
				switch e.Type {
				case RevealAnswersEvent:
					reveals++
				case GameCompleteEvent:
					completes++
				}
			}
			if reveals != 1 {
				t.Fatalf("round %d: %s saw %d reveals, want exactly 1", round, name, reveals)
			}
			wantComplete := 0
			if lastRound {
				wantComplete = 1
			}
			if completes != wantComplete {
				t.Fatalf("round %d: %s saw %d gameComplete events, want %d", round, name, completes, wantComplete)
			}
		}
	}
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t, NewDefaultConfig())
	ctx := context.Background()

	room, err := f.coordinator.CreateRoom(ctx, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if len(room.Code) != 4 {
		t.Errorf("room code %q has length %d, want 4", room.Code, len(room.Code))
	}
	if room.QuestionCount != 3 {
		t.Errorf("question count = %d, want the default 3", room.QuestionCount)
	}
	if room.Phase != domain.PhaseLobby {
		t.Errorf("phase = %q, want %q", room.Phase, domain.PhaseLobby)
	}

	got, err := f.rooms.GetByCode(ctx, room.Code)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Code != room.Code {
		t.Errorf("stored code = %q, want %q", got.Code, room.Code)
	}
}
