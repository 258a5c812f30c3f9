package domain

import (
	"strings"
	"testing"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := map[string]struct{}{}

	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()
		if err != nil {
			t.Fatalf("GenerateRoomCode: %v", err)
		}
		if len(code) != roomCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), roomCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(roomCodeChars, c) {
				t.Fatalf("code %q contains %q, outside the charset", code, c)
			}
		}
		seen[code] = struct{}{}
	}

	// 100 draws from a 32^4 space repeating every time would mean a
	// broken generator.
	if len(seen) < 2 {
		t.Error("generator produced a single code across 100 draws")
	}
}

func TestNewRoomUppercasesCode(t *testing.T) {
	room := NewRoom("abcd", 3)
	if room.Code != "ABCD" {
		t.Errorf("code = %q, want ABCD", room.Code)
	}
	if room.Phase != PhaseLobby {
		t.Errorf("phase = %q, want %q", room.Phase, PhaseLobby)
	}
}

func TestCurrentQuestionByPhase(t *testing.T) {
	room := NewRoom("ABCD", 2)

	if _, ok := room.CurrentQuestion(); ok {
		t.Error("lobby room reported an open question")
	}

	room.Phase = PhaseInRound
	room.Questions = []string{"q1", "q2"}

	q, ok := room.CurrentQuestion()
	if !ok || q != "q1" {
		t.Errorf("CurrentQuestion = %q/%v, want q1/true", q, ok)
	}

	if done := room.AdvanceRound(); done {
		t.Error("AdvanceRound reported completion with a question left")
	}
	q, ok = room.CurrentQuestion()
	if !ok || q != "q2" {
		t.Errorf("CurrentQuestion = %q/%v, want q2/true", q, ok)
	}

	if done := room.AdvanceRound(); !done {
		t.Error("AdvanceRound did not report completion on the last question")
	}
	if room.Phase != PhaseComplete {
		t.Errorf("phase = %q, want %q", room.Phase, PhaseComplete)
	}
	if _, ok := room.CurrentQuestion(); ok {
		t.Error("complete room reported an open question")
	}
}

func TestNewPlayerTrimsName(t *testing.T) {
	p, err := NewPlayer("ABCD", "  Alice  ", "conn-1")
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	if p.Name != "Alice" {
		t.Errorf("name = %q, want Alice", p.Name)
	}
	if !p.Active {
		t.Error("new player is not active")
	}
}
