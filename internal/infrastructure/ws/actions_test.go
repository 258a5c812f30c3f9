package ws

import (
	"errors"
	"testing"

	"github.com/hilthontt/guessit/internal/domain"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "join",
			raw:  `{"action":"joinGame","name":"Alice"}`,
			want: ActionJoinGame,
		},
		{
			name: "start without count",
			raw:  `{"action":"startGame"}`,
			want: ActionStartGame,
		},
		{
			name: "start with count",
			raw:  `{"action":"startGame","questionCount":5}`,
			want: ActionStartGame,
		},
		{
			name: "submit",
			raw:  `{"action":"submitAnswer","question":"q1","answer":"mine"}`,
			want: ActionSubmitAnswer,
		},
		{
			name: "leave",
			raw:  `{"action":"leaveGame"}`,
			want: ActionLeaveGame,
		},
		{
			name:    "join without name",
			raw:     `{"action":"joinGame"}`,
			wantErr: true,
		},
		{
			name:    "submit without question",
			raw:     `{"action":"submitAnswer","answer":"mine"}`,
			wantErr: true,
		},
		{
			name:    "submit without answer",
			raw:     `{"action":"submitAnswer","question":"q1"}`,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			raw:     `{"action":"dance"}`,
			wantErr: true,
		},
		{
			name:    "missing kind",
			raw:     `{"name":"Alice"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `joinGame please`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			action, err := decodeAction([]byte(tc.raw))
			if tc.wantErr {
				if !errors.Is(err, domain.ErrMalformedAction) {
					t.Errorf("decodeAction error = %v, want ErrMalformedAction", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeAction: %v", err)
			}
			if action.Action != tc.want {
				t.Errorf("action = %q, want %q", action.Action, tc.want)
			}
		})
	}
}
