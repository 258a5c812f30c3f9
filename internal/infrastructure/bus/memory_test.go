package bus

import (
	"context"
	"testing"

	"github.com/hilthontt/guessit/internal/infrastructure/logging"
)

func newBus() *MemoryBus {
	return NewMemoryBus(logging.NewNopLogger())
}

func TestBroadcastReachesGroupInOrder(t *testing.T) {
	b := newBus()
	ctx := context.Background()

	sinks := map[string]chan *Event{}
	for _, id := range []string{"c1", "c2"} {
		ch := make(chan *Event, 8)
		sinks[id] = ch
		b.Attach(id, ch)
		if err := b.Subscribe("room", id); err != nil {
			t.Fatalf("Subscribe(%s): %v", id, err)
		}
	}

	for _, eventType := range []string{"first", "second", "third"} {
		if err := b.Broadcast(ctx, "room", &Event{Type: eventType}); err != nil {
			t.Fatalf("Broadcast(%s): %v", eventType, err)
		}
	}

	for id, ch := range sinks {
		for _, want := range []string{"first", "second", "third"} {
			select {
			case e := <-ch:
				if e.Type != want {
					t.Errorf("%s received %q, want %q", id, e.Type, want)
				}
			default:
				t.Fatalf("%s is missing event %q", id, want)
			}
		}
	}
}

func TestSubscribeRequiresAttach(t *testing.T) {
	b := newBus()

	if err := b.Subscribe("room", "ghost"); err != ErrNotAttached {
		t.Errorf("Subscribe without Attach = %v, want ErrNotAttached", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := newBus()
	ctx := context.Background()

	ch := make(chan *Event, 8)
	b.Attach("c1", ch)
	if err := b.Subscribe("room", "c1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Unsubscribe("room", "c1")

	if err := b.Broadcast(ctx, "room", &Event{Type: "late"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	select {
	case e := <-ch:
		t.Errorf("received %q after unsubscribe", e.Type)
	default:
	}
}

func TestSendToTargetsOneConnection(t *testing.T) {
	b := newBus()
	ctx := context.Background()

	c1 := make(chan *Event, 8)
	c2 := make(chan *Event, 8)
	b.Attach("c1", c1)
	b.Attach("c2", c2)

	if err := b.SendTo(ctx, "c1", &Event{Type: "private"}); err != nil {
		t.Fatalf("SendTo: %v", err)
	}

	select {
	case e := <-c1:
		if e.Type != "private" {
			t.Errorf("c1 received %q, want private", e.Type)
		}
	default:
		t.Fatal("c1 received nothing")
	}

	select {
	case e := <-c2:
		t.Errorf("c2 received %q, want nothing", e.Type)
	default:
	}
}

func TestDetachClosesSinkAndLeavesGroups(t *testing.T) {
	b := newBus()
	ctx := context.Background()

	ch := make(chan *Event, 8)
	b.Attach("c1", ch)
	if err := b.Subscribe("room", "c1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Detach("c1")

	if _, open := <-ch; open {
		t.Error("sink still open after Detach")
	}

	// A broadcast to the emptied group must not panic or deliver.
	if err := b.Broadcast(ctx, "room", &Event{Type: "after"}); err != nil {
		t.Fatalf("Broadcast after Detach: %v", err)
	}

	// Detaching twice is a no-op.
	b.Detach("c1")
}

func TestFullSinkDropsInsteadOfBlocking(t *testing.T) {
	b := newBus()
	ctx := context.Background()

	ch := make(chan *Event, 1)
	b.Attach("slow", ch)

	if err := b.SendTo(ctx, "slow", &Event{Type: "kept"}); err != nil {
		t.Fatalf("SendTo: %v", err)
	}
	// Must return immediately even though the sink is full.
	if err := b.SendTo(ctx, "slow", &Event{Type: "dropped"}); err != nil {
		t.Fatalf("SendTo on full sink: %v", err)
	}

	e := <-ch
	if e.Type != "kept" {
		t.Errorf("buffered event = %q, want kept", e.Type)
	}
	select {
	case e := <-ch:
		t.Errorf("unexpected second event %q", e.Type)
	default:
	}
}

func TestSendToDetachedConnectionIsNoop(t *testing.T) {
	b := newBus()

	if err := b.SendTo(context.Background(), "nobody", &Event{Type: "x"}); err != nil {
		t.Errorf("SendTo to unknown connection = %v, want nil", err)
	}
}
