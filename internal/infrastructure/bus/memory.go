package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/hilthontt/guessit/internal/infrastructure/logging"
)

var ErrNotAttached = errors.New("connection not attached")

// MemoryBus delivers events inside a single process. Sinks are buffered
// by their owners; a full sink drops the event rather than blocking the
// publisher.
type MemoryBus struct {
	conns  map[string]chan<- *Event
	groups map[string]map[string]struct{} // group -> connection IDs
	mu     sync.RWMutex
	logger logging.Logger
}

func NewMemoryBus(logger logging.Logger) *MemoryBus {
	return &MemoryBus{
		conns:  make(map[string]chan<- *Event),
		groups: make(map[string]map[string]struct{}),
		logger: logger,
	}
}

func (b *MemoryBus) Attach(connectionID string, sink chan<- *Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conns[connectionID] = sink
}

func (b *MemoryBus) Detach(connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sink, ok := b.conns[connectionID]
	if !ok {
		return
	}

	delete(b.conns, connectionID)
	for group, members := range b.groups {
		if _, ok := members[connectionID]; ok {
			delete(members, connectionID)
			if len(members) == 0 {
				delete(b.groups, group)
			}
		}
	}

	close(sink)
}

func (b *MemoryBus) Subscribe(group, connectionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.conns[connectionID]; !ok {
		return ErrNotAttached
	}

	members, ok := b.groups[group]
	if !ok {
		members = make(map[string]struct{})
		b.groups[group] = members
	}
	members[connectionID] = struct{}{}

	return nil
}

func (b *MemoryBus) Unsubscribe(group, connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.groups[group]
	if !ok {
		return
	}

	delete(members, connectionID)
	if len(members) == 0 {
		delete(b.groups, group)
	}
}

func (b *MemoryBus) SendTo(ctx context.Context, connectionID string, event *Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.deliver(connectionID, event)
	return nil
}

func (b *MemoryBus) Broadcast(ctx context.Context, group string, event *Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for connectionID := range b.groups[group] {
		b.deliver(connectionID, event)
	}
	return nil
}

// deliver pushes an event to one sink, non-blocking. Caller holds at
// least the read lock, which guarantees the sink has not been closed.
func (b *MemoryBus) deliver(connectionID string, event *Event) {
	sink, ok := b.conns[connectionID]
	if !ok {
		// Connection already gone: drop silently, per contract.
		b.logger.Debug(logging.Bus, logging.Delivery, "dropping event for detached connection", map[logging.ExtraKey]any{
			logging.ConnectionID: connectionID,
			logging.EventType:    event.Type,
		})
		return
	}

	select {
	case sink <- event:
	default:
		// Client is too slow – drop the event
		b.logger.Warn(logging.Bus, logging.Delivery, "sink full, dropping event", map[logging.ExtraKey]any{
			logging.ConnectionID: connectionID,
			logging.EventType:    event.Type,
		})
	}
}
