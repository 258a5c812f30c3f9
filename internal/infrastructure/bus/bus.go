// Package bus provides group-addressed event delivery between the game
// coordinator and live connections. A connection is attached once for
// its lifetime and subscribed to at most one room group; events are
// delivered point-to-point or broadcast to every current group member.
package bus

import "context"

// Event is the outbound message envelope written to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Bus is the group delivery port. Broadcasts reach the subscribers
// present at publish time, in publish order per group. Delivery to a
// connection that has gone away is a logged no-op, never an error.
type Bus interface {
	// Attach registers a connection's outbound sink. Must be called
	// before the connection can receive anything.
	Attach(connectionID string, sink chan<- *Event)
	// Detach removes the connection and closes its sink.
	Detach(connectionID string)

	Subscribe(group, connectionID string) error
	Unsubscribe(group, connectionID string)

	SendTo(ctx context.Context, connectionID string, event *Event) error
	Broadcast(ctx context.Context, group string, event *Event) error
}
