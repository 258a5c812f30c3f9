package ws

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/hilthontt/guessit/internal/game"
	"github.com/hilthontt/guessit/internal/infrastructure/bus"
	"github.com/hilthontt/guessit/internal/infrastructure/logging"
	"github.com/hilthontt/guessit/internal/infrastructure/metrics"
)

// Client is the handler for one live connection: it decodes inbound
// action frames, hands them to the coordinator, and relays events
// addressed to this connection back over the socket.
type Client struct {
	conn   *connWrapper
	Events chan *bus.Event

	ID       string
	RoomCode string

	coordinator *game.Coordinator
	bus         bus.Bus
	logger      logging.Logger
}

func NewClient(conn *websocket.Conn, id, roomCode string, coordinator *game.Coordinator, b bus.Bus, logger logging.Logger) *Client {
	return &Client{
		conn:        newConnWrapper(conn),
		Events:      make(chan *bus.Event, 64), // buffered to avoid dead-locks on slow clients
		ID:          id,
		RoomCode:    roomCode,
		coordinator: coordinator,
		bus:         b,
		logger:      logger,
	}
}

// ReadPump consumes action frames until the connection drops, then
// tears the session down. A close mid-action does not abort a room
// mutation already under way; it only stops future delivery here.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		_ = c.coordinator.Leave(ctx, c.ID)
		c.bus.Detach(c.ID)
		_ = c.conn.Close()
		metrics.LiveConnections.Dec()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn(logging.WebSocket, logging.Delivery, "read error", map[logging.ExtraKey]any{
					logging.ConnectionID: c.ID,
					logging.ErrorMessage: err.Error(),
				})
			}
			break
		}

		c.handle(ctx, raw)
	}
}

func (c *Client) handle(ctx context.Context, raw []byte) {
	action, err := decodeAction(raw)
	if err != nil {
		c.reportError(ctx, err)
		return
	}

	switch action.Action {
	case ActionJoinGame:
		err = c.coordinator.Join(ctx, c.RoomCode, action.Name, c.ID)
	case ActionStartGame:
		err = c.coordinator.Start(ctx, c.ID, action.QuestionCount)
	case ActionSubmitAnswer:
		err = c.coordinator.SubmitAnswer(ctx, c.ID, action.Question, action.Answer)
	case ActionLeaveGame:
		err = c.coordinator.Leave(ctx, c.ID)
	}

	if err != nil {
		c.reportError(ctx, err)
	}
}

// reportError sends an error event to this connection only; the rest of
// the room observes nothing for a failed action.
func (c *Client) reportError(ctx context.Context, err error) {
	kind := game.ErrorKind(err)
	metrics.ActionErrors.WithLabelValues(kind).Inc()

	c.logger.Warn(logging.WebSocket, logging.Delivery, "action rejected", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID,
		logging.RoomCode:     c.RoomCode,
		logging.ErrorMessage: err.Error(),
	})

	_ = c.bus.SendTo(ctx, c.ID, game.NewError(kind, err.Error()))
}

// WritePump relays events until the sink is closed by the bus.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for event := range c.Events {
		if err := c.conn.WriteJSON(event); err != nil {
			c.logger.Warn(logging.WebSocket, logging.Delivery, "write error", map[logging.ExtraKey]any{
				logging.ConnectionID: c.ID,
				logging.ErrorMessage: err.Error(),
			})
			break
		}
	}
}
