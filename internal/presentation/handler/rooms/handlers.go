package rooms

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/game"
	"github.com/hilthontt/guessit/internal/infrastructure/bus"
	"github.com/hilthontt/guessit/internal/infrastructure/json"
	"github.com/hilthontt/guessit/internal/infrastructure/logging"
	"github.com/hilthontt/guessit/internal/infrastructure/metrics"
	"github.com/hilthontt/guessit/internal/infrastructure/ws"
)

type Handler struct {
	coordinator      *game.Coordinator
	roomRepository   domain.RoomRepository
	playerRepository domain.PlayerRepository
	bus              bus.Bus
	logger           logging.Logger
}

func NewHandler(
	coordinator *game.Coordinator,
	roomRepository domain.RoomRepository,
	playerRepository domain.PlayerRepository,
	b bus.Bus,
	logger logging.Logger,
) *Handler {
	return &Handler{
		coordinator:      coordinator,
		roomRepository:   roomRepository,
		playerRepository: playerRepository,
		bus:              b,
		logger:           logger,
	}
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	room, err := h.coordinator.CreateRoom(r.Context(), req.QuestionCount)
	if err != nil {
		h.logger.Error(logging.Game, logging.ExternalService, "failed to create room", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
		return
	}

	resp := createRoomResponse{
		Code:          room.Code,
		QuestionCount: room.QuestionCount,
		CreatedAt:     room.CreatedAt,
	}

	json.Write(w, http.StatusCreated, resp)
}

func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := normalizeCode(chi.URLParam(r, "roomCode"))
	if code == "" {
		json.WriteValidationError(w, errors.New("room code is missing"))
		return
	}

	room, err := h.roomRepository.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteNotFoundError(w, "Room not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	players, err := h.playerRepository.ListByRoom(r.Context(), code)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	resp := roomResponse{
		Code:          room.Code,
		Phase:         string(room.Phase),
		QuestionCount: room.QuestionCount,
		CurrentRound:  room.CurrentRound,
		CreatedAt:     room.CreatedAt,
	}
	for _, p := range players {
		if !p.Active {
			continue
		}
		resp.Players = append(resp.Players, playerResponse{
			Name:     p.Name,
			JoinedAt: p.JoinedAt,
		})
	}

	json.Write(w, http.StatusOK, resp)
}

// PlayHandler upgrades the request to a websocket session bound to one
// room. Everything after the upgrade happens over action frames; the
// player is not part of the room until a joinGame frame arrives.
func (h *Handler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	code := normalizeCode(chi.URLParam(r, "roomCode"))
	if code == "" {
		json.WriteValidationError(w, errors.New("room code is missing"))
		return
	}

	conn, err := ws.Upgrade(w, r)
	if err != nil {
		h.logger.Warn(logging.WebSocket, logging.ExternalService, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.RoomCode:     code,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	connectionID := uuid.NewString()
	client := ws.NewClient(conn, connectionID, code, h.coordinator, h.bus, h.logger)

	h.bus.Attach(connectionID, client.Events)
	metrics.LiveConnections.Inc()

	h.logger.Info(logging.WebSocket, logging.Subscribe, "connection established", map[logging.ExtraKey]any{
		logging.RoomCode:     code,
		logging.ConnectionID: connectionID,
	})

	// The request context dies with the handler; the session outlives it.
	go client.WritePump()
	go client.ReadPump(context.Background())
}

// Codes are case-insensitive on the wire, canonical form is upper.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
