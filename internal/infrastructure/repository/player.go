package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hilthontt/guessit/internal/domain"
)

// playerRepository owns its stored players: reads return detached
// clones, so flipping Active on a fetched player changes nothing until
// Update lands it.
type playerRepository struct {
	players map[string]*domain.Player // ID -> Player
	byConn  map[string]*domain.Player // connection ID -> Player
	mu      *sync.RWMutex
}

func NewPlayerRepository() domain.PlayerRepository {
	return &playerRepository{
		players: make(map[string]*domain.Player),
		byConn:  make(map[string]*domain.Player),
		mu:      &sync.RWMutex{},
	}
}

func clonePlayer(player *domain.Player) *domain.Player {
	clone := *player
	return &clone
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	if player == nil || player.ID == "" || player.RoomCode == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clonePlayer(player)
	r.players[stored.ID] = stored
	if stored.ConnectionID != "" {
		r.byConn[stored.ConnectionID] = stored
	}

	return nil
}

func (r *playerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	player, exists := r.players[id]
	if !exists {
		return nil, domain.ErrPlayerNotFound
	}

	return clonePlayer(player), nil
}

func (r *playerRepository) GetByConnectionID(ctx context.Context, connectionID string) (*domain.Player, error) {
	if connectionID == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	player, exists := r.byConn[connectionID]
	if !exists {
		return nil, domain.ErrPlayerNotFound
	}

	return clonePlayer(player), nil
}

func (r *playerRepository) ListByRoom(ctx context.Context, roomCode string) ([]*domain.Player, error) {
	if roomCode == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var players []*domain.Player
	for _, p := range r.players {
		if p.RoomCode == roomCode {
			players = append(players, clonePlayer(p))
		}
	}

	// Join order, ID as tie-break so the ordering is deterministic
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})

	return players, nil
}

func (r *playerRepository) CountByRoom(ctx context.Context, roomCode string) (int, error) {
	if roomCode == "" {
		return 0, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.players {
		if p.RoomCode == roomCode {
			count++
		}
	}

	return count, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	if player == nil || player.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[player.ID]; !exists {
		return domain.ErrPlayerNotFound
	}

	stored := clonePlayer(player)
	r.players[stored.ID] = stored
	if stored.ConnectionID != "" {
		r.byConn[stored.ConnectionID] = stored
	}

	return nil
}

func (r *playerRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.players[id]
	if !exists {
		return nil // idempotent: already gone
	}

	delete(r.players, id)
	delete(r.byConn, player.ConnectionID)

	return nil
}

func (r *playerRepository) DeleteByRoom(ctx context.Context, roomCode string) error {
	if roomCode == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.players {
		if p.RoomCode == roomCode {
			delete(r.players, id)
			delete(r.byConn, p.ConnectionID)
		}
	}

	return nil
}
