package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/guessit/internal/domain"
)

// roomRepository owns its stored rooms outright: reads hand out a
// detached clone and Update replaces the stored one, so a caller
// mutating its copy never races another reader.
type roomRepository struct {
	rooms          map[string]*domain.Room // code -> Room
	lastAccess     map[string]time.Time    // code -> last access time
	capacity       uint
	idleRoomExpiry time.Duration
	mu             *sync.RWMutex
}

func NewRoomRepository(capacity uint, idleRoomExpiry time.Duration) domain.RoomRepository {
	if capacity == 0 {
		capacity = 100
	}
	if idleRoomExpiry == 0 {
		idleRoomExpiry = 30 * time.Minute
	}

	return &roomRepository{
		rooms:          make(map[string]*domain.Room),
		lastAccess:     make(map[string]time.Time),
		capacity:       capacity,
		idleRoomExpiry: idleRoomExpiry,
		mu:             &sync.RWMutex{},
	}
}

func cloneRoom(room *domain.Room) *domain.Room {
	clone := *room
	clone.Questions = append([]string(nil), room.Questions...)
	return &clone
}

func (r *roomRepository) touch(code string) {
	r.lastAccess[code] = time.Now()
}

func (r *roomRepository) evictIdle() {
	cutoff := time.Now().Add(-r.idleRoomExpiry)
	for code, last := range r.lastAccess {
		if last.Before(cutoff) {
			delete(r.rooms, code)
			delete(r.lastAccess, code)
		}
	}
}

// enforceCapacity ensures we don't exceed capacity by removing oldest-accessed rooms.
func (r *roomRepository) enforceCapacity() {
	if uint(len(r.rooms)) <= r.capacity {
		return
	}

	type entry struct {
		code string
		time time.Time
	}
	var entries []entry
	for code, t := range r.lastAccess {
		entries = append(entries, entry{code, t})
	}
	for i := 0; i < len(entries)-int(r.capacity); i++ {
		oldest := entries[i]
		delete(r.rooms, oldest.code)
		delete(r.lastAccess, oldest.code)
	}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room == nil || room.Code == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle()

	if _, exists := r.rooms[room.Code]; exists {
		return domain.ErrRoomAlreadyExists
	}

	r.enforceCapacity()

	r.rooms[room.Code] = cloneRoom(room)
	r.touch(room.Code)

	return nil
}

func (r *roomRepository) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	room, exists := r.rooms[code]
	if exists {
		room = cloneRoom(room)
	}
	r.mu.RUnlock()
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	r.mu.Lock()
	r.touch(code)
	r.mu.Unlock()

	return room, nil
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	if room == nil || room.Code == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.Code]; !exists {
		return domain.ErrRoomNotFound
	}

	r.rooms[room.Code] = cloneRoom(room)
	r.touch(room.Code)

	return nil
}

// Delete removes a room by code (idempotent).
func (r *roomRepository) Delete(ctx context.Context, code string) error {
	if code == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, code)
	delete(r.lastAccess, code)

	return nil
}
