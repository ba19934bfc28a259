package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Estimate/internal/domain"
	"github.com/dkeye/Estimate/internal/id"
	"github.com/rs/zerolog/log"
)

const maxIDAttempts = 5

// roomEntry guards one room record. Writers swap the pointer after a
// successful update, so a reader holding the lock sees a complete state.
type roomEntry struct {
	mu      sync.Mutex
	room    *domain.Room
	deleted bool
}

// memoryStore is a threadsafe in-memory RoomStore.
// Lock order is store before entry; Update holds only the entry lock.
type memoryStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
	newID func() string
	now   func() time.Time
}

type StoreOption func(*memoryStore)

func WithIDSource(f func() string) StoreOption {
	return func(s *memoryStore) { s.newID = f }
}

func WithClock(f func() time.Time) StoreOption {
	return func(s *memoryStore) { s.now = f }
}

func NewMemoryStore(opts ...StoreOption) RoomStore {
	s := &memoryStore{
		rooms: make(map[domain.RoomID]*roomEntry),
		newID: id.RoomID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *memoryStore) CreateRoom(name, creator string) (*domain.Room, error) {
	room, err := domain.NewRoom("", name, creator, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for range maxIDAttempts {
		rid := domain.RoomID(s.newID())
		if _, taken := s.rooms[rid]; taken {
			log.Warn().Str("module", "core.store").Str("room_id", string(rid)).Msg("room id collision, retrying")
			continue
		}
		room.ID = rid
		s.rooms[rid] = &roomEntry{room: room}
		log.Info().Str("module", "core.store").Str("room_id", string(rid)).Str("name", room.Name).Msg("room created")
		return room.Clone(), nil
	}
	return nil, fmt.Errorf("%w: could not allocate a room id", domain.ErrInternal)
}

func (s *memoryStore) entry(rid domain.RoomID) (*roomEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[rid]
	return e, ok
}

func (s *memoryStore) GetRoom(rid domain.RoomID) (*domain.Room, error) {
	e, ok := s.entry(rid)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, domain.ErrRoomNotFound
	}
	return e.room.Clone(), nil
}

func (s *memoryStore) Update(rid domain.RoomID, fn func(*domain.Room) error) (err error) {
	e, ok := s.entry(rid)
	if !ok {
		return domain.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return domain.ErrRoomNotFound
	}

	draft := e.room.Clone()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "core.store").Str("room_id", string(rid)).Interface("panic", r).Msg("room update panicked, state kept")
			err = fmt.Errorf("%w: %v", domain.ErrInternal, r)
		}
	}()
	if err := fn(draft); err != nil {
		return err
	}
	draft.UpdatedAt = s.now()
	e.room = draft
	return nil
}

func (s *memoryStore) IDs() []domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(s.rooms))
	for rid := range s.rooms {
		out = append(out, rid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *memoryStore) List() []RoomInfo {
	out := make([]RoomInfo, 0)
	for _, rid := range s.IDs() {
		room, err := s.GetRoom(rid)
		if err != nil {
			continue
		}
		out = append(out, RoomInfo{
			ID:          room.ID,
			Name:        room.Name,
			MemberCount: len(room.Members),
			OnlineCount: room.OnlineCount(),
		})
	}
	return out
}

func (s *memoryStore) EvictIdle(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for rid, e := range s.rooms {
		e.mu.Lock()
		idle := e.room.OnlineCount() == 0 && now.Sub(e.room.UpdatedAt) >= ttl
		if idle {
			e.deleted = true
		}
		e.mu.Unlock()
		if idle {
			delete(s.rooms, rid)
			count++
		}
	}
	if count > 0 {
		log.Info().Str("module", "core.store").Int("evicted", count).Msg("idle rooms evicted")
	}
	return count
}
