package core

import (
	"time"

	"github.com/dkeye/Estimate/internal/domain"
)

// RoomInfo is a read-only listing entry.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	Name        string        `json:"name"`
	MemberCount int           `json:"memberCount"`
	OnlineCount int           `json:"onlineCount"`
}

// RoomStore exclusively owns every room record.
// Managers mutate rooms only through Update; readers get copies.
type RoomStore interface {
	CreateRoom(name, creator string) (*domain.Room, error)
	GetRoom(id domain.RoomID) (*domain.Room, error)
	// Update runs fn against a private copy of the room under the room's lock
	// and commits the copy only when fn returns nil.
	Update(id domain.RoomID, fn func(*domain.Room) error) error
	IDs() []domain.RoomID
	List() []RoomInfo
	// EvictIdle drops rooms with nobody online that were not touched for ttl.
	EvictIdle(now time.Time, ttl time.Duration) int
}
