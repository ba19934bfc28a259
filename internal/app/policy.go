package app

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConnection
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(rid domain.RoomID, conn core.SignalConnection) BackpressureAction
}

// SimplePolicy kicks slow connections; the client reconnects and rejoins
// with the same member id, which replays the current room state.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, core.SignalConnection) BackpressureAction {
	return KickConnection
}
