package core

import "github.com/dkeye/Estimate/internal/domain"

// Frame is one encoded outbound notification.
type Frame []byte

// SignalConnection abstracts the messaging transport of one participant.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() domain.ConnectionID
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the gateway.
type PublishResult struct {
	SendTo  int
	Dropped []SignalConnection
}
