package app

import (
	"context"
	"sync"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// connEntry is what the transport registered for one live connection.
type connEntry struct {
	Signal      core.SignalConnection
	ClientToken string
	Cancel      context.CancelFunc
	Rooms       map[domain.RoomID]struct{}
}

// Registry maps live connections to the rooms they receive notifications for.
// Rooms own members; the registry only owns subscriptions.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnectionID]*connEntry),
	}
}

func (r *Registry) Bind(sig core.SignalConnection, clientToken string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sig.ID()] = &connEntry{
		Signal:      sig,
		ClientToken: clientToken,
		Cancel:      cancel,
		Rooms:       make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(sig.ID())).Msg("bound connection")
}

func (r *Registry) Get(cid domain.ConnectionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.Signal, true
	}
	return nil, false
}

func (r *Registry) ClientToken(cid domain.ConnectionID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.ClientToken
	}
	return ""
}

// Subscribe adds rid to the rooms cid receives broadcasts for.
func (r *Registry) Subscribe(cid domain.ConnectionID, rid domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return false
	}
	if _, already := e.Rooms[rid]; !already {
		e.Rooms[rid] = struct{}{}
		log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("room", string(rid)).Msg("subscribed")
	}
	return true
}

func (r *Registry) ConnectionsOf(rid domain.RoomID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0)
	for _, e := range r.conns {
		if _, ok := e.Rooms[rid]; ok {
			out = append(out, e.Signal)
		}
	}
	return out
}

func (r *Registry) Unbind(cid domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, cid)
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Msg("unbind connection")
}

// Cancel stops the connection's pumps. The transport reports the
// resulting teardown through the gateway's Disconnect.
func (r *Registry) Cancel(cid domain.ConnectionID) bool {
	r.mu.RLock()
	e, ok := r.conns[cid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Msg("canceled connection")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
