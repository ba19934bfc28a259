// Package orch is the broadcast gateway: it routes participant actions to the
// room managers and fans the resulting notifications out to the room.
package orch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Estimate/internal/app"
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/dkeye/Estimate/internal/id"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry   *app.Registry
	Rooms      core.RoomStore
	Membership *app.Membership
	Voting     *app.Voting
	Chat       *app.Chat
	Policy     app.Policy

	lanesMu sync.Mutex
	lanes   map[domain.RoomID]*sync.Mutex
}

func New(reg *app.Registry, rooms core.RoomStore, ids *id.Generator, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Membership: app.NewMembership(rooms),
		Voting:     app.NewVoting(rooms, ids),
		Chat:       app.NewChat(rooms, ids),
		Policy:     policy,
	}
}

// lockLane serializes route, mutate and fan-out for one room so every
// connection sees that room's notifications in application order.
// Lanes exist only for rooms the store knows; pruneLanes drops the rest.
func (o *Orchestrator) lockLane(rid domain.RoomID) (unlock func()) {
	o.lanesMu.Lock()
	if o.lanes == nil {
		o.lanes = make(map[domain.RoomID]*sync.Mutex)
	}
	l, ok := o.lanes[rid]
	if !ok {
		l = &sync.Mutex{}
		o.lanes[rid] = l
	}
	o.lanesMu.Unlock()

	l.Lock()
	return l.Unlock
}

func (o *Orchestrator) pruneLanes() {
	live := make(map[domain.RoomID]struct{})
	for _, rid := range o.Rooms.IDs() {
		live[rid] = struct{}{}
	}
	o.lanesMu.Lock()
	defer o.lanesMu.Unlock()
	for rid := range o.lanes {
		if _, ok := live[rid]; !ok {
			delete(o.lanes, rid)
		}
	}
}

// Dispatch applies one inbound action on behalf of connection cid.
func (o *Orchestrator) Dispatch(cid domain.ConnectionID, a Action) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "orch").Str("conn", string(cid)).Str("action", string(a.Type)).Interface("panic", r).Msg("dispatch panicked")
			o.fail(cid, a.Type, fmt.Errorf("%w: %v", domain.ErrInternal, r))
		}
	}()

	if a.RoomID == "" {
		o.fail(cid, a.Type, domain.ErrRoomIDEmpty)
		return
	}
	if _, err := o.Rooms.GetRoom(a.RoomID); err != nil {
		o.fail(cid, a.Type, err)
		return
	}
	defer o.lockLane(a.RoomID)()

	var err error
	switch a.Type {
	case ActionJoin:
		err = o.join(cid, a)
	case ActionSetTopic:
		err = o.setTopic(a)
	case ActionSubmitEstimate:
		err = o.submitEstimate(a)
	case ActionChatMessage:
		err = o.chatMessage(a)
	case ActionChatHistory:
		err = o.chatHistory(cid, a)
	case ActionReveal:
		err = o.reveal(a)
	case ActionReset:
		err = o.reset(a)
	default:
		err = domain.ErrUnknownAction
	}
	if err != nil {
		o.fail(cid, a.Type, err)
	}
}

// fail reports err to the originating connection only.
func (o *Orchestrator) fail(cid domain.ConnectionID, action ActionType, err error) {
	ev := log.Warn()
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrValidation) {
		ev = log.Error()
	}
	ev.Err(err).Str("module", "orch").Str("conn", string(cid)).Str("action", string(action)).Msg("action failed")

	o.Reply(cid, Error{Type: EventError, Action: action, Message: domain.PublicMessage(err)})
}

// Reply sends v to a single connection.
func (o *Orchestrator) Reply(cid domain.ConnectionID, v any) {
	sig, ok := o.Registry.Get(cid)
	if !ok {
		return
	}
	frame, err := encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("reply marshal")
		return
	}
	if err := sig.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(cid)).Msg("reply dropped")
	}
}

// Broadcast fans v out to every connection subscribed to rid.
func (o *Orchestrator) Broadcast(rid domain.RoomID, v any) core.PublishResult {
	res := core.PublishResult{}
	frame, err := encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(rid)).Msg("broadcast marshal")
		return res
	}
	for _, sig := range o.Registry.ConnectionsOf(rid) {
		if err := sig.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, sig)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "orch").Str("room", string(rid)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	o.applyPolicy(rid, res)
	return res
}

func (o *Orchestrator) applyPolicy(rid domain.RoomID, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(rid, slow) {
		case app.KickConnection:
			log.Warn().Str("module", "orch").Str("room", string(rid)).Str("conn", string(slow.ID())).Msg("kicking slow connection")
			o.Registry.Cancel(slow.ID())
			slow.Close()
		case app.DropFrame, app.NoAction:
		}
	}
}

// EvictIdle removes idle rooms. Every pass also forgets lanes of rooms
// that are gone, however they went.
func (o *Orchestrator) EvictIdle(now time.Time, ttl time.Duration) int {
	n := o.Rooms.EvictIdle(now, ttl)
	o.pruneLanes()
	return n
}

func encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode notification: %v", domain.ErrInternal, err)
	}
	return b, nil
}
