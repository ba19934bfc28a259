package orch

import (
	"github.com/dkeye/Estimate/internal/app"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

func roomUpdated(snap app.MembershipSnapshot) RoomUpdated {
	return RoomUpdated{
		Type:      EventRoomUpdated,
		RoomID:    snap.RoomID,
		Members:   snap.Members,
		Estimates: snap.Votes,
		Topic:     snap.Topic,
		Revealed:  snap.Revealed,
	}
}

func (o *Orchestrator) join(cid domain.ConnectionID, a Action) error {
	mid := a.MemberID
	if mid == "" {
		mid = domain.MemberID(o.Registry.ClientToken(cid))
	}
	snap, err := o.Membership.Join(a.RoomID, app.JoinRequest{
		MemberID:     mid,
		DisplayName:  a.DisplayName,
		Role:         domain.ParseRole(a.Role),
		ConnectionID: cid,
	})
	if err != nil {
		return err
	}
	o.Registry.Subscribe(cid, a.RoomID)
	o.Broadcast(a.RoomID, roomUpdated(snap))

	if len(snap.History) > 0 {
		o.Reply(cid, ChatHistory{Type: EventChatHistory, RoomID: a.RoomID, Messages: snap.History})
	}
	log.Info().Str("module", "orch").Str("conn", string(cid)).Str("room", string(a.RoomID)).Str("member", string(mid)).Msg("join")
	return nil
}

// Disconnect is reported by the transport when cid goes away. Every room is
// scanned, holding at most one room lane at a time.
func (o *Orchestrator) Disconnect(cid domain.ConnectionID) {
	snaps := o.Membership.Disconnect(cid, o.lockLane, func(snap app.MembershipSnapshot) {
		o.Broadcast(snap.RoomID, roomUpdated(snap))
	})
	o.Registry.Unbind(cid)
	log.Info().Str("module", "orch").Str("conn", string(cid)).Int("rooms", len(snaps)).Msg("disconnect")
}
