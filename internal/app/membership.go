package app

import (
	"errors"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// errUnchanged aborts a store update that found nothing to do.
var errUnchanged = errors.New("unchanged")

type JoinRequest struct {
	MemberID     domain.MemberID
	DisplayName  string
	Role         domain.Role
	ConnectionID domain.ConnectionID
}

// MembershipSnapshot is what a joiner needs to reconcile with the room.
// Votes are only filled after a reveal.
type MembershipSnapshot struct {
	RoomID   domain.RoomID
	Members  []domain.Member
	Votes    map[domain.MemberID]domain.Estimate
	Topic    string
	Revealed bool
	History  []domain.ChatMessage
}

func snapshotOf(r *domain.Room) MembershipSnapshot {
	return MembershipSnapshot{
		RoomID:   r.ID,
		Members:  r.MembersSnapshot(),
		Votes:    r.VisibleVotes(),
		Topic:    r.Topic,
		Revealed: r.Revealed,
		History:  r.History(domain.HistoryReplay),
	}
}

// Membership tracks who is in a room and whether they are reachable.
type Membership struct {
	store core.RoomStore
}

func NewMembership(store core.RoomStore) *Membership {
	return &Membership{store: store}
}

// Join adds a member or re-attaches an existing one to a new connection.
// A rejoin keeps role, name, position and any vote, but shows Thinking/Watching.
func (m *Membership) Join(rid domain.RoomID, req JoinRequest) (MembershipSnapshot, error) {
	mid, err := domain.NormalizeMemberID(req.MemberID)
	if err != nil {
		return MembershipSnapshot{}, err
	}

	var snap MembershipSnapshot
	err = m.store.Update(rid, func(r *domain.Room) error {
		if member, ok := r.Member(mid); ok {
			member.ConnectionID = req.ConnectionID
			member.Online = true
			member.Refresh(false)
		} else {
			member, err := domain.NewMember(mid, req.DisplayName, req.Role, req.ConnectionID)
			if err != nil {
				return err
			}
			r.Members = append(r.Members, member)
		}
		snap = snapshotOf(r)
		return nil
	})
	if err != nil {
		return MembershipSnapshot{}, err
	}
	log.Info().Str("module", "app.membership").Str("room", string(rid)).Str("member", string(mid)).Str("conn", string(req.ConnectionID)).Msg("joined")
	return snap, nil
}

// DisconnectIn marks the member bound to cid offline in one room.
// It reports false when no member of the room holds that connection.
func (m *Membership) DisconnectIn(rid domain.RoomID, cid domain.ConnectionID) (MembershipSnapshot, bool, error) {
	var snap MembershipSnapshot
	err := m.store.Update(rid, func(r *domain.Room) error {
		member, ok := r.MemberByConnection(cid)
		if !ok || !member.Online {
			return errUnchanged
		}
		member.Online = false
		member.Refresh(r.HasVoted(member.ID))
		snap = snapshotOf(r)
		return nil
	})
	switch {
	case errors.Is(err, errUnchanged), errors.Is(err, domain.ErrNotFound):
		return MembershipSnapshot{}, false, nil
	case err != nil:
		return MembershipSnapshot{}, false, err
	}
	log.Info().Str("module", "app.membership").Str("room", string(rid)).Str("conn", string(cid)).Msg("member offline")
	return snap, true, nil
}

// RoomLock holds a caller-side lock for one room until the returned func runs.
type RoomLock func(rid domain.RoomID) (unlock func())

// Disconnect scans every room, one at a time, for members bound to cid.
// When lock is set it is held around each room's update and notify, so
// the change and its notification stay ordered with other work on that room.
// Both lock and notify may be nil.
func (m *Membership) Disconnect(cid domain.ConnectionID, lock RoomLock, notify func(MembershipSnapshot)) []MembershipSnapshot {
	out := make([]MembershipSnapshot, 0)
	for _, rid := range m.store.IDs() {
		if snap, ok := m.disconnectLocked(rid, cid, lock, notify); ok {
			out = append(out, snap)
		}
	}
	return out
}

func (m *Membership) disconnectLocked(rid domain.RoomID, cid domain.ConnectionID, lock RoomLock, notify func(MembershipSnapshot)) (MembershipSnapshot, bool) {
	if lock != nil {
		defer lock(rid)()
	}
	snap, changed, err := m.DisconnectIn(rid, cid)
	if err != nil {
		log.Error().Err(err).Str("module", "app.membership").Str("room", string(rid)).Msg("disconnect failed")
		return MembershipSnapshot{}, false
	}
	if !changed {
		return MembershipSnapshot{}, false
	}
	if notify != nil {
		notify(snap)
	}
	return snap, true
}
