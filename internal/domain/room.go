// Package domain contains the room entities and the pure rules over them.
// No locking and no transport here.
package domain

import (
	"strings"
	"time"
)

const (
	MaxRoomNameLen = 100
	MaxTopicLen    = 500
)

type RoomID string

// Room is one voting session. It carries no locking; the store serializes access.
type Room struct {
	ID        RoomID                `json:"id"`
	Name      string                `json:"name"`
	Creator   string                `json:"creator"`
	Topic     string                `json:"topic"`
	Members   []*Member             `json:"members"`
	Votes     map[MemberID]Estimate `json:"estimates"`
	Revealed  bool                  `json:"revealed"`
	Messages  []ChatMessage         `json:"messages"`
	Analytics Analytics             `json:"analytics"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// NewRoom validates the names and builds an empty session.
func NewRoom(id RoomID, name, creator string, now time.Time) (*Room, error) {
	name = truncate(strings.TrimSpace(name), MaxRoomNameLen)
	if name == "" {
		return nil, ErrRoomNameEmpty
	}
	creator = truncate(strings.TrimSpace(creator), MaxMemberNameLen)
	if creator == "" {
		return nil, ErrCreatorNameEmpty
	}
	return &Room{
		ID:        id,
		Name:      name,
		Creator:   creator,
		Members:   make([]*Member, 0),
		Votes:     make(map[MemberID]Estimate),
		Messages:  make([]ChatMessage, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Room) Member(id MemberID) (*Member, bool) {
	for _, m := range r.Members {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) MemberByConnection(conn ConnectionID) (*Member, bool) {
	if conn == "" {
		return nil, false
	}
	for _, m := range r.Members {
		if m.ConnectionID == conn {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) HasVoted(id MemberID) bool {
	_, ok := r.Votes[id]
	return ok
}

func (r *Room) OnlineCount() int {
	n := 0
	for _, m := range r.Members {
		if m.Online {
			n++
		}
	}
	return n
}

// VisibleVotes hides estimates until the round is revealed.
func (r *Room) VisibleVotes() map[MemberID]Estimate {
	if !r.Revealed {
		return map[MemberID]Estimate{}
	}
	return cloneVotes(r.Votes)
}

// MembersSnapshot copies the member list so it can leave the room's lock.
func (r *Room) MembersSnapshot() []Member {
	out := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		out = append(out, *m)
	}
	return out
}

// Clone returns a deep copy safe to mutate independently.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Members = make([]*Member, 0, len(r.Members))
	for _, m := range r.Members {
		mc := *m
		cp.Members = append(cp.Members, &mc)
	}
	cp.Votes = cloneVotes(r.Votes)
	cp.Messages = append(make([]ChatMessage, 0, len(r.Messages)), r.Messages...)
	return &cp
}

// Public is the view served over REST: estimates stay hidden before reveal.
func (r *Room) Public() *Room {
	cp := r.Clone()
	cp.Votes = r.VisibleVotes()
	return cp
}

func cloneVotes(v map[MemberID]Estimate) map[MemberID]Estimate {
	out := make(map[MemberID]Estimate, len(v))
	for k, e := range v {
		out[k] = e
	}
	return out
}

// CleanTopic trims and caps a topic. An empty result is invalid.
func CleanTopic(text string) string {
	return truncate(strings.TrimSpace(text), MaxTopicLen)
}
