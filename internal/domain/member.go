package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxMemberIDLen   = 64
	MaxMemberNameLen = 64
)

type MemberID string

// NormalizeMemberID is the one form a member id is stored and looked up in.
// Over-long ids are rejected rather than cut, so two ids never collapse into one.
func NormalizeMemberID(id MemberID) (MemberID, error) {
	s := strings.TrimSpace(string(id))
	switch {
	case s == "":
		return "", ErrMemberIDEmpty
	case utf8.RuneCountInString(s) > MaxMemberIDLen:
		return "", ErrMemberIDTooLong
	}
	return MemberID(s), nil
}

type ConnectionID string

type Role string

const (
	RoleReviewer Role = "reviewer"
	RoleObserver Role = "observer"
)

// ParseRole maps client input to a role. Anything but "observer" votes.
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleObserver {
		return RoleObserver
	}
	return RoleReviewer
}

type Status string

const (
	StatusThinking Status = "Thinking"
	StatusWatching Status = "Watching"
	StatusVoted    Status = "Voted"
	StatusOffline  Status = "Offline"
)

// DeriveStatus is the only place a member's display status is computed.
func DeriveStatus(role Role, online, hasVoted bool) Status {
	switch {
	case !online:
		return StatusOffline
	case role == RoleObserver:
		return StatusWatching
	case hasVoted:
		return StatusVoted
	default:
		return StatusThinking
	}
}

// Member represents a participant's durable identity within a room.
// The connection is a back-reference; the transport owns it.
type Member struct {
	ID           MemberID     `json:"id"`
	Name         string       `json:"name"`
	ConnectionID ConnectionID `json:"-"`
	Role         Role         `json:"role"`
	Status       Status       `json:"status"`
	Online       bool         `json:"online"`
}

// NewMember avoids raw literals in managers and keeps the seeding rule in one place.
func NewMember(id MemberID, name string, role Role, conn ConnectionID) (*Member, error) {
	id, err := NormalizeMemberID(id)
	if err != nil {
		return nil, err
	}
	name = truncate(strings.TrimSpace(name), MaxMemberNameLen)
	if name == "" {
		return nil, ErrMemberNameEmpty
	}
	role = ParseRole(string(role))
	return &Member{
		ID:           id,
		Name:         name,
		ConnectionID: conn,
		Role:         role,
		Status:       DeriveStatus(role, true, false),
		Online:       true,
	}, nil
}

func (m *Member) CanVote() bool { return m.Role != RoleObserver }

// Refresh recomputes Status from the member's own fields.
func (m *Member) Refresh(hasVoted bool) {
	m.Status = DeriveStatus(m.Role, m.Online, hasVoted)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
