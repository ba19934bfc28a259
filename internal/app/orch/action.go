package orch

import "github.com/dkeye/Estimate/internal/domain"

type ActionType string

const (
	ActionJoin           ActionType = "join"
	ActionSetTopic       ActionType = "set-topic"
	ActionSubmitEstimate ActionType = "submit-estimate"
	ActionChatMessage    ActionType = "chat-message"
	ActionChatHistory    ActionType = "chat-history-request"
	ActionReveal         ActionType = "reveal"
	ActionReset          ActionType = "reset"
)

// Action is one inbound participant request, already decoded by the transport.
type Action struct {
	Type        ActionType      `json:"type"`
	RoomID      domain.RoomID   `json:"roomId"`
	MemberID    domain.MemberID `json:"memberId"`
	DisplayName string          `json:"displayName"`
	Role        string          `json:"role"`
	Text        string          `json:"text"`
	Estimate    domain.Estimate `json:"estimate"`
}
