package orch

import "github.com/dkeye/Estimate/internal/domain"

const (
	EventRoomUpdated       = "room-updated"
	EventTopicUpdated      = "topic-updated"
	EventEstimateSubmitted = "estimate-submitted"
	EventChatMessage       = "chat-message"
	EventChatHistory       = "chat-history"
	EventEstimatesRevealed = "estimates-revealed"
	EventEstimatesReset    = "estimates-reset"
	EventError             = "error"
)

type RoomUpdated struct {
	Type      string                              `json:"type"`
	RoomID    domain.RoomID                       `json:"roomId"`
	Members   []domain.Member                     `json:"members"`
	Estimates map[domain.MemberID]domain.Estimate `json:"estimates"`
	Topic     string                              `json:"topic"`
	Revealed  bool                                `json:"revealed"`
}

type TopicUpdated struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Topic  string        `json:"topic"`
}

type EstimateSubmitted struct {
	Type          string          `json:"type"`
	RoomID        domain.RoomID   `json:"roomId"`
	MemberID      domain.MemberID `json:"memberId"`
	Members       []domain.Member `json:"members"`
	EstimateCount int             `json:"estimateCount"`
}

type ChatMessage struct {
	Type    string             `json:"type"`
	RoomID  domain.RoomID      `json:"roomId"`
	Message domain.ChatMessage `json:"message"`
}

type ChatHistory struct {
	Type     string               `json:"type"`
	RoomID   domain.RoomID        `json:"roomId"`
	Messages []domain.ChatMessage `json:"messages"`
}

type EstimatesRevealed struct {
	Type       string                              `json:"type"`
	RoomID     domain.RoomID                       `json:"roomId"`
	Estimates  map[domain.MemberID]domain.Estimate `json:"estimates"`
	Members    []domain.Member                     `json:"members"`
	Average    float64                             `json:"average"`
	Consensus  bool                                `json:"consensus"`
	TotalVotes int                                 `json:"totalVotes"`
}

type EstimatesReset struct {
	Type    string          `json:"type"`
	RoomID  domain.RoomID   `json:"roomId"`
	Members []domain.Member `json:"members"`
}

type Error struct {
	Type    string     `json:"type"`
	Action  ActionType `json:"action,omitempty"`
	Message string     `json:"message"`
}
