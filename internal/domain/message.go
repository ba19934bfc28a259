package domain

import (
	"strings"
	"time"
)

const (
	MaxMessageLen     = 500
	MaxStoredMessages = 200
	HistoryReplay     = 100
)

// ChatMessage is immutable once appended to a room.
type ChatMessage struct {
	ID          string    `json:"id"`
	MemberID    MemberID  `json:"memberId"`
	DisplayName string    `json:"displayName"`
	Text        string    `json:"text"`
	System      bool      `json:"system,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CleanText trims and caps chat text. An empty result means "do not post".
func CleanText(text string) string {
	return truncate(strings.TrimSpace(text), MaxMessageLen)
}

// AppendMessage adds msg and drops the oldest entries beyond MaxStoredMessages.
func (r *Room) AppendMessage(msg ChatMessage) {
	r.Messages = append(r.Messages, msg)
	if over := len(r.Messages) - MaxStoredMessages; over > 0 {
		kept := make([]ChatMessage, MaxStoredMessages)
		copy(kept, r.Messages[over:])
		r.Messages = kept
	}
}

// History returns up to limit of the most recent messages, oldest first.
func (r *Room) History(limit int) []ChatMessage {
	if limit <= 0 || limit > MaxStoredMessages {
		limit = HistoryReplay
	}
	from := len(r.Messages) - limit
	if from < 0 {
		from = 0
	}
	return append(make([]ChatMessage, 0, len(r.Messages)-from), r.Messages[from:]...)
}
