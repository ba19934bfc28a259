package app

import (
	"time"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/dkeye/Estimate/internal/id"
)

// Chat is the bounded per-room message log.
type Chat struct {
	store core.RoomStore
	ids   *id.Generator
	now   func() time.Time
}

func NewChat(store core.RoomStore, ids *id.Generator) *Chat {
	return &Chat{store: store, ids: ids, now: time.Now}
}

// Append stores a message and returns it. Blank text is ignored: the
// returned message is nil and so is the error, unless the room is missing.
func (c *Chat) Append(rid domain.RoomID, mid domain.MemberID, displayName, text string) (*domain.ChatMessage, error) {
	mid, err := domain.NormalizeMemberID(mid)
	if err != nil {
		return nil, err
	}
	clean := domain.CleanText(text)
	if clean == "" {
		_, err = c.store.GetRoom(rid)
		return nil, err
	}

	var msg domain.ChatMessage
	err = c.store.Update(rid, func(r *domain.Room) error {
		name := displayName
		if name == "" {
			if member, ok := r.Member(mid); ok {
				name = member.Name
			} else {
				name = string(mid)
			}
		}
		msg = domain.ChatMessage{
			ID:          c.ids.Next(),
			MemberID:    mid,
			DisplayName: name,
			Text:        clean,
			CreatedAt:   c.now(),
		}
		r.AppendMessage(msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns the latest limit messages in chronological order.
func (c *Chat) History(rid domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	r, err := c.store.GetRoom(rid)
	if err != nil {
		return nil, err
	}
	return r.History(limit), nil
}
