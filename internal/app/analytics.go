package app

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

// Analytics exposes the per-room counters read-only; only Voting.Reveal
// moves them.
type Analytics struct {
	store core.RoomStore
}

func NewAnalytics(store core.RoomStore) *Analytics {
	return &Analytics{store: store}
}

func (a *Analytics) Get(rid domain.RoomID) (domain.Analytics, error) {
	r, err := a.store.GetRoom(rid)
	if err != nil {
		return domain.Analytics{}, err
	}
	return r.Analytics, nil
}
