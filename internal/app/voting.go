package app

import (
	"fmt"
	"time"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/dkeye/Estimate/internal/id"
	"github.com/rs/zerolog/log"
)

type VoteProgress struct {
	MemberID domain.MemberID
	Members  []domain.Member
	Count    int
}

type RevealResult struct {
	Votes   map[domain.MemberID]domain.Estimate
	Members []domain.Member
	domain.Tally
	// Message is the reveal announcement, nil when the revealer is not a member.
	Message *domain.ChatMessage
}

type ResetResult struct {
	Members []domain.Member
}

// Voting is the per-room round state machine: Collecting -> Revealed -> Collecting.
// Late estimates after a reveal are accepted and overwrite the previous value.
type Voting struct {
	store core.RoomStore
	ids   *id.Generator
	now   func() time.Time
}

func NewVoting(store core.RoomStore, ids *id.Generator) *Voting {
	return &Voting{store: store, ids: ids, now: time.Now}
}

func (v *Voting) SubmitEstimate(rid domain.RoomID, mid domain.MemberID, est domain.Estimate) (VoteProgress, error) {
	mid, err := domain.NormalizeMemberID(mid)
	if err != nil {
		return VoteProgress{}, err
	}
	est, err = est.Normalize()
	if err != nil {
		return VoteProgress{}, err
	}
	var res VoteProgress
	err = v.store.Update(rid, func(r *domain.Room) error {
		member, ok := r.Member(mid)
		if !ok {
			return domain.ErrMemberNotInRoom
		}
		if !member.CanVote() {
			return domain.ErrObserverVote
		}
		r.Votes[mid] = est
		member.Refresh(true)
		res = VoteProgress{MemberID: mid, Members: r.MembersSnapshot(), Count: len(r.Votes)}
		return nil
	})
	if err != nil {
		return VoteProgress{}, err
	}
	log.Debug().Str("module", "app.voting").Str("room", string(rid)).Str("member", string(mid)).Int("votes", res.Count).Msg("estimate submitted")
	return res, nil
}

// Reveal opens the votes and counts the round. Repeated reveals without a
// reset resend the same tally but still count as rounds.
func (v *Voting) Reveal(rid domain.RoomID, revealer domain.MemberID) (RevealResult, error) {
	// An invalid revealer id still reveals; it just matches no member.
	revealer, _ = domain.NormalizeMemberID(revealer)
	var res RevealResult
	err := v.store.Update(rid, func(r *domain.Room) error {
		r.Revealed = true
		tally := domain.Summarize(r.Votes)

		var msg *domain.ChatMessage
		if member, ok := r.Member(revealer); ok {
			m := domain.ChatMessage{
				ID:          v.ids.Next(),
				MemberID:    member.ID,
				DisplayName: member.Name,
				Text:        fmt.Sprintf("%s revealed the estimates", member.Name),
				System:      true,
				CreatedAt:   v.now(),
			}
			r.AppendMessage(m)
			msg = &m
		}
		r.Analytics.Record(tally.Consensus)

		res = RevealResult{
			Votes:   r.VisibleVotes(),
			Members: r.MembersSnapshot(),
			Tally:   tally,
			Message: msg,
		}
		return nil
	})
	if err != nil {
		return RevealResult{}, err
	}
	log.Info().Str("module", "app.voting").Str("room", string(rid)).Float64("average", res.Average).Bool("consensus", res.Consensus).Int("total_votes", res.TotalVotes).Msg("revealed")
	return res, nil
}

func (v *Voting) Reset(rid domain.RoomID) (ResetResult, error) {
	var res ResetResult
	err := v.store.Update(rid, func(r *domain.Room) error {
		r.Votes = make(map[domain.MemberID]domain.Estimate)
		r.Revealed = false
		r.Topic = ""
		for _, m := range r.Members {
			m.Refresh(false)
		}
		res = ResetResult{Members: r.MembersSnapshot()}
		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}
	log.Info().Str("module", "app.voting").Str("room", string(rid)).Msg("round reset")
	return res, nil
}

// SetTopic is allowed in any state and leaves votes untouched.
func (v *Voting) SetTopic(rid domain.RoomID, text string) (string, error) {
	topic := domain.CleanTopic(text)
	if topic == "" {
		return "", domain.ErrTopicEmpty
	}
	err := v.store.Update(rid, func(r *domain.Room) error {
		r.Topic = topic
		return nil
	})
	if err != nil {
		return "", err
	}
	return topic, nil
}
