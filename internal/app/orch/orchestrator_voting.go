package orch

import (
	"github.com/dkeye/Estimate/internal/domain"
)

func (o *Orchestrator) setTopic(a Action) error {
	topic, err := o.Voting.SetTopic(a.RoomID, a.Text)
	if err != nil {
		return err
	}
	o.Broadcast(a.RoomID, TopicUpdated{Type: EventTopicUpdated, RoomID: a.RoomID, Topic: topic})
	return nil
}

// submitEstimate never broadcasts the value itself, only who has voted.
func (o *Orchestrator) submitEstimate(a Action) error {
	res, err := o.Voting.SubmitEstimate(a.RoomID, a.MemberID, a.Estimate)
	if err != nil {
		return err
	}
	o.Broadcast(a.RoomID, EstimateSubmitted{
		Type:          EventEstimateSubmitted,
		RoomID:        a.RoomID,
		MemberID:      res.MemberID,
		Members:       res.Members,
		EstimateCount: res.Count,
	})
	return nil
}

func (o *Orchestrator) reveal(a Action) error {
	res, err := o.Voting.Reveal(a.RoomID, a.MemberID)
	if err != nil {
		return err
	}
	o.Broadcast(a.RoomID, EstimatesRevealed{
		Type:       EventEstimatesRevealed,
		RoomID:     a.RoomID,
		Estimates:  res.Votes,
		Members:    res.Members,
		Average:    res.Average,
		Consensus:  res.Consensus,
		TotalVotes: res.TotalVotes,
	})
	if res.Message != nil {
		o.Broadcast(a.RoomID, ChatMessage{Type: EventChatMessage, RoomID: a.RoomID, Message: *res.Message})
	}
	return nil
}

func (o *Orchestrator) reset(a Action) error {
	res, err := o.Voting.Reset(a.RoomID)
	if err != nil {
		return err
	}
	o.Broadcast(a.RoomID, EstimatesReset{Type: EventEstimatesReset, RoomID: a.RoomID, Members: res.Members})
	return nil
}

func (o *Orchestrator) chatMessage(a Action) error {
	msg, err := o.Chat.Append(a.RoomID, a.MemberID, a.DisplayName, a.Text)
	if err != nil || msg == nil {
		return err
	}
	o.Broadcast(a.RoomID, ChatMessage{Type: EventChatMessage, RoomID: a.RoomID, Message: *msg})
	return nil
}

func (o *Orchestrator) chatHistory(cid domain.ConnectionID, a Action) error {
	history, err := o.Chat.History(a.RoomID, domain.HistoryReplay)
	if err != nil {
		return err
	}
	o.Reply(cid, ChatHistory{Type: EventChatHistory, RoomID: a.RoomID, Messages: history})
	return nil
}
