package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrInternal   = errors.New("internal error")
)

var (
	ErrRoomNotFound     = classify(ErrNotFound, "room not found")
	ErrRoomNameEmpty    = classify(ErrValidation, "room name is required")
	ErrCreatorNameEmpty = classify(ErrValidation, "creator name is required")
	ErrMemberIDEmpty    = classify(ErrValidation, "member id is required")
	ErrMemberIDTooLong  = classify(ErrValidation, "member id is too long")
	ErrMemberNameEmpty  = classify(ErrValidation, "display name is required")
	ErrMemberNotInRoom  = classify(ErrValidation, "member is not part of this room")
	ErrObserverVote     = classify(ErrValidation, "observers cannot vote")
	ErrEstimateEmpty    = classify(ErrValidation, "estimate is required")
	ErrTopicEmpty       = classify(ErrValidation, "topic is required")
	ErrRoomIDEmpty      = classify(ErrValidation, "room id is required")
	ErrUnknownAction    = classify(ErrValidation, "unknown action")
)

// classified is a sentinel that reports its class through errors.Is
// while keeping a message fit for the originating participant.
type classified struct {
	class error
	msg   string
}

func classify(class error, msg string) error { return &classified{class: class, msg: msg} }

func (e *classified) Error() string        { return e.msg }
func (e *classified) Is(target error) bool { return target == e.class }

// PublicMessage renders err for the participant that caused it.
// Internal failures never leak their details.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation):
		msg := err.Error()
		// fmt.Errorf("%w: detail", ErrValidation) reads better without the class prefix.
		for _, prefix := range []string{ErrValidation.Error() + ": ", ErrNotFound.Error() + ": "} {
			msg = strings.TrimPrefix(msg, prefix)
		}
		return msg
	default:
		return "internal error"
	}
}
