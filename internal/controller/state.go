// Package controller owns session state: login, active room and campaign,
// message history, and the displayed outreach sequence. State changes flow
// through pure transition functions so every rule is testable without a UI
// harness; the Controller in controller.go wires those transitions to the
// transport and the backend API.
package controller

import (
	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/chat"
	"github.com/helix-dev/helix/internal/reply"
)

// State is the single source of truth consumed by the render layer.
// A State with LoggedIn == false has no meaningful room, campaign, or
// message content.
type State struct {
	LoggedIn         bool
	Username         string
	ActiveRoomID     string
	ActiveCampaignID int64

	Rooms     []chat.Room
	Campaigns []api.Campaign
	Messages  []chat.Message
	Sequence  *reply.Sequence

	// Banner holds a non-fatal connection/transport notice for display.
	Banner string
}

// Action is a state transition applied by Reduce.
type Action interface{ isAction() }

type loggedIn struct {
	username   string
	campaignID int64
	roomID     string
}

type roomSwitched struct{ roomID string }

type messageAppended struct{ msg chat.Message }

type campaignsLoaded struct{ campaigns []api.Campaign }

type campaignSelected struct{ campaignID int64 }

type sequenceApplied struct{ seq *reply.Sequence }

type stepEdited struct {
	stepKey string
	field   string
	value   string
}

type bannerSet struct{ text string }

func (loggedIn) isAction()         {}
func (roomSwitched) isAction()     {}
func (messageAppended) isAction()  {}
func (campaignsLoaded) isAction()  {}
func (campaignSelected) isAction() {}
func (sequenceApplied) isAction()  {}
func (stepEdited) isAction()       {}
func (bannerSet) isAction()        {}

// Editable sequence step fields.
const (
	FieldChannel        = "channel"
	FieldSubjectLine    = "subject_line"
	FieldTiming         = "timing"
	FieldMessageContent = "message_content"
)

// Reduce applies one action to a state and returns the next state. It is
// pure: the input state is never mutated, and slices/maps are copied before
// modification.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case loggedIn:
		s.LoggedIn = true
		s.Username = act.username
		s.ActiveCampaignID = act.campaignID
		s.ActiveRoomID = act.roomID
		s.Messages = nil
		s.Banner = ""

	case roomSwitched:
		// Clear-before-join: history never bleeds across rooms.
		s.ActiveRoomID = act.roomID
		s.Messages = nil

	case messageAppended:
		msgs := make([]chat.Message, len(s.Messages), len(s.Messages)+1)
		copy(msgs, s.Messages)
		s.Messages = append(msgs, act.msg)

	case campaignsLoaded:
		s.Campaigns = act.campaigns

	case campaignSelected:
		s.ActiveCampaignID = act.campaignID

	case sequenceApplied:
		// A nil sequence means "no update": the previous sequence stays.
		if act.seq != nil {
			s.Sequence = act.seq
		}

	case stepEdited:
		s.Sequence = editStep(s.Sequence, act.stepKey, act.field, act.value)

	case bannerSet:
		s.Banner = act.text
	}
	return s
}

// editStep returns a copy of seq with one field of one step replaced.
// Editing an unknown step or field is a no-op.
func editStep(seq *reply.Sequence, stepKey, field, value string) *reply.Sequence {
	if seq == nil {
		return nil
	}
	step, ok := seq.Steps[stepKey]
	if !ok {
		return seq
	}

	switch field {
	case FieldChannel:
		step.Channel = value
	case FieldSubjectLine:
		step.SubjectLine = value
	case FieldTiming:
		step.Timing = value
	case FieldMessageContent:
		step.MessageContent = value
	default:
		return seq
	}

	steps := make(map[string]reply.SequenceStep, len(seq.Steps))
	for k, v := range seq.Steps {
		steps[k] = v
	}
	steps[stepKey] = step

	edited := *seq
	edited.Steps = steps
	return &edited
}
