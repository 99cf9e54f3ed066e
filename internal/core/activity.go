package core

import (
	"sort"
	"strings"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/google/uuid"
)

func (r *Room) AppendMessage(sender domain.UserID, text string) (domain.ChatMessage, error) {
	p, ok := r.participants[sender]
	if !ok {
		return domain.ChatMessage{}, domain.ErrNotInRoom
	}
	if !r.meta.Settings.AllowChat {
		return domain.ChatMessage{}, domain.ErrChatDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" || len(text) > domain.MaxMessageLen {
		return domain.ChatMessage{}, domain.Validation("message text must be 1-4000 bytes")
	}
	msg := domain.ChatMessage{
		ID:         uuid.NewString(),
		RoomID:     r.meta.ID,
		SenderID:   sender,
		SenderName: p.Name,
		Text:       text,
		SentAt:     r.now.now(),
	}
	r.chat = append(r.chat, msg)
	return msg, nil
}

func (r *Room) AppendReaction(sender domain.UserID, emoji string) (domain.ReactionEvent, error) {
	p, ok := r.participants[sender]
	if !ok {
		return domain.ReactionEvent{}, domain.ErrNotInRoom
	}
	if !r.meta.Settings.AllowReactions {
		return domain.ReactionEvent{}, domain.ErrReactionsDisabled
	}
	ev := domain.ReactionEvent{
		ID:         uuid.NewString(),
		RoomID:     r.meta.ID,
		SenderID:   sender,
		SenderName: p.Name,
		Emoji:      emoji,
		SentAt:     r.now.now(),
	}
	r.reactions = append(r.reactions, ev)
	return ev, nil
}

func (r *Room) ChatHistory() []domain.ChatMessage {
	return append([]domain.ChatMessage(nil), r.chat...)
}

func (r *Room) Reactions() []domain.ReactionEvent {
	return append([]domain.ReactionEvent(nil), r.reactions...)
}

// RaiseHand is idempotent; a second raise keeps the original timestamp and reports changed=false.
func (r *Room) RaiseHand(id domain.UserID) (domain.HandRaise, bool, error) {
	p, ok := r.participants[id]
	if !ok {
		return domain.HandRaise{}, false, domain.ErrNotInRoom
	}
	if h, ok := r.hands[id]; ok {
		return *h, false, nil
	}
	h := &domain.HandRaise{ParticipantID: id, Name: p.Name, RaisedAt: r.now.now()}
	r.hands[id] = h
	return *h, true, nil
}

func (r *Room) LowerHand(id domain.UserID) bool {
	if _, ok := r.hands[id]; !ok {
		return false
	}
	delete(r.hands, id)
	return true
}

func (r *Room) AcknowledgeHand(id domain.UserID) (domain.HandRaise, error) {
	h, ok := r.hands[id]
	if !ok {
		return domain.HandRaise{}, domain.ErrParticipantNotFound
	}
	h.Acknowledged = true
	return *h, nil
}

// HandRaises lists raised hands, earliest first.
func (r *Room) HandRaises() []domain.HandRaise {
	out := make([]domain.HandRaise, 0, len(r.hands))
	for _, h := range r.hands {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RaisedAt.Equal(out[j].RaisedAt) {
			si, _ := r.Seq(out[i].ParticipantID)
			sj, _ := r.Seq(out[j].ParticipantID)
			return si < sj
		}
		return out[i].RaisedAt.Before(out[j].RaisedAt)
	})
	return out
}

// CreatePoll opens a poll. Only one poll can be open at a time.
func (r *Room) CreatePoll(creator domain.UserID, question string, options []string, duration time.Duration) (domain.Poll, error) {
	if r.active != nil {
		return domain.Poll{}, domain.ErrPollActive
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Poll{}, domain.Validation("poll question is empty")
	}
	if len(options) < 2 || len(options) > domain.MaxPollOptions {
		return domain.Poll{}, domain.Validation("poll needs 2-10 options")
	}
	now := r.now.now()
	p := &domain.Poll{
		ID:        uuid.NewString(),
		RoomID:    r.meta.ID,
		Question:  question,
		Options:   append([]string(nil), options...),
		Votes:     make(map[domain.UserID]int),
		CreatedBy: creator,
		CreatedAt: now,
	}
	if duration > 0 {
		closes := now.Add(duration)
		p.ClosesAt = &closes
	}
	r.polls = append(r.polls, p)
	r.active = p
	return p.Snapshot(), nil
}

// Vote records or replaces the voter's choice on the open poll.
func (r *Room) Vote(voter domain.UserID, pollID string, option int) (domain.Poll, error) {
	if _, ok := r.participants[voter]; !ok {
		return domain.Poll{}, domain.ErrNotInRoom
	}
	p := r.poll(pollID)
	if p == nil {
		return domain.Poll{}, domain.ErrPollNotFound
	}
	if p.Closed {
		return domain.Poll{}, domain.ErrPollClosed
	}
	if option < 0 || option >= len(p.Options) {
		return domain.Poll{}, domain.Validation("option out of range")
	}
	p.Votes[voter] = option
	return p.Snapshot(), nil
}

// ClosePoll closes the poll; closed reports whether this call did it.
func (r *Room) ClosePoll(pollID string) (poll domain.Poll, closed bool, err error) {
	p := r.poll(pollID)
	if p == nil {
		return domain.Poll{}, false, domain.ErrPollNotFound
	}
	if p.Closed {
		return p.Snapshot(), false, nil
	}
	p.Closed = true
	if r.active == p {
		r.active = nil
	}
	return p.Snapshot(), true, nil
}

func (r *Room) ActivePoll() (domain.Poll, bool) {
	if r.active == nil {
		return domain.Poll{}, false
	}
	return r.active.Snapshot(), true
}

func (r *Room) Polls() []domain.Poll {
	out := make([]domain.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, p.Snapshot())
	}
	return out
}

func (r *Room) poll(id string) *domain.Poll {
	for _, p := range r.polls {
		if p.ID == id {
			return p
		}
	}
	return nil
}

var recordingTransitions = map[domain.RecordingAction]map[domain.RecordingStatus]domain.RecordingStatus{
	domain.RecordingStart: {
		domain.RecordingStopped: domain.RecordingActive,
	},
	domain.RecordingPause: {
		domain.RecordingActive: domain.RecordingPaused,
	},
	domain.RecordingResume: {
		domain.RecordingPaused: domain.RecordingActive,
	},
	domain.RecordingStop: {
		domain.RecordingActive: domain.RecordingStopped,
		domain.RecordingPaused: domain.RecordingStopped,
	},
}

func (r *Room) SetRecording(action domain.RecordingAction) (domain.RecordingStatus, error) {
	next, ok := recordingTransitions[action]
	if !ok {
		return r.meta.Recording, domain.Validation("unknown recording action")
	}
	if action == domain.RecordingStart && !r.meta.Settings.AllowRecording {
		return r.meta.Recording, domain.ErrRecordingDisabled
	}
	to, ok := next[r.meta.Recording]
	if !ok {
		return r.meta.Recording, domain.ErrInvalidTransition
	}
	r.meta.Recording = to
	return to, nil
}
