package orch

import (
	"context"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreatePoll opens a poll; a positive duration closes it automatically.
func (o *Orchestrator) CreatePoll(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, question string, options []string, d time.Duration) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := room.Authorize(id, domain.CapManagePolls); err != nil {
			return err
		}
		poll, err := room.CreatePoll(id, question, options, d)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, PollEvent{Type: EvPollCreated, RoomID: roomID, Poll: poll})
		if d > 0 {
			o.schedulePollCloseLocked(room, poll.ID, d)
		}
		return nil
	})
}

// schedulePollCloseLocked closes the poll on expiry if the same room and poll
// are still around and the poll is still open.
func (o *Orchestrator) schedulePollCloseLocked(room *core.Room, pollID string, d time.Duration) {
	roomID := room.ID()
	o.pollTimers[pollID] = o.After(d, func() {
		delete(o.pollTimers, pollID)
		cur, ok := o.Rooms.Get(roomID)
		if !ok || cur != room {
			return
		}
		poll, closed, err := room.ClosePoll(pollID)
		if err != nil || !closed {
			return
		}
		log.Info().Str("module", "orch").Str("room", string(roomID)).Str("poll", pollID).Msg("poll auto-closed")
		o.Out.ToRoom(room, PollEvent{Type: EvPollClosed, RoomID: roomID, Poll: poll})
	})
}

func (o *Orchestrator) stopPollTimerLocked(pollID string) {
	if stop, ok := o.pollTimers[pollID]; ok {
		stop()
		delete(o.pollTimers, pollID)
	}
}

func (o *Orchestrator) VotePoll(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, pollID string, option int) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		poll, err := room.Vote(id, pollID, option)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, PollEvent{Type: EvPollUpdated, RoomID: roomID, Poll: poll})
		return nil
	})
}

func (o *Orchestrator) ClosePoll(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, pollID string) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := room.Authorize(id, domain.CapManagePolls); err != nil {
			return err
		}
		poll, closed, err := room.ClosePoll(pollID)
		if err != nil {
			return err
		}
		o.stopPollTimerLocked(pollID)
		if closed {
			o.Out.ToRoom(room, PollEvent{Type: EvPollClosed, RoomID: roomID, Poll: poll})
		}
		return nil
	})
}

// Recording drives the room's recording state machine; host only.
func (o *Orchestrator) Recording(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, action domain.RecordingAction) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := room.Authorize(id, domain.CapManageRecording); err != nil {
			return err
		}
		status, err := room.SetRecording(action)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, RecordingStatus{Type: EvRecordingStatus, RoomID: roomID, Status: status, ByID: id})
		return nil
	})
}
