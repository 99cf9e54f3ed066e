package signal

import (
	"context"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

func (ctl *SignalWSController) handleCreatePoll(ctx context.Context, s *session, data []byte) error {
	var p createPollPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	d := time.Duration(p.DurationSeconds) * time.Second
	return ctl.Orch.CreatePoll(ctx, s.conn.id, domain.RoomID(p.RoomID), p.Question, p.Options, d)
}

func (ctl *SignalWSController) handleVotePoll(ctx context.Context, s *session, data []byte) error {
	var p votePollPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.VotePoll(ctx, s.conn.id, domain.RoomID(p.RoomID), p.PollID, *p.Option)
}

func (ctl *SignalWSController) handleClosePoll(ctx context.Context, s *session, data []byte) error {
	var p pollPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.ClosePoll(ctx, s.conn.id, domain.RoomID(p.RoomID), p.PollID)
}

func (ctl *SignalWSController) handleRecording(action domain.RecordingAction) handlerFunc {
	return func(ctx context.Context, s *session, data []byte) error {
		var p roomPayload
		if err := ctl.decode(data, &p); err != nil {
			return err
		}
		return ctl.Orch.Recording(ctx, s.conn.id, domain.RoomID(p.RoomID), action)
	}
}
