package signal

import (
	"context"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

func (ctl *SignalWSController) handleMute(ctx context.Context, s *session, data []byte) error {
	var p targetPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.MuteParticipant(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID))
}

func (ctl *SignalWSController) handleRemove(ctx context.Context, s *session, data []byte) error {
	var p targetPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.RemoveParticipant(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID))
}

func (ctl *SignalWSController) handleChangeRole(ctx context.Context, s *session, data []byte) error {
	var p rolePayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.ChangeRole(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID), domain.Role(p.Role))
}

func (ctl *SignalWSController) handleSuspend(ctx context.Context, s *session, data []byte) error {
	var p suspendPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	d := time.Duration(p.Minutes) * time.Minute
	return ctl.Orch.SuspendParticipant(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID), d, p.Reason)
}

func (ctl *SignalWSController) handleBlock(ctx context.Context, s *session, data []byte) error {
	var p blockPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.BlockParticipant(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID), p.Reason)
}
