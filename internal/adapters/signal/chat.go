package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

func (ctl *SignalWSController) handleMessage(ctx context.Context, s *session, data []byte) error {
	var p messagePayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.SendMessage(ctx, s.conn.id, domain.RoomID(p.RoomID), p.Text)
}

func (ctl *SignalWSController) handleReaction(ctx context.Context, s *session, data []byte) error {
	var p reactionPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.SendReaction(ctx, s.conn.id, domain.RoomID(p.RoomID), p.Emoji)
}

func (ctl *SignalWSController) handleRaiseHand(ctx context.Context, s *session, data []byte) error {
	var p roomPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.RaiseHand(ctx, s.conn.id, domain.RoomID(p.RoomID))
}

func (ctl *SignalWSController) handleLowerHand(ctx context.Context, s *session, data []byte) error {
	var p lowerHandPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.LowerHand(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID))
}

func (ctl *SignalWSController) handleAcknowledgeHand(ctx context.Context, s *session, data []byte) error {
	var p targetPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.AcknowledgeHand(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID))
}
