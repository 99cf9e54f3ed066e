package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

// relay forwards one negotiation message of the given kind. The payload is
// opaque to the server.
func (ctl *SignalWSController) relay(kind string) handlerFunc {
	return func(ctx context.Context, s *session, data []byte) error {
		var p relayPayload
		if err := ctl.decode(data, &p); err != nil {
			return err
		}
		return ctl.Orch.RelaySignal(ctx, kind, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.TargetID), p.Payload)
	}
}

func (ctl *SignalWSController) handleToggleAudio(ctx context.Context, s *session, data []byte) error {
	var p togglePayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.ToggleAudio(ctx, s.conn.id, domain.RoomID(p.RoomID), *p.Enabled)
}

func (ctl *SignalWSController) handleToggleVideo(ctx context.Context, s *session, data []byte) error {
	var p togglePayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.ToggleVideo(ctx, s.conn.id, domain.RoomID(p.RoomID), *p.Enabled)
}

func (ctl *SignalWSController) handleScreenShare(on bool) handlerFunc {
	return func(ctx context.Context, s *session, data []byte) error {
		var p roomPayload
		if err := ctl.decode(data, &p); err != nil {
			return err
		}
		if on {
			return ctl.Orch.StartScreenShare(ctx, s.conn.id, domain.RoomID(p.RoomID))
		}
		return ctl.Orch.StopScreenShare(ctx, s.conn.id, domain.RoomID(p.RoomID))
	}
}
