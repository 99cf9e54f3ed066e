package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoin admits the connection into a room. Without a userId the
// client-token cookie identifies the participant.
func (ctl *SignalWSController) handleJoin(ctx context.Context, s *session, data []byte) error {
	var p joinPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	userID := p.UserID
	if userID == "" {
		userID = s.token
	}
	if userID == "" {
		return domain.Validation("userId is required")
	}
	if len(userID) > domain.MaxUserIDLen {
		return domain.Validation("userId too long")
	}

	log.Info().Str("module", "signal").Str("conn", string(s.conn.id)).Str("room", p.RoomID).Str("user", userID).Msg("join")
	return ctl.Orch.Join(ctx, s.conn.id, orch.JoinParams{
		RoomID:   domain.RoomID(p.RoomID),
		UserID:   domain.UserID(userID),
		Name:     p.UserName,
		Data:     p.UserData,
		Password: p.Password,
	})
}

// handleLeave leaves the room; the connection stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, s *session, data []byte) error {
	var p roomPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("conn", string(s.conn.id)).Str("room", p.RoomID).Msg("leave")
	return ctl.Orch.Leave(ctx, s.conn.id, domain.RoomID(p.RoomID))
}

func (ctl *SignalWSController) handleEndRoom(ctx context.Context, s *session, data []byte) error {
	var p endRoomPayload
	if err := ctl.decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.EndRoom(ctx, s.conn.id, domain.RoomID(p.RoomID), domain.UserID(p.HostID))
}
