package orch

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

// RelaySignal forwards an offer, answer or ICE candidate to one peer. It never
// fails from the sender's point of view.
func (o *Orchestrator) RelaySignal(ctx context.Context, kind string, conn domain.ConnID, roomID domain.RoomID, target domain.UserID, payload json.RawMessage) error {
	return o.run(ctx, func() error {
		o.Relay.Forward(kind, roomID, conn, target, payload)
		return nil
	})
}

// ToggleAudio records the sender's microphone state and tells everyone else.
func (o *Orchestrator) ToggleAudio(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, enabled bool) error {
	return o.toggle(ctx, conn, roomID, enabled, EvAudioToggled, (*core.Room).SetAudioMuted)
}

func (o *Orchestrator) ToggleVideo(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, enabled bool) error {
	return o.toggle(ctx, conn, roomID, enabled, EvVideoToggled, (*core.Room).SetVideoMuted)
}

func (o *Orchestrator) toggle(
	ctx context.Context,
	conn domain.ConnID,
	roomID domain.RoomID,
	enabled bool,
	event string,
	set func(*core.Room, domain.UserID, bool) (domain.Participant, error),
) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if _, err := set(room, id, !enabled); err != nil {
			return err
		}
		o.Out.ToRoom(room, MediaToggled{Type: event, RoomID: roomID, UserID: id, Enabled: enabled}, id)
		return nil
	})
}

func (o *Orchestrator) StartScreenShare(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	return o.screenShare(ctx, conn, roomID, true)
}

func (o *Orchestrator) StopScreenShare(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	return o.screenShare(ctx, conn, roomID, false)
}

func (o *Orchestrator) screenShare(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, on bool) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if _, err := room.SetScreenSharing(id, on); err != nil {
			return err
		}
		event := EvScreenShareStopped
		if on {
			event = EvScreenShareStarted
		}
		o.Out.ToRoom(room, ScreenShare{Type: event, RoomID: roomID, UserID: id}, id)
		return nil
	})
}
