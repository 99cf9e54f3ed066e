package orch

import (
	"context"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) MuteParticipant(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := room.Authorize(id, domain.CapMuteOthers); err != nil {
			return err
		}
		if _, err := room.SetAudioMuted(target, true); err != nil {
			return err
		}
		o.Out.ToRoom(room, ParticipantMuted{Type: EvParticipantMuted, RoomID: roomID, TargetID: target, ByID: id})
		return nil
	})
}

// RemoveParticipant ejects target. The host cannot be removed.
func (o *Orchestrator) RemoveParticipant(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := room.Authorize(id, domain.CapRemoveParticipant); err != nil {
			return err
		}
		if _, ok := room.Participant(target); !ok {
			return domain.ErrParticipantNotFound
		}
		if target == id || target == room.HostID() {
			return domain.ErrForbidden
		}
		o.ejectLocked(room, target, ReasonRemoved, id)
		return nil
	})
}

func (o *Orchestrator) ejectLocked(room *core.Room, target domain.UserID, reason string, by domain.UserID) {
	if conn, ok := room.Resolve(target); ok {
		o.Out.ToConn(conn, RemovedFromRoom{Type: EvRemovedFromRoom, RoomID: room.ID(), Reason: reason, ByID: by})
	}
	o.removeLocked(room, target, reason)
}

// ChangeRole is reserved to the host.
func (o *Orchestrator) ChangeRole(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID, role domain.Role) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if id != room.HostID() {
			return domain.ErrNotHost
		}
		p, change, err := room.SetRole(target, role)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, RoleChanged{Type: EvRoleChanged, RoomID: roomID, TargetID: target, Role: p.Role, ByID: id})
		o.broadcastHostChangeLocked(room, change)
		o.broadcastParticipantsLocked(room)
		return nil
	})
}

// SuspendParticipant suspends target globally from inside a room.
func (o *Orchestrator) SuspendParticipant(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID, d time.Duration, reason string) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := o.authorizeModerationLocked(room, id, target); err != nil {
			return err
		}
		o.suspendLocked(target, d, reason)
		return nil
	})
}

// BlockParticipant blocks target globally and evicts it everywhere.
func (o *Orchestrator) BlockParticipant(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID, reason string) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := o.authorizeModerationLocked(room, id, target); err != nil {
			return err
		}
		o.blockLocked(target, reason, id)
		return nil
	})
}

func (o *Orchestrator) authorizeModerationLocked(room *core.Room, actor, target domain.UserID) error {
	if err := room.Authorize(actor, domain.CapRemoveParticipant); err != nil {
		return err
	}
	if target == "" {
		return domain.Validation("targetId is required")
	}
	if target == actor || target == room.HostID() {
		return domain.ErrForbidden
	}
	return nil
}

func (o *Orchestrator) blockLocked(target domain.UserID, reason string, by domain.UserID) domain.ModerationEntry {
	entry := o.Moderation.Block(target, reason)
	for _, room := range o.Rooms.Containing(target) {
		o.ejectLocked(room, target, ReasonBlocked, by)
	}
	return entry
}

// suspendLocked keeps the participant in its rooms with attendee permissions
// and stops any screen share it no longer may run.
func (o *Orchestrator) suspendLocked(target domain.UserID, d time.Duration, reason string) domain.ModerationEntry {
	entry := o.Moderation.Suspend(target, d, reason)
	for _, room := range o.Rooms.Containing(target) {
		if p, ok := room.Participant(target); ok && p.ScreenSharing {
			if _, err := room.SetScreenSharing(target, false); err == nil {
				o.Out.ToRoom(room, ScreenShare{Type: EvScreenShareStopped, RoomID: room.ID(), UserID: target})
			}
		}
		o.broadcastParticipantsLocked(room)
	}
	log.Info().Str("module", "orch").Str("user", string(target)).Time("until", entry.SuspendedUntil).Msg("participant suspended")
	return entry
}

// Block is the admin entry point for blocking an id.
func (o *Orchestrator) Block(ctx context.Context, target domain.UserID, reason string) (domain.ModerationEntry, error) {
	var entry domain.ModerationEntry
	err := o.run(ctx, func() error {
		entry = o.blockLocked(target, reason, "")
		return nil
	})
	return entry, err
}

func (o *Orchestrator) Unblock(ctx context.Context, target domain.UserID) (bool, error) {
	var ok bool
	err := o.run(ctx, func() error {
		ok = o.Moderation.Unblock(target)
		return nil
	})
	return ok, err
}

func (o *Orchestrator) Suspend(ctx context.Context, target domain.UserID, d time.Duration, reason string) (domain.ModerationEntry, error) {
	if d <= 0 {
		return domain.ModerationEntry{}, domain.Validation("suspension must be positive")
	}
	var entry domain.ModerationEntry
	err := o.run(ctx, func() error {
		entry = o.suspendLocked(target, d, reason)
		return nil
	})
	return entry, err
}

// Unsuspend lifts a suspension early and refreshes permissions in every room.
func (o *Orchestrator) Unsuspend(ctx context.Context, target domain.UserID) (bool, error) {
	var ok bool
	err := o.run(ctx, func() error {
		ok = o.Moderation.Unsuspend(target)
		if ok {
			for _, room := range o.Rooms.Containing(target) {
				o.broadcastParticipantsLocked(room)
			}
		}
		return nil
	})
	return ok, err
}

func (o *Orchestrator) ModerationEntries(ctx context.Context) ([]domain.ModerationEntry, error) {
	var out []domain.ModerationEntry
	err := o.run(ctx, func() error {
		out = o.Moderation.List()
		return nil
	})
	return out, err
}
