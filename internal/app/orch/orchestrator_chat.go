package orch

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

// SendMessage appends to the room's chat history and echoes to everyone, sender included.
func (o *Orchestrator) SendMessage(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, text string) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		msg, err := room.AppendMessage(id, text)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, NewMessage{Type: EvNewMessage, RoomID: roomID, Message: msg})
		return nil
	})
}

func (o *Orchestrator) SendReaction(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, emoji string) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		ev, err := room.AppendReaction(id, emoji)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, NewReaction{Type: EvNewReaction, RoomID: roomID, Reaction: ev})
		return nil
	})
}

func (o *Orchestrator) RaiseHand(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		hand, changed, err := room.RaiseHand(id)
		if err != nil || !changed {
			return err
		}
		o.Out.ToRoom(room, HandEvent{Type: EvHandRaised, RoomID: roomID, UserID: id, Hand: &hand})
		return nil
	})
}

// LowerHand lowers the sender's own hand, or another participant's when target
// is set and the sender may mute others.
func (o *Orchestrator) LowerHand(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if target == "" {
			target = id
		}
		if target != id {
			if err := room.Authorize(id, domain.CapMuteOthers); err != nil {
				return err
			}
		}
		if !room.LowerHand(target) {
			return nil
		}
		o.Out.ToRoom(room, HandEvent{Type: EvHandLowered, RoomID: roomID, UserID: target, ByID: id})
		return nil
	})
}

func (o *Orchestrator) AcknowledgeHand(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, target domain.UserID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if err := room.Authorize(id, domain.CapMuteOthers); err != nil {
			return err
		}
		hand, err := room.AcknowledgeHand(target)
		if err != nil {
			return err
		}
		o.Out.ToRoom(room, HandEvent{Type: EvHandAcknowledged, RoomID: roomID, UserID: target, ByID: id, Hand: &hand})
		return nil
	})
}
