package orch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type JoinParams struct {
	RoomID   domain.RoomID
	UserID   domain.UserID
	Name     string
	Data     json.RawMessage
	Password string
}

// Join admits the connection's identity into a room, creating the room on
// first use. An identity already present is rebound to this connection
// instead of joining twice. Rejections are returned for the caller to report.
func (o *Orchestrator) Join(ctx context.Context, conn domain.ConnID, p JoinParams) error {
	name, err := domain.NormalizeUsername(p.Name, o.MaxNameLen)
	if err != nil {
		return err
	}
	p.Name = name

	// The bridge is external I/O and must stay off the dispatcher.
	var hint *domain.MeetingSnapshot
	if o.Meetings != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		hint, err = o.Meetings.Lookup(lookupCtx, p.RoomID)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("room", string(p.RoomID)).Msg("meeting lookup failed, using defaults")
			hint = nil
		}
	}

	err = o.run(ctx, func() error { return o.joinLocked(conn, p, hint) })
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInternal):
		o.Metrics.Join("error")
	default:
		o.Metrics.Join(domain.JoinRejectReason(err))
	}
	return err
}

func (o *Orchestrator) joinLocked(conn domain.ConnID, p JoinParams, hint *domain.MeetingSnapshot) error {
	if _, ok := o.Registry.Conn(conn); !ok {
		return domain.ErrConnNotFound
	}
	if err := o.Moderation.Check(p.UserID); err != nil {
		log.Info().Err(err).Str("module", "orch").Str("room", string(p.RoomID)).Str("user", string(p.UserID)).Msg("join refused by moderation")
		return err
	}

	if curRoom, curUser, ok := o.Registry.MembershipOf(conn); ok {
		if curRoom == p.RoomID && curUser == p.UserID {
			room, _ := o.Rooms.Get(curRoom)
			if room != nil {
				o.sendJoinedLocked(room, conn, p.UserID, true)
				return nil
			}
		}
		if room, ok := o.Rooms.Get(curRoom); ok {
			o.removeLocked(room, curUser, ReasonSwitched)
		}
		o.Registry.Detach(conn)
	}

	room, created := o.Rooms.GetOrCreate(p.RoomID, hint, p.UserID)

	if _, exists := room.Participant(p.UserID); exists {
		return o.rebindLocked(room, conn, p)
	}

	participant, err := room.AddParticipant(core.JoinRequest{
		ID:       p.UserID,
		Conn:     conn,
		Name:     p.Name,
		Data:     p.Data,
		Password: p.Password,
	})
	if err != nil {
		if created {
			o.Rooms.Delete(p.RoomID)
		}
		log.Info().Err(err).Str("module", "orch").Str("room", string(p.RoomID)).Str("user", string(p.UserID)).Msg("join rejected")
		return err
	}
	o.Registry.Attach(conn, p.RoomID, p.UserID)

	o.sendJoinedLocked(room, conn, p.UserID, false)
	o.Out.ToRoom(room, UserJoined{Type: EvUserJoined, RoomID: room.ID(), Participant: participant}, p.UserID)
	o.broadcastParticipantsLocked(room)

	o.Metrics.Join("ok")
	o.syncGaugesLocked()
	log.Info().Str("module", "orch").Str("room", string(p.RoomID)).Str("user", string(p.UserID)).Str("conn", string(conn)).Msg("joined")
	return nil
}

// rebindLocked moves an existing participant onto a new connection. Capacity
// is not rechecked; the old connection is detached and gets nothing further.
func (o *Orchestrator) rebindLocked(room *core.Room, conn domain.ConnID, p JoinParams) error {
	if err := room.CheckPassword(p.Password); err != nil {
		return err
	}
	prev, err := room.Bind(p.UserID, conn)
	if err != nil {
		return err
	}
	if prev != "" && prev != conn {
		o.Registry.Detach(prev)
	}
	o.cancelGraceLocked(graceKey{Room: room.ID(), User: p.UserID})
	o.Registry.Attach(conn, room.ID(), p.UserID)

	o.sendJoinedLocked(room, conn, p.UserID, true)
	o.broadcastParticipantsLocked(room)
	o.Metrics.Join("rebind")
	log.Info().Str("module", "orch").Str("room", string(room.ID())).Str("user", string(p.UserID)).Str("conn", string(conn)).Str("prev", string(prev)).Msg("rebound")
	return nil
}

func (o *Orchestrator) sendJoinedLocked(room *core.Room, conn domain.ConnID, id domain.UserID, reconnected bool) {
	self, _ := room.Participant(id)
	msg := JoinedRoom{
		Type:         EvJoinedRoom,
		Room:         room.View(),
		Self:         self,
		Participants: room.Participants(),
		ChatHistory:  room.ChatHistory(),
		HandRaises:   room.HandRaises(),
		Recording:    room.Recording(),
		Reconnected:  reconnected,
	}
	if poll, ok := room.ActivePoll(); ok {
		msg.ActivePoll = &poll
	}
	o.Out.ToConn(conn, msg)
}

// Leave removes the connection's participant from the room.
func (o *Orchestrator) Leave(ctx context.Context, conn domain.ConnID, roomID domain.RoomID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		o.removeLocked(room, id, ReasonLeft)
		return nil
	})
}

// removeLocked is the single exit path for a participant. The room is
// destroyed in the same job when it empties.
func (o *Orchestrator) removeLocked(room *core.Room, id domain.UserID, reason string) {
	left, change, err := room.RemoveParticipant(id)
	if err != nil {
		return
	}
	if left.ConnID != "" {
		o.Registry.Detach(left.ConnID)
	}
	o.cancelGraceLocked(graceKey{Room: room.ID(), User: id})

	if room.IsEmpty() {
		o.destroyLocked(room)
		return
	}
	o.Out.ToRoom(room, UserLeft{Type: EvUserLeft, RoomID: room.ID(), UserID: id, Name: left.Name, Reason: reason})
	o.broadcastHostChangeLocked(room, change)
	o.broadcastParticipantsLocked(room)
	o.syncGaugesLocked()
}

func (o *Orchestrator) destroyLocked(room *core.Room) {
	for _, poll := range room.Polls() {
		o.stopPollTimerLocked(poll.ID)
	}
	for _, p := range room.Participants() {
		o.cancelGraceLocked(graceKey{Room: room.ID(), User: p.ID})
	}
	o.Rooms.Delete(room.ID())
	o.syncGaugesLocked()
}

// EndRoom lets the host close the room for everyone.
func (o *Orchestrator) EndRoom(ctx context.Context, conn domain.ConnID, roomID domain.RoomID, hostID domain.UserID) error {
	return o.run(ctx, func() error {
		room, id, err := o.member(roomID, conn)
		if err != nil {
			return err
		}
		if hostID == "" || hostID != room.HostID() || id != hostID {
			return domain.ErrNotHost
		}
		o.endLocked(room, ReasonEndedByHost)
		return nil
	})
}

// ForceEnd closes a room from the admin API.
func (o *Orchestrator) ForceEnd(ctx context.Context, roomID domain.RoomID) error {
	return o.run(ctx, func() error {
		room, ok := o.Rooms.Get(roomID)
		if !ok {
			return domain.ErrRoomNotFound
		}
		o.endLocked(room, ReasonEndedByAdmin)
		return nil
	})
}

func (o *Orchestrator) endLocked(room *core.Room, reason string) {
	o.Out.ToRoom(room, RoomEnded{Type: EvRoomEnded, RoomID: room.ID(), Reason: reason})
	for _, p := range room.Participants() {
		if conn, ok := room.Resolve(p.ID); ok {
			o.Registry.Detach(conn)
		}
	}
	o.destroyLocked(room)
	log.Info().Str("module", "orch").Str("room", string(room.ID())).Str("reason", reason).Msg("room ended")

	if mid := room.MeetingID(); mid != "" && o.Meetings != nil {
		go func(bridge core.MeetingBridge) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := bridge.SetStatus(ctx, mid, domain.MeetingEnded); err != nil {
				log.Warn().Err(err).Str("module", "orch").Str("meeting", string(mid)).Msg("meeting status update failed")
			}
		}(o.Meetings)
	}
}

func (o *Orchestrator) ListRooms(ctx context.Context) ([]domain.RoomInfo, error) {
	var out []domain.RoomInfo
	err := o.run(ctx, func() error {
		out = o.Rooms.List()
		return nil
	})
	return out, err
}

type RoomDetails struct {
	Room         domain.RoomView      `json:"room"`
	Participants []domain.Participant `json:"participants"`
	HandRaises   []domain.HandRaise   `json:"handRaises"`
	Polls        []domain.Poll        `json:"polls"`
	MessageCount int                  `json:"messageCount"`
}

func (o *Orchestrator) RoomDetails(ctx context.Context, roomID domain.RoomID) (RoomDetails, error) {
	var out RoomDetails
	err := o.run(ctx, func() error {
		room, ok := o.Rooms.Get(roomID)
		if !ok {
			return domain.ErrRoomNotFound
		}
		out = RoomDetails{
			Room:         room.View(),
			Participants: room.Participants(),
			HandRaises:   room.HandRaises(),
			Polls:        room.Polls(),
			MessageCount: len(room.ChatHistory()),
		}
		return nil
	})
	return out, err
}
