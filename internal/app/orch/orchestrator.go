package orch

import (
	"context"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Scheduler runs fn on the dispatcher after d. The returned stop func cancels
// a pending run and reports whether it did.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

// Orchestrator implements every inbound operation. Each public method submits
// one job to the Dispatcher; the unexported *Locked helpers assume they already
// run inside a job.
type Orchestrator struct {
	Dispatcher *app.Dispatcher
	Registry   *app.Registry
	Rooms      *app.RoomManager
	Moderation *core.ModerationStore
	Out        *app.Broadcaster
	Relay      *app.Relay
	Meetings   core.MeetingBridge
	Metrics    *metrics.Collector

	ICEServers     []webrtc.ICEServer
	ReconnectGrace time.Duration
	MaxNameLen     int
	Now            core.Clock
	After          Scheduler

	grace      map[graceKey]func() bool
	pollTimers map[string]func() bool
}

type graceKey struct {
	Room domain.RoomID
	User domain.UserID
}

// Deps groups what New needs; zero-valued optional fields are allowed.
type Deps struct {
	Dispatcher     *app.Dispatcher
	Rooms          *app.RoomManager
	Moderation     *core.ModerationStore
	Meetings       core.MeetingBridge
	Metrics        *metrics.Collector
	Policy         app.Policy
	ICEServers     []webrtc.ICEServer
	ReconnectGrace time.Duration
	MaxNameLen     int
	Now            core.Clock
	After          Scheduler
}

func New(d Deps) *Orchestrator {
	reg := app.NewRegistry()
	out := app.NewBroadcaster(reg, d.Policy, d.Metrics)
	o := &Orchestrator{
		Dispatcher:     d.Dispatcher,
		Registry:       reg,
		Rooms:          d.Rooms,
		Moderation:     d.Moderation,
		Out:            out,
		Relay:          app.NewRelay(d.Rooms, out, d.Metrics),
		Meetings:       d.Meetings,
		Metrics:        d.Metrics,
		ICEServers:     d.ICEServers,
		ReconnectGrace: d.ReconnectGrace,
		MaxNameLen:     d.MaxNameLen,
		Now:            d.Now,
		After:          d.After,
		grace:          make(map[graceKey]func() bool),
		pollTimers:     make(map[string]func() bool),
	}
	if o.Now == nil {
		o.Now = core.SystemClock
	}
	if o.After == nil {
		o.After = o.afterFunc
	}
	return o
}

func (o *Orchestrator) afterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { o.Dispatcher.Post(fn) })
	return t.Stop
}

// run executes fn as one dispatcher job and returns fn's error.
func (o *Orchestrator) run(ctx context.Context, fn func() error) error {
	var err error
	if derr := o.Dispatcher.Do(ctx, func() { err = fn() }); derr != nil {
		log.Error().Err(derr).Str("module", "orch").Msg("dispatch failed")
		return domain.ErrInternal
	}
	return err
}

// Connect registers a fresh transport and greets it with its id and ICE servers.
func (o *Orchestrator) Connect(ctx context.Context, conn core.SignalConnection, cancel context.CancelFunc) error {
	return o.run(ctx, func() error {
		o.Registry.Add(conn, cancel)
		o.Metrics.ConnectionOpened()
		o.Out.ToConn(conn.ID(), ConnectionConfirmed{
			Type:         EvConnectionConfirmed,
			ConnectionID: conn.ID(),
			ICEServers:   o.ICEServers,
		})
		return nil
	})
}

// Disconnect handles transport loss. A connection that was superseded by a
// rebind is dropped without touching the room.
func (o *Orchestrator) Disconnect(ctx context.Context, id domain.ConnID) error {
	return o.run(ctx, func() error {
		roomID, userID, member := o.Registry.MembershipOf(id)
		if _, ok := o.Registry.Conn(id); ok {
			o.Registry.Remove(id)
			o.Metrics.ConnectionClosed()
		}
		if !member {
			return nil
		}
		room, ok := o.Rooms.Get(roomID)
		if !ok {
			return nil
		}
		if cur, ok := room.Resolve(userID); !ok || cur != id {
			log.Debug().Str("module", "orch").Str("conn", string(id)).Str("user", string(userID)).Msg("stale connection closed")
			return nil
		}
		if o.ReconnectGrace <= 0 {
			o.removeLocked(room, userID, ReasonDisconnected)
			return nil
		}
		o.deferRemovalLocked(room, userID)
		return nil
	})
}

// deferRemovalLocked unbinds the participant and removes it after the grace
// period unless it rebinds first.
func (o *Orchestrator) deferRemovalLocked(room *core.Room, userID domain.UserID) {
	if _, err := room.Unbind(userID); err != nil {
		return
	}
	seq, _ := room.Seq(userID)
	key := graceKey{Room: room.ID(), User: userID}
	o.cancelGraceLocked(key)
	log.Info().Str("module", "orch").Str("room", string(room.ID())).Str("user", string(userID)).Dur("grace", o.ReconnectGrace).Msg("awaiting reconnect")

	o.grace[key] = o.After(o.ReconnectGrace, func() {
		delete(o.grace, key)
		cur, ok := o.Rooms.Get(key.Room)
		if !ok || cur != room {
			return
		}
		if s, ok := room.Seq(userID); !ok || s != seq {
			return
		}
		if _, bound := room.Resolve(userID); bound {
			return
		}
		o.removeLocked(room, userID, ReasonDisconnected)
	})
}

func (o *Orchestrator) cancelGraceLocked(key graceKey) {
	if stop, ok := o.grace[key]; ok {
		stop()
		delete(o.grace, key)
	}
}

// member resolves the acting participant for a connection in a room.
func (o *Orchestrator) member(roomID domain.RoomID, conn domain.ConnID) (*core.Room, domain.UserID, error) {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil, "", domain.ErrRoomNotFound
	}
	id, ok := room.ParticipantByConn(conn)
	if !ok {
		return nil, "", domain.ErrNotInRoom
	}
	return room, id, nil
}

func (o *Orchestrator) broadcastParticipantsLocked(room *core.Room) {
	o.Out.ToRoom(room, RoomParticipants{
		Type:         EvRoomParticipants,
		RoomID:       room.ID(),
		HostID:       room.HostID(),
		Participants: room.Participants(),
	})
}

func (o *Orchestrator) broadcastHostChangeLocked(room *core.Room, change *core.HostChange) {
	if change == nil {
		return
	}
	log.Info().Str("module", "orch").Str("room", string(room.ID())).Str("from", string(change.From)).Str("to", string(change.To)).Msg("host changed")
	o.Out.ToRoom(room, HostChanged{Type: EvHostChanged, RoomID: room.ID(), HostChange: *change})
}

func (o *Orchestrator) syncGaugesLocked() {
	o.Metrics.SetRooms(o.Rooms.Len())
	o.Metrics.SetParticipants(o.Rooms.ParticipantCount())
}
