package app

import (
	"context"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn   core.SignalConnection
	Cancel context.CancelFunc
	Room   domain.RoomID
	User   domain.UserID
}

// Registry maps live connection ids to their transport and current membership.
// Like RoomManager it is only touched from the Dispatcher goroutine.
type Registry struct {
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) Add(conn core.SignalConnection, cancel context.CancelFunc) {
	r.conns[conn.ID()] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(conn.ID())).Msg("bound signal")
}

func (r *Registry) Remove(id domain.ConnID) {
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind signal")
}

func (r *Registry) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Attach records that the connection now speaks for user in room.
func (r *Registry) Attach(id domain.ConnID, room domain.RoomID, user domain.UserID) bool {
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Room = room
	e.User = user
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(room)).Str("user", string(user)).Msg("attached")
	return true
}

func (r *Registry) Detach(id domain.ConnID) {
	if e, ok := r.conns[id]; ok {
		e.Room = ""
		e.User = ""
	}
}

func (r *Registry) MembershipOf(id domain.ConnID) (domain.RoomID, domain.UserID, bool) {
	e, ok := r.conns[id]
	if !ok || e.Room == "" {
		return "", "", false
	}
	return e.Room, e.User, true
}

// Cancel stops the connection's pumps; the transport then reports the disconnect.
func (r *Registry) Cancel(id domain.ConnID) bool {
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

func (r *Registry) Len() int { return len(r.conns) }
