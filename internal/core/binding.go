package core

import (
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Bind points the participant at a new live connection and returns the
// previous one. The previous connection is not notified.
func (r *Room) Bind(id domain.UserID, conn domain.ConnID) (domain.ConnID, error) {
	p, ok := r.participants[id]
	if !ok {
		return "", domain.ErrParticipantNotFound
	}
	prev := p.ConnID
	if prev != "" {
		delete(r.byConn, prev)
	}
	p.ConnID = conn
	if conn != "" {
		r.byConn[conn] = id
	}
	log.Debug().Str("module", "core.binding").Str("room", string(r.meta.ID)).Str("user", string(id)).Str("conn", string(conn)).Str("prev", string(prev)).Msg("bind")
	return prev, nil
}

// Unbind clears the live connection but keeps the membership.
func (r *Room) Unbind(id domain.UserID) (domain.ConnID, error) {
	return r.Bind(id, "")
}

func (r *Room) Resolve(id domain.UserID) (domain.ConnID, bool) {
	p, ok := r.participants[id]
	if !ok || p.ConnID == "" {
		return "", false
	}
	return p.ConnID, true
}

func (r *Room) ParticipantByConn(conn domain.ConnID) (domain.UserID, bool) {
	id, ok := r.byConn[conn]
	return id, ok
}

// Seq returns the join sequence of a participant, used to detect a leave-and-rejoin.
func (r *Room) Seq(id domain.UserID) (uint64, bool) {
	p, ok := r.participants[id]
	if !ok {
		return 0, false
	}
	return p.Seq, true
}

// Connections lists bound connections in join order, skipping the excluded ids.
func (r *Room) Connections(exclude ...domain.UserID) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(r.participants))
	for _, p := range r.ordered() {
		if p.ConnID == "" || contains(exclude, p.ID) {
			continue
		}
		out = append(out, p.ConnID)
	}
	return out
}

func contains(ids []domain.UserID, id domain.UserID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
