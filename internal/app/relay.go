package app

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/rs/zerolog/log"
)

// RelayEnvelope is what the target receives. Payload is never decoded.
type RelayEnvelope struct {
	Type    string          `json:"type"`
	RoomID  domain.RoomID   `json:"roomId"`
	FromID  domain.UserID   `json:"fromId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Relay forwards WebRTC negotiation messages to exactly one peer.
type Relay struct {
	Rooms   *RoomManager
	Out     *Broadcaster
	Metrics *metrics.Collector
}

func NewRelay(rooms *RoomManager, out *Broadcaster, m *metrics.Collector) *Relay {
	return &Relay{Rooms: rooms, Out: out, Metrics: m}
}

// Forward resolves sender and target at call time. Anything unresolvable is a
// silent no-op: the peers are mid-negotiation and a late candidate is not an error.
func (r *Relay) Forward(kind string, roomID domain.RoomID, from domain.ConnID, target domain.UserID, payload json.RawMessage) bool {
	logger := log.With().Str("module", "app.relay").Str("kind", kind).Str("room", string(roomID)).Str("conn", string(from)).Str("target", string(target)).Logger()

	room, ok := r.Rooms.Get(roomID)
	if !ok {
		logger.Debug().Msg("no room")
		r.Metrics.Relay(kind, "no_room")
		return false
	}
	sender, ok := room.ParticipantByConn(from)
	if !ok {
		logger.Debug().Msg("sender not in room")
		r.Metrics.Relay(kind, "no_sender")
		return false
	}
	if sender == target {
		r.Metrics.Relay(kind, "self")
		return false
	}
	to, ok := room.Resolve(target)
	if !ok {
		logger.Debug().Msg("target not bound")
		r.Metrics.Relay(kind, "no_target")
		return false
	}
	sent := r.Out.ToConn(to, RelayEnvelope{
		Type:    kind,
		RoomID:  roomID,
		FromID:  sender,
		Payload: payload,
	})
	if sent {
		r.Metrics.Relay(kind, "forwarded")
	} else {
		r.Metrics.Relay(kind, "dropped")
	}
	return sent
}
