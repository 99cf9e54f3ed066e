package app

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/rs/zerolog/log"
)

// PublishResult reports delivery stats for one fan-out.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ConnID
}

// Broadcaster encodes events once and fans them out without blocking:
// each connection has its own bounded buffer and write pump.
type Broadcaster struct {
	Registry *Registry
	Policy   Policy
	Metrics  *metrics.Collector
}

func NewBroadcaster(reg *Registry, policy Policy, m *metrics.Collector) *Broadcaster {
	return &Broadcaster{Registry: reg, Policy: policy, Metrics: m}
}

// ToConn sends v to a single connection. It reports false if the connection is
// unknown or its buffer rejected the frame.
func (b *Broadcaster) ToConn(id domain.ConnID, v any) bool {
	frame, ok := encode(v)
	if !ok {
		return false
	}
	return b.deliver("", id, frame)
}

// ToRoom sends v to every bound participant except the excluded ids.
func (b *Broadcaster) ToRoom(room *core.Room, v any, exclude ...domain.UserID) PublishResult {
	res := PublishResult{}
	frame, ok := encode(v)
	if !ok {
		return res
	}
	for _, id := range room.Connections(exclude...) {
		if b.deliver(room.ID(), id, frame) {
			res.SentTo++
			continue
		}
		res.Dropped = append(res.Dropped, id)
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(room.ID())).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (b *Broadcaster) deliver(room domain.RoomID, id domain.ConnID, frame core.Frame) bool {
	conn, ok := b.Registry.Conn(id)
	if !ok {
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		b.Metrics.Backpressure()
		b.onBackpressure(room, id, err)
		return false
	}
	return true
}

func (b *Broadcaster) onBackpressure(room domain.RoomID, id domain.ConnID, err error) {
	log.Warn().Err(err).Str("module", "app.broadcast").Str("room", string(room)).Str("conn", string(id)).Msg("send rejected")
	if b.Policy == nil {
		return
	}
	switch b.Policy.OnBackPressure(room, id) {
	case KickMember:
		b.Registry.Cancel(id)
	case MarkSlow, DropFrame, NoAction:
	}
}

func encode(v any) (core.Frame, bool) {
	if f, ok := v.(core.Frame); ok {
		return f, true
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal")
		return nil, false
	}
	return b, true
}
