package app

import (
	"sort"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManager is the session registry: room id -> live room.
// It is owned by the Dispatcher goroutine and holds no locks.
type RoomManager struct {
	rooms map[domain.RoomID]*core.Room

	defaults   domain.RoomSettings
	now        core.Clock
	moderation *core.ModerationStore
}

func NewRoomManager(defaults domain.RoomSettings, now core.Clock, moderation *core.ModerationStore) *RoomManager {
	return &RoomManager{
		rooms:      make(map[domain.RoomID]*core.Room),
		defaults:   defaults,
		now:        now,
		moderation: moderation,
	}
}

// GetOrCreate returns the live room, or builds one from the hint (nil means
// config defaults). Hints for an existing room are ignored. When the hint names
// no host, the creating participant becomes host.
func (m *RoomManager) GetOrCreate(id domain.RoomID, hint *domain.MeetingSnapshot, creator domain.UserID) (*core.Room, bool) {
	if room, ok := m.rooms[id]; ok {
		return room, false
	}
	meta := domain.Room{
		ID:       id,
		Name:     string(id),
		Kind:     domain.RoomStandard,
		HostID:   creator,
		Settings: m.defaults,
	}
	if hint != nil {
		meta.MeetingID = hint.ID
		meta.Settings = hint.Settings
		if hint.Name != "" {
			meta.Name = hint.Name
		}
		if hint.Kind.Valid() {
			meta.Kind = hint.Kind
		}
		if hint.HostID != "" {
			meta.HostID = hint.HostID
		}
	}
	var suspended func(domain.UserID) bool
	if m.moderation != nil {
		suspended = m.moderation.IsSuspended
	}
	room := core.NewRoom(meta, m.now, suspended)
	m.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("meeting", string(meta.MeetingID)).Msg("room created")
	return room, true
}

func (m *RoomManager) Get(id domain.RoomID) (*core.Room, bool) {
	room, ok := m.rooms[id]
	return room, ok
}

// Delete is idempotent.
func (m *RoomManager) Delete(id domain.RoomID) bool {
	if _, ok := m.rooms[id]; !ok {
		return false
	}
	delete(m.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room removed")
	return true
}

// List returns room summaries ordered by id.
func (m *RoomManager) List() []domain.RoomInfo {
	out := make([]domain.RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Containing returns every room where id is a participant.
func (m *RoomManager) Containing(id domain.UserID) []*core.Room {
	var out []*core.Room
	for _, r := range m.rooms {
		if _, ok := r.Participant(id); ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (m *RoomManager) Len() int { return len(m.rooms) }

func (m *RoomManager) ParticipantCount() int {
	n := 0
	for _, r := range m.rooms {
		n += r.Size()
	}
	return n
}
