// Package meeting is an in-process meeting directory. It stands in for the
// external scheduling service behind core.MeetingBridge.
package meeting

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var _ core.MeetingBridge = (*Directory)(nil)

// Directory is safe for concurrent use; it is called from HTTP handlers and
// from the orchestrator outside dispatcher jobs.
type Directory struct {
	mu       sync.RWMutex
	meetings map[domain.MeetingID]*domain.MeetingSnapshot
	byRoom   map[domain.RoomID]domain.MeetingID
}

func NewDirectory() *Directory {
	return &Directory{
		meetings: make(map[domain.MeetingID]*domain.MeetingSnapshot),
		byRoom:   make(map[domain.RoomID]domain.MeetingID),
	}
}

// Upsert stores a meeting record. A room id can be linked to one meeting only.
// The status of an existing record is preserved.
func (d *Directory) Upsert(m domain.MeetingSnapshot) (domain.MeetingSnapshot, error) {
	if m.ID == "" {
		return domain.MeetingSnapshot{}, domain.Validation("meeting id is required")
	}
	if m.RoomID == "" {
		return domain.MeetingSnapshot{}, domain.Validation("roomId is required")
	}
	if m.Kind == "" {
		m.Kind = domain.RoomStandard
	}
	if !m.Kind.Valid() {
		return domain.MeetingSnapshot{}, domain.Validation("unknown room kind")
	}
	if m.Settings.MaxParticipants < 0 {
		return domain.MeetingSnapshot{}, domain.Validation("maxParticipants must not be negative")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if other, ok := d.byRoom[m.RoomID]; ok && other != m.ID {
		return domain.MeetingSnapshot{}, domain.ErrRoomLinked
	}
	m.Status = domain.MeetingScheduled
	if prev, ok := d.meetings[m.ID]; ok {
		m.Status = prev.Status
		if prev.RoomID != m.RoomID {
			delete(d.byRoom, prev.RoomID)
		}
	}
	d.meetings[m.ID] = &m
	d.byRoom[m.RoomID] = m.ID
	log.Info().Str("module", "meeting").Str("meeting", string(m.ID)).Str("room", string(m.RoomID)).Msg("meeting stored")
	return m, nil
}

func (d *Directory) Get(id domain.MeetingID) (domain.MeetingSnapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.meetings[id]
	if !ok {
		return domain.MeetingSnapshot{}, domain.ErrMeetingNotFound
	}
	return *m, nil
}

func (d *Directory) List() []domain.MeetingSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.MeetingSnapshot, 0, len(d.meetings))
	for _, m := range d.meetings {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup implements core.MeetingBridge. Unlinked room ids yield (nil, nil).
func (d *Directory) Lookup(ctx context.Context, roomID domain.RoomID) (*domain.MeetingSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byRoom[roomID]
	if !ok {
		return nil, nil
	}
	m := *d.meetings[id]
	return &m, nil
}

// SetStatus implements core.MeetingBridge. Ended is terminal; setting the
// current status again is a no-op.
func (d *Directory) SetStatus(ctx context.Context, id domain.MeetingID, status domain.MeetingStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch status {
	case domain.MeetingScheduled, domain.MeetingLive, domain.MeetingEnded:
	default:
		return domain.Validation("unknown meeting status")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	if m.Status == status {
		return nil
	}
	if m.Status == domain.MeetingEnded {
		return domain.ErrInvalidTransition
	}
	m.Status = status
	log.Info().Str("module", "meeting").Str("meeting", string(id)).Str("status", string(status)).Msg("meeting status changed")
	return nil
}

// Start marks a meeting live.
func (d *Directory) Start(ctx context.Context, id domain.MeetingID) (domain.MeetingSnapshot, error) {
	if err := d.SetStatus(ctx, id, domain.MeetingLive); err != nil {
		return domain.MeetingSnapshot{}, err
	}
	return d.Get(id)
}
