package core

import (
	"sort"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// ModerationStore is the process-wide block and suspension list.
// Suspensions expire lazily: nothing sweeps them, readers compare against the clock.
type ModerationStore struct {
	entries map[domain.UserID]*domain.ModerationEntry
	now     Clock
}

func NewModerationStore(now Clock) *ModerationStore {
	return &ModerationStore{
		entries: make(map[domain.UserID]*domain.ModerationEntry),
		now:     now,
	}
}

func (m *ModerationStore) IsBlocked(id domain.UserID) bool {
	e, ok := m.entries[id]
	return ok && e.Blocked
}

func (m *ModerationStore) IsSuspended(id domain.UserID) bool {
	e, ok := m.entries[id]
	return ok && e.SuspendedAt(m.now.now())
}

// Check returns the moderation error that bars id from joining, if any.
func (m *ModerationStore) Check(id domain.UserID) error {
	if m.IsBlocked(id) {
		return domain.ErrBlocked
	}
	if m.IsSuspended(id) {
		return domain.ErrSuspended
	}
	return nil
}

func (m *ModerationStore) Block(id domain.UserID, reason string) domain.ModerationEntry {
	e := m.entry(id)
	e.Blocked = true
	e.BlockReason = reason
	e.BlockedAt = m.now.now()
	log.Info().Str("module", "core.moderation").Str("user", string(id)).Str("reason", reason).Msg("blocked")
	return *e
}

func (m *ModerationStore) Unblock(id domain.UserID) bool {
	e, ok := m.entries[id]
	if !ok || !e.Blocked {
		return false
	}
	e.Blocked = false
	e.BlockReason = ""
	e.BlockedAt = time.Time{}
	m.gc(id)
	log.Info().Str("module", "core.moderation").Str("user", string(id)).Msg("unblocked")
	return true
}

func (m *ModerationStore) Suspend(id domain.UserID, d time.Duration, reason string) domain.ModerationEntry {
	e := m.entry(id)
	e.SuspendedUntil = m.now.now().Add(d)
	e.SuspendReason = reason
	log.Info().Str("module", "core.moderation").Str("user", string(id)).Dur("for", d).Str("reason", reason).Msg("suspended")
	return *e
}

func (m *ModerationStore) Unsuspend(id domain.UserID) bool {
	e, ok := m.entries[id]
	if !ok || e.SuspendedUntil.IsZero() {
		return false
	}
	e.SuspendedUntil = time.Time{}
	e.SuspendReason = ""
	m.gc(id)
	return true
}

func (m *ModerationStore) Entry(id domain.UserID) (domain.ModerationEntry, bool) {
	e, ok := m.entries[id]
	if !ok {
		return domain.ModerationEntry{}, false
	}
	return m.current(e), true
}

// List returns active entries ordered by user id. Expired suspensions are reported as cleared.
func (m *ModerationStore) List() []domain.ModerationEntry {
	out := make([]domain.ModerationEntry, 0, len(m.entries))
	for _, e := range m.entries {
		cur := m.current(e)
		if !cur.Blocked && cur.SuspendedUntil.IsZero() {
			continue
		}
		out = append(out, cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (m *ModerationStore) current(e *domain.ModerationEntry) domain.ModerationEntry {
	out := *e
	if !out.SuspendedAt(m.now.now()) {
		out.SuspendedUntil = time.Time{}
		out.SuspendReason = ""
	}
	return out
}

func (m *ModerationStore) entry(id domain.UserID) *domain.ModerationEntry {
	e, ok := m.entries[id]
	if !ok {
		e = &domain.ModerationEntry{UserID: id}
		m.entries[id] = e
	}
	return e
}

func (m *ModerationStore) gc(id domain.UserID) {
	if e, ok := m.entries[id]; ok && !e.Blocked && e.SuspendedUntil.IsZero() {
		delete(m.entries, id)
	}
}
