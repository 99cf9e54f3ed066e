package core

import (
	"encoding/json"
	"sort"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// HostChange reports an automatic or explicit host transfer.
type HostChange struct {
	From domain.UserID `json:"previousHostId"`
	To   domain.UserID `json:"newHostId"`
}

type JoinRequest struct {
	ID       domain.UserID
	Conn     domain.ConnID
	Name     string
	Data     json.RawMessage
	Password string
}

// Room is the live aggregate for one session. It holds no locks: every
// method must run on the dispatcher goroutine that owns the registry.
type Room struct {
	meta domain.Room

	participants map[domain.UserID]*domain.Participant
	byConn       map[domain.ConnID]domain.UserID
	seq          uint64

	chat      []domain.ChatMessage
	reactions []domain.ReactionEvent
	hands     map[domain.UserID]*domain.HandRaise
	polls     []*domain.Poll
	active    *domain.Poll

	now       Clock
	suspended func(domain.UserID) bool
}

// NewRoom builds an empty room. suspended may be nil when moderation is not wired.
func NewRoom(meta domain.Room, now Clock, suspended func(domain.UserID) bool) *Room {
	if meta.Recording == "" {
		meta.Recording = domain.RecordingStopped
	}
	if meta.Kind == "" {
		meta.Kind = domain.RoomStandard
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now.now()
	}
	if suspended == nil {
		suspended = func(domain.UserID) bool { return false }
	}
	return &Room{
		meta:         meta,
		participants: make(map[domain.UserID]*domain.Participant),
		byConn:       make(map[domain.ConnID]domain.UserID),
		hands:        make(map[domain.UserID]*domain.HandRaise),
		now:          now,
		suspended:    suspended,
	}
}

func (r *Room) ID() domain.RoomID                 { return r.meta.ID }
func (r *Room) HostID() domain.UserID             { return r.meta.HostID }
func (r *Room) Settings() domain.RoomSettings     { return r.meta.Settings }
func (r *Room) MeetingID() domain.MeetingID       { return r.meta.MeetingID }
func (r *Room) Recording() domain.RecordingStatus { return r.meta.Recording }
func (r *Room) Size() int                         { return len(r.participants) }
func (r *Room) IsEmpty() bool                     { return len(r.participants) == 0 }

func (r *Room) View() domain.RoomView {
	return domain.RoomView{
		ID:               r.meta.ID,
		Name:             r.meta.Name,
		Kind:             r.meta.Kind,
		HostID:           r.meta.HostID,
		Settings:         r.meta.Settings,
		HasPassword:      r.meta.Settings.Password != "",
		Recording:        r.meta.Recording,
		MeetingID:        r.meta.MeetingID,
		ParticipantCount: len(r.participants),
		CreatedAt:        r.meta.CreatedAt,
	}
}

func (r *Room) Info() domain.RoomInfo {
	return domain.RoomInfo{
		ID:               r.meta.ID,
		Name:             r.meta.Name,
		Kind:             r.meta.Kind,
		HostID:           r.meta.HostID,
		ParticipantCount: len(r.participants),
	}
}

// CheckPassword compares exactly; a missing password against a protected room is a mismatch.
func (r *Room) CheckPassword(password string) error {
	if r.meta.Settings.Password != "" && password != r.meta.Settings.Password {
		return domain.ErrBadPassword
	}
	return nil
}

func (r *Room) AddParticipant(req JoinRequest) (domain.Participant, error) {
	if _, ok := r.participants[req.ID]; ok {
		return domain.Participant{}, domain.ErrAlreadyJoined
	}
	if max := r.meta.Settings.MaxParticipants; max > 0 && len(r.participants) >= max {
		return domain.Participant{}, domain.ErrRoomFull
	}
	if err := r.CheckPassword(req.Password); err != nil {
		return domain.Participant{}, err
	}

	r.seq++
	role := joinRole(req.ID, &r.meta)
	p := &domain.Participant{
		ID:       req.ID,
		ConnID:   req.Conn,
		Name:     req.Name,
		Data:     req.Data,
		Role:     role,
		Caps:     CapabilitiesFor(role),
		JoinedAt: r.now.now(),
		Seq:      r.seq,
	}
	if r.meta.Settings.MuteOnEntry && role != domain.RoleHost {
		p.AudioMuted = true
	}
	r.participants[p.ID] = p
	if p.ConnID != "" {
		r.byConn[p.ConnID] = p.ID
	}
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(p.ID)).Str("role", string(role)).Msg("participant added")
	return r.view(p), nil
}

// RemoveParticipant drops the participant and, if it was the host and others
// remain, promotes a successor.
func (r *Room) RemoveParticipant(id domain.UserID) (domain.Participant, *HostChange, error) {
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, nil, domain.ErrParticipantNotFound
	}
	out := r.view(p)
	delete(r.participants, id)
	if p.ConnID != "" {
		delete(r.byConn, p.ConnID)
	}
	delete(r.hands, id)
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(id)).Msg("participant removed")

	if id != r.meta.HostID || len(r.participants) == 0 {
		return out, nil, nil
	}
	next := r.successor()
	r.promote(next)
	return out, &HostChange{From: id, To: next.ID}, nil
}

// successor picks the earliest-joined co-host, else the earliest-joined participant.
func (r *Room) successor() *domain.Participant {
	var best, bestCoHost *domain.Participant
	for _, p := range r.participants {
		if best == nil || p.Seq < best.Seq {
			best = p
		}
		if p.Role == domain.RoleCoHost && (bestCoHost == nil || p.Seq < bestCoHost.Seq) {
			bestCoHost = p
		}
	}
	if bestCoHost != nil {
		return bestCoHost
	}
	return best
}

func (r *Room) promote(p *domain.Participant) {
	p.Role = domain.RoleHost
	p.Caps = CapabilitiesFor(domain.RoleHost)
	r.meta.HostID = p.ID
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(p.ID)).Msg("host promoted")
}

// SetRole changes a participant's role. Assigning host moves the host role and
// demotes the previous host; the host itself can only lose the role that way.
func (r *Room) SetRole(id domain.UserID, role domain.Role) (domain.Participant, *HostChange, error) {
	if !role.Valid() {
		return domain.Participant{}, nil, domain.Validation("unknown role")
	}
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, nil, domain.ErrParticipantNotFound
	}
	if role == domain.RoleCoHost && !r.meta.Settings.AllowCoHosts {
		return domain.Participant{}, nil, domain.ErrCoHostsDisabled
	}
	if p.Role == domain.RoleHost && role != domain.RoleHost {
		return domain.Participant{}, nil, domain.ErrForbidden
	}
	if p.Role == role {
		return r.view(p), nil, nil
	}

	var change *HostChange
	if role == domain.RoleHost {
		prev := r.meta.HostID
		if old, ok := r.participants[prev]; ok && old.ID != id {
			demoted := domain.RoleParticipant
			if r.meta.Settings.AllowCoHosts {
				demoted = domain.RoleCoHost
			}
			old.Role = demoted
			old.Caps = CapabilitiesFor(demoted)
		}
		r.promote(p)
		change = &HostChange{From: prev, To: id}
	} else {
		p.Role = role
		p.Caps = CapabilitiesFor(role)
	}
	return r.view(p), change, nil
}

// Can evaluates a capability against current settings and moderation state.
func (r *Room) Can(id domain.UserID, want domain.Capability) bool {
	p, ok := r.participants[id]
	if !ok {
		return false
	}
	return EffectiveCapabilities(p, r.meta.Settings, r.suspended(id)).Has(want)
}

func (r *Room) Authorize(id domain.UserID, want domain.Capability) error {
	if _, ok := r.participants[id]; !ok {
		return domain.ErrNotInRoom
	}
	if !r.Can(id, want) {
		if want == domain.CapScreenShare {
			return domain.ErrScreenShareDisabled
		}
		return domain.ErrForbidden
	}
	return nil
}

func (r *Room) Participant(id domain.UserID) (domain.Participant, bool) {
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return r.view(p), true
}

// Participants returns a snapshot in join order.
func (r *Room) Participants() []domain.Participant {
	ps := r.ordered()
	out := make([]domain.Participant, 0, len(ps))
	for _, p := range ps {
		out = append(out, r.view(p))
	}
	return out
}

func (r *Room) ordered() []*domain.Participant {
	ps := make([]*domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Seq < ps[j].Seq })
	return ps
}

func (r *Room) view(p *domain.Participant) domain.Participant {
	out := *p
	suspended := r.suspended(p.ID)
	out.Suspended = suspended
	out.Permissions = EffectiveCapabilities(p, r.meta.Settings, suspended).Permissions()
	_, out.HandRaised = r.hands[p.ID]
	out.Connected = p.ConnID != ""
	return out
}

func (r *Room) SetAudioMuted(id domain.UserID, muted bool) (domain.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	p.AudioMuted = muted
	return r.view(p), nil
}

func (r *Room) SetVideoMuted(id domain.UserID, muted bool) (domain.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	p.VideoMuted = muted
	return r.view(p), nil
}

// SetScreenSharing toggles the flag. Starting requires screen-share capability at call time.
func (r *Room) SetScreenSharing(id domain.UserID, on bool) (domain.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if on && !r.Can(id, domain.CapScreenShare) {
		return domain.Participant{}, domain.ErrScreenShareDisabled
	}
	p.ScreenSharing = on
	return r.view(p), nil
}
