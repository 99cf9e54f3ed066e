package domain

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleHost        Role = "host"
	RoleModerator   Role = "moderator"
	RoleCoHost      Role = "co-host"
	RolePanelist    Role = "panelist"
	RoleParticipant Role = "participant"
	RoleAttendee    Role = "attendee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleModerator, RoleCoHost, RolePanelist, RoleParticipant, RoleAttendee:
		return true
	}
	return false
}

// Capability is a bit set of role-derived permissions.
type Capability uint16

const (
	CapMuteOthers Capability = 1 << iota
	CapRemoveParticipant
	CapManagePolls
	CapManageWhiteboard
	CapManageBreakout
	CapManageRecording
	CapScreenShare
)

func (c Capability) Has(want Capability) bool { return c&want == want }

// Permissions is the JSON shape of a Capability set.
type Permissions struct {
	CanMuteOthers        bool `json:"canMuteOthers"`
	CanRemoveParticipant bool `json:"canRemoveParticipants"`
	CanManagePolls       bool `json:"canManagePolls"`
	CanManageWhiteboard  bool `json:"canManageWhiteboard"`
	CanManageBreakout    bool `json:"canManageBreakoutRooms"`
	CanManageRecording   bool `json:"canManageRecording"`
	CanScreenShare       bool `json:"canScreenShare"`
}

func (c Capability) Permissions() Permissions {
	return Permissions{
		CanMuteOthers:        c.Has(CapMuteOthers),
		CanRemoveParticipant: c.Has(CapRemoveParticipant),
		CanManagePolls:       c.Has(CapManagePolls),
		CanManageWhiteboard:  c.Has(CapManageWhiteboard),
		CanManageBreakout:    c.Has(CapManageBreakout),
		CanManageRecording:   c.Has(CapManageRecording),
		CanScreenShare:       c.Has(CapScreenShare),
	}
}

// Participant is one identity's membership in one room.
// ConnID is empty while the participant waits out a reconnect grace period.
type Participant struct {
	ID            UserID          `json:"id"`
	ConnID        ConnID          `json:"-"`
	Name          string          `json:"name"`
	Data          json.RawMessage `json:"userData,omitempty"`
	Role          Role            `json:"role"`
	Caps          Capability      `json:"-"`
	Permissions   Permissions     `json:"permissions"`
	AudioMuted    bool            `json:"audioMuted"`
	VideoMuted    bool            `json:"videoMuted"`
	ScreenSharing bool            `json:"screenSharing"`
	HandRaised    bool            `json:"handRaised"`
	Suspended     bool            `json:"suspended"`
	Connected     bool            `json:"connected"`
	JoinedAt      time.Time       `json:"joinedAt"`
	Seq           uint64          `json:"-"`
}
