package core

import "github.com/dkeye/Huddle/internal/domain"

const staffCaps = domain.CapMuteOthers |
	domain.CapRemoveParticipant |
	domain.CapManagePolls |
	domain.CapManageWhiteboard |
	domain.CapScreenShare

var roleCaps = map[domain.Role]domain.Capability{
	domain.RoleHost:        staffCaps | domain.CapManageBreakout | domain.CapManageRecording,
	domain.RoleModerator:   staffCaps,
	domain.RoleCoHost:      staffCaps,
	domain.RolePanelist:    0,
	domain.RoleParticipant: 0,
	domain.RoleAttendee:    0,
}

// CapabilitiesFor is the fixed part of a role's permissions, assigned on join and role change.
func CapabilitiesFor(role domain.Role) domain.Capability {
	return roleCaps[role]
}

// EffectiveCapabilities adds the settings-gated screen-share bit and applies the
// attendee baseline to suspended participants. It is evaluated at use time.
func EffectiveCapabilities(p *domain.Participant, s domain.RoomSettings, suspended bool) domain.Capability {
	if suspended {
		return roleCaps[domain.RoleAttendee]
	}
	caps := p.Caps
	switch p.Role {
	case domain.RoleParticipant, domain.RolePanelist:
		if s.AllowScreenShare {
			caps |= domain.CapScreenShare
		}
	}
	return caps
}

func joinRole(id domain.UserID, meta *domain.Room) domain.Role {
	if id == meta.HostID {
		return domain.RoleHost
	}
	if meta.Kind == domain.RoomWebinar {
		return domain.RoleAttendee
	}
	return domain.RoleParticipant
}
