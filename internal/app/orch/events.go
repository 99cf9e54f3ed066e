package orch

import (
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/pion/webrtc/v4"
)

// Outbound event names.
const (
	EvConnectionConfirmed = "connection-confirmed"
	EvJoinedRoom          = "joined-room"
	EvJoinRejected        = "join-rejected"
	EvRoomParticipants    = "room-participants"
	EvUserJoined          = "user-joined"
	EvUserLeft            = "user-left"
	EvNewMessage          = "new-message"
	EvNewReaction         = "new-reaction"
	EvHandRaised          = "hand-raised"
	EvHandLowered         = "hand-lowered"
	EvHandAcknowledged    = "hand-acknowledged"
	EvAudioToggled        = "audio-toggled"
	EvVideoToggled        = "video-toggled"
	EvScreenShareStarted  = "screen-share-started"
	EvScreenShareStopped  = "screen-share-stopped"
	EvParticipantMuted    = "participant-muted"
	EvRemovedFromRoom     = "removed-from-room"
	EvHostChanged         = "host-changed"
	EvRoleChanged         = "role-changed"
	EvRoomEnded           = "room-ended"
	EvPollCreated         = "poll-created"
	EvPollUpdated         = "poll-updated"
	EvPollClosed          = "poll-closed"
	EvRecordingStatus     = "recording-status"
	EvError               = "error"
	EvPong                = "pong"
)

// Negotiation kinds forwarded by the relay.
const (
	KindOffer     = "webrtc-offer"
	KindAnswer    = "webrtc-answer"
	KindCandidate = "ice-candidate"
)

// Leave reasons carried on user-left and removed-from-room.
const (
	ReasonLeft         = "left"
	ReasonDisconnected = "disconnected"
	ReasonRemoved      = "removed"
	ReasonBlocked      = "blocked"
	ReasonSwitched     = "switched-room"
	ReasonEndedByHost  = "ended-by-host"
	ReasonEndedByAdmin = "ended-by-admin"
)

type ConnectionConfirmed struct {
	Type         string             `json:"type"`
	ConnectionID domain.ConnID      `json:"connectionId"`
	ICEServers   []webrtc.ICEServer `json:"iceServers"`
}

type JoinedRoom struct {
	Type         string                 `json:"type"`
	Room         domain.RoomView        `json:"room"`
	Self         domain.Participant     `json:"self"`
	Participants []domain.Participant   `json:"participants"`
	ChatHistory  []domain.ChatMessage   `json:"chatHistory"`
	HandRaises   []domain.HandRaise     `json:"handRaises"`
	ActivePoll   *domain.Poll           `json:"activePoll,omitempty"`
	Recording    domain.RecordingStatus `json:"recordingStatus"`
	Reconnected  bool                   `json:"reconnected"`
}

type JoinRejected struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	Reason  string        `json:"reason"`
	Message string        `json:"message,omitempty"`
}

type RoomParticipants struct {
	Type         string               `json:"type"`
	RoomID       domain.RoomID        `json:"roomId"`
	HostID       domain.UserID        `json:"hostId"`
	Participants []domain.Participant `json:"participants"`
}

type UserJoined struct {
	Type        string             `json:"type"`
	RoomID      domain.RoomID      `json:"roomId"`
	Participant domain.Participant `json:"participant"`
}

type UserLeft struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
	Name   string        `json:"name"`
	Reason string        `json:"reason"`
}

type NewMessage struct {
	Type    string             `json:"type"`
	RoomID  domain.RoomID      `json:"roomId"`
	Message domain.ChatMessage `json:"message"`
}

type NewReaction struct {
	Type     string               `json:"type"`
	RoomID   domain.RoomID        `json:"roomId"`
	Reaction domain.ReactionEvent `json:"reaction"`
}

type HandEvent struct {
	Type   string            `json:"type"`
	RoomID domain.RoomID     `json:"roomId"`
	UserID domain.UserID     `json:"userId"`
	ByID   domain.UserID     `json:"byId,omitempty"`
	Hand   *domain.HandRaise `json:"hand,omitempty"`
}

type MediaToggled struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	UserID  domain.UserID `json:"userId"`
	Enabled bool          `json:"enabled"`
}

type ScreenShare struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

type ParticipantMuted struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	TargetID domain.UserID `json:"targetId"`
	ByID     domain.UserID `json:"byId"`
}

type RemovedFromRoom struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Reason string        `json:"reason"`
	ByID   domain.UserID `json:"byId,omitempty"`
}

type HostChanged struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	core.HostChange
}

type RoleChanged struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	TargetID domain.UserID `json:"targetId"`
	Role     domain.Role   `json:"role"`
	ByID     domain.UserID `json:"byId"`
}

type RoomEnded struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Reason string        `json:"reason"`
}

type PollEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Poll   domain.Poll   `json:"poll"`
}

type RecordingStatus struct {
	Type   string                 `json:"type"`
	RoomID domain.RoomID          `json:"roomId"`
	Status domain.RecordingStatus `json:"status"`
	ByID   domain.UserID          `json:"byId,omitempty"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Event   string `json:"event,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// NewErrorEvent converts a handler error into the unicast error frame.
func NewErrorEvent(event string, err error) ErrorEvent {
	return ErrorEvent{
		Type:    EvError,
		Event:   event,
		Reason:  domain.ReasonOf(err),
		Message: err.Error(),
	}
}
