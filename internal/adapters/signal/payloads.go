package signal

import "encoding/json"

// Inbound payloads. Field names follow the wire format; validation happens in decode.

type roomPayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type joinPayload struct {
	RoomID   string          `json:"roomId" validate:"required,max=128"`
	UserID   string          `json:"userId" validate:"omitempty,max=64"`
	UserName string          `json:"userName" validate:"required"`
	UserData json.RawMessage `json:"userData"`
	Password string          `json:"password" validate:"max=128"`
}

type endRoomPayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	HostID string `json:"hostId" validate:"required,max=64"`
}

type messagePayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	Text   string `json:"text" validate:"required"`
}

type reactionPayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	Emoji  string `json:"emoji" validate:"required,max=32"`
}

type targetPayload struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	TargetID string `json:"targetId" validate:"required,max=64"`
}

type lowerHandPayload struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	TargetID string `json:"targetId" validate:"omitempty,max=64"`
}

type relayPayload struct {
	RoomID   string          `json:"roomId" validate:"required,max=128"`
	TargetID string          `json:"targetId" validate:"required,max=64"`
	Payload  json.RawMessage `json:"payload" validate:"required"`
}

type togglePayload struct {
	RoomID  string `json:"roomId" validate:"required,max=128"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

type rolePayload struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	TargetID string `json:"targetId" validate:"required,max=64"`
	Role     string `json:"role" validate:"required,oneof=host moderator co-host panelist participant attendee"`
}

type suspendPayload struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	TargetID string `json:"targetId" validate:"required,max=64"`
	Minutes  int    `json:"minutes" validate:"required,gt=0,lte=10080"`
	Reason   string `json:"reason" validate:"max=256"`
}

type blockPayload struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	TargetID string `json:"targetId" validate:"required,max=64"`
	Reason   string `json:"reason" validate:"max=256"`
}

type createPollPayload struct {
	RoomID          string   `json:"roomId" validate:"required,max=128"`
	Question        string   `json:"question" validate:"required,max=500"`
	Options         []string `json:"options" validate:"min=2,max=10,dive,required,max=200"`
	DurationSeconds int      `json:"durationSeconds" validate:"gte=0,lte=86400"`
}

type votePollPayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	PollID string `json:"pollId" validate:"required"`
	Option *int   `json:"option" validate:"required,gte=0"`
}

type pollPayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	PollID string `json:"pollId" validate:"required"`
}
