package domain

import "time"

const (
	MaxMessageLen  = 4000
	MaxPollOptions = 10
)

type ChatMessage struct {
	ID         string    `json:"id"`
	RoomID     RoomID    `json:"roomId"`
	SenderID   UserID    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

type ReactionEvent struct {
	ID         string    `json:"id"`
	RoomID     RoomID    `json:"roomId"`
	SenderID   UserID    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Emoji      string    `json:"emoji"`
	SentAt     time.Time `json:"sentAt"`
}

// HandRaise exists only while the hand is up.
type HandRaise struct {
	ParticipantID UserID    `json:"userId"`
	Name          string    `json:"name"`
	RaisedAt      time.Time `json:"raisedAt"`
	Acknowledged  bool      `json:"acknowledged"`
}

type Poll struct {
	ID        string         `json:"id"`
	RoomID    RoomID         `json:"roomId"`
	Question  string         `json:"question"`
	Options   []string       `json:"options"`
	Counts    []int          `json:"counts"`
	Votes     map[UserID]int `json:"-"`
	CreatedBy UserID         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	ClosesAt  *time.Time     `json:"closesAt,omitempty"`
	Closed    bool           `json:"closed"`
}

// Snapshot returns a deep copy with Counts tallied from Votes.
func (p *Poll) Snapshot() Poll {
	out := *p
	out.Options = append([]string(nil), p.Options...)
	out.Votes = make(map[UserID]int, len(p.Votes))
	out.Counts = make([]int, len(p.Options))
	for uid, opt := range p.Votes {
		out.Votes[uid] = opt
		if opt >= 0 && opt < len(out.Counts) {
			out.Counts[opt]++
		}
	}
	if p.ClosesAt != nil {
		t := *p.ClosesAt
		out.ClosesAt = &t
	}
	return out
}
