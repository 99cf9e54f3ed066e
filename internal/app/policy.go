package app

import "github.com/dkeye/Huddle/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(room domain.RoomID, conn domain.ConnID) BackpressureAction
}

// SimplePolicy disconnects a consumer whose buffer is full; it will rejoin with a fresh snapshot.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, domain.ConnID) BackpressureAction {
	return KickMember
}
