package app

import "github.com/dkeye/canvas/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a recipient whose send buffer is full.
type Policy interface {
	OnBackPressure(member core.Session) BackpressureAction
}

// SimplePolicy kicks every slow consumer.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.Session) BackpressureAction {
	return KickMember
}
