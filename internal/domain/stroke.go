package domain

import (
	"fmt"
	"math"
)

type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseContinue Phase = "continue"
)

// StrokeEvent is one point of a stroke. Ordering is arrival order within a scope.
type StrokeEvent struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Tool  Tool    `json:"tool"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
	Phase Phase   `json:"phase"`
}

func (e StrokeEvent) Validate() error {
	if math.IsNaN(e.X) || math.IsNaN(e.Y) || math.IsInf(e.X, 0) || math.IsInf(e.Y, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidPayload)
	}
	switch e.Tool {
	case ToolPen, ToolEraser:
	default:
		return fmt.Errorf("%w: unknown tool %q", ErrInvalidPayload, e.Tool)
	}
	switch e.Phase {
	case PhaseStart, PhaseContinue:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidPayload, e.Phase)
	}
	if !(e.Size > 0) || math.IsInf(e.Size, 0) {
		return fmt.Errorf("%w: size must be positive", ErrInvalidPayload)
	}
	return nil
}
