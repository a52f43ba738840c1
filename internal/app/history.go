package app

import (
	"encoding/json"
	"iter"
	"slices"
	"sync"

	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHighWater = 10000
	DefaultLowWater  = 5000
)

// Scope names one canvas. GlobalScope is the shared canvas outside rooms.
type Scope string

const GlobalScope Scope = ""

func RoomScope(id domain.RoomID) Scope { return Scope("room:" + string(id)) }

// History is a capped append-only stroke log per scope.
// Once a log grows past highWater it is cut down to its newest lowWater entries.
type History struct {
	mu        sync.Mutex
	highWater int
	lowWater  int
	logs      map[Scope][]domain.StrokeEvent
}

func NewHistory(highWater, lowWater int) *History {
	if highWater <= 0 {
		highWater = DefaultHighWater
	}
	if lowWater <= 0 || lowWater >= highWater {
		lowWater = highWater / 2
	}
	return &History{
		highWater: highWater,
		lowWater:  lowWater,
		logs:      make(map[Scope][]domain.StrokeEvent),
	}
}

// Append adds ev to the scope log and returns how many old entries were evicted.
func (h *History) Append(scope Scope, ev domain.StrokeEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	l := append(h.logs[scope], ev)
	evicted := 0
	if len(l) > h.highWater {
		evicted = len(l) - h.lowWater
		l = slices.Clone(l[evicted:])
		log.Debug().Str("module", "app.history").Str("scope", string(scope)).Int("evicted", evicted).Msg("history truncated")
	}
	h.logs[scope] = l
	return evicted
}

// Snapshot returns a point-in-time copy of the scope log.
func (h *History) Snapshot(scope Scope) Replay {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Replay{events: slices.Clone(h.logs[scope])}
}

func (h *History) Clear(scope Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.logs[scope]; ok {
		h.logs[scope] = nil
	}
}

// Drop forgets the scope entirely.
func (h *History) Drop(scope Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.logs, scope)
}

func (h *History) Len(scope Scope) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.logs[scope])
}

// Total counts stored events across all scopes.
func (h *History) Total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, l := range h.logs {
		n += len(l)
	}
	return n
}

// Replay is an immutable ordered view of a history log.
// It can be iterated any number of times.
type Replay struct {
	events []domain.StrokeEvent
}

func (r Replay) Len() int { return len(r.events) }

func (r Replay) All() iter.Seq[domain.StrokeEvent] {
	return func(yield func(domain.StrokeEvent) bool) {
		for _, ev := range r.events {
			if !yield(ev) {
				return
			}
		}
	}
}

// MarshalJSON always emits an array, never null.
func (r Replay) MarshalJSON() ([]byte, error) {
	if r.events == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.events)
}
