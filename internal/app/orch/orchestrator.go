// Package orch serializes every state transition of the canvas server:
// connection lifecycle, stroke fan-out, and room commands.
package orch

import (
	"errors"
	"sync"

	"github.com/dkeye/canvas/internal/app"
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

type CanvasScope string

const (
	// ScopeGlobal shares one canvas across all connections regardless of rooms.
	ScopeGlobal CanvasScope = "global"
	// ScopeRoom keys history and fan-out by the sender's current room.
	ScopeRoom CanvasScope = "room"
)

type Options struct {
	Scope               CanvasScope
	CleanupOnDisconnect bool
}

// Orchestrator holds one coarse lock around each transition, so no two
// transitions interleave and fan-out order equals history order.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	History  *app.History
	Policy   app.Policy
	Options  Options

	mu      sync.Mutex
	dropped []core.Session
}

func New(reg *app.Registry, rooms *app.RoomManager, history *app.History, policy app.Policy, opts Options) *Orchestrator {
	if opts.Scope == "" {
		opts.Scope = ScopeGlobal
	}
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		History:  history,
		Policy:   policy,
		Options:  opts,
	}
}

func (o *Orchestrator) lock() { o.mu.Lock() }

// unlock releases the transition lock and then applies the backpressure
// policy to recipients that could not keep up.
func (o *Orchestrator) unlock() {
	dropped := o.dropped
	o.dropped = nil
	o.mu.Unlock()

	if o.Policy == nil {
		return
	}
	for _, slow := range dropped {
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow.Meta().ID)).Msg("kicking slow consumer")
			slow.Signal().Close()
		case app.DropFrame, app.NoAction:
		}
	}
}

// send must be called with o.mu held.
func (o *Orchestrator) send(sess core.Session, f core.Frame) {
	err := sess.Signal().TrySend(f)
	if errors.Is(err, core.ErrBackpressure) {
		o.dropped = append(o.dropped, sess)
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sess.Meta().ID)).Msg("send failed")
	}
}

// emit encodes once and sends to every target except skip.
func (o *Orchestrator) emit(targets []core.Session, skip domain.ConnID, typ string, data any) int {
	f, err := core.Encode(typ, "", data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return 0
	}
	n := 0
	for _, sess := range targets {
		if sess.Meta().ID == skip {
			continue
		}
		o.send(sess, f)
		n++
	}
	return n
}

func (o *Orchestrator) emitTo(sid domain.ConnID, typ string, data any) {
	if sess, ok := o.Registry.GetSession(sid); ok {
		o.emit([]core.Session{sess}, "", typ, data)
	}
}

func (o *Orchestrator) broadcastUserCount() {
	o.emit(o.Registry.All(), "", core.TypeUserCount, o.Registry.Count())
}

func (o *Orchestrator) broadcastRoomList() {
	o.emit(o.Registry.All(), "", core.TypeRoomList, o.Rooms.List())
}

// broadcastRoomMembers sends the member list to every connected member.
func (o *Orchestrator) broadcastRoomMembers(room domain.Room) {
	targets := make([]core.Session, 0, len(room.Members))
	for _, id := range room.Members {
		if sess, ok := o.Registry.GetSession(id); ok {
			targets = append(targets, sess)
		}
	}
	o.emit(targets, "", core.TypeRoomMembers, room.Members)
}

// Stats is a read-only view for monitoring.
type Stats struct {
	Users   int `json:"users"`
	Rooms   int `json:"rooms"`
	History int `json:"history"`
}

func (o *Orchestrator) Stats() Stats {
	o.lock()
	defer o.unlock()
	return Stats{
		Users:   o.Registry.Count(),
		Rooms:   o.Rooms.Count(),
		History: o.History.Total(),
	}
}
