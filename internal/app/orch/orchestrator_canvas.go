package orch

import (
	"github.com/dkeye/canvas/internal/app"
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

// scopeOf must be called with o.mu held.
func (o *Orchestrator) scopeOf(sid domain.ConnID) app.Scope {
	if o.Options.Scope != ScopeRoom {
		return app.GlobalScope
	}
	if room, ok := o.Registry.RoomOf(sid); ok {
		return app.RoomScope(room)
	}
	return app.GlobalScope
}

// canvasOf resolves the sender's scope and the connections viewing it.
func (o *Orchestrator) canvasOf(sid domain.ConnID) (app.Scope, []core.Session) {
	if o.Options.Scope != ScopeRoom {
		return app.GlobalScope, o.Registry.All()
	}
	room, ok := o.Registry.RoomOf(sid)
	if !ok {
		return app.GlobalScope, o.Registry.InRoom("")
	}
	return app.RoomScope(room), o.Registry.InRoom(room)
}

// Draw records ev in the sender's scope and forwards it to everyone else there.
func (o *Orchestrator) Draw(sid domain.ConnID, ev domain.StrokeEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	o.lock()
	defer o.unlock()
	if !o.Registry.Exists(sid) {
		return nil
	}
	scope, viewers := o.canvasOf(sid)
	o.History.Append(scope, ev)
	n := o.emit(viewers, sid, core.TypeDrawing, ev)
	log.Trace().Str("module", "orch").Str("sid", string(sid)).Str("scope", string(scope)).Int("sent_to", n).Msg("stroke")
	return nil
}

// Clear wipes the sender's scope and tells every viewer, sender included.
func (o *Orchestrator) Clear(sid domain.ConnID) {
	o.lock()
	defer o.unlock()
	if !o.Registry.Exists(sid) {
		return
	}
	scope, viewers := o.canvasOf(sid)
	o.History.Clear(scope)
	n := o.emit(viewers, "", core.TypeClearCanvas, nil)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("scope", string(scope)).Int("sent_to", n).Msg("canvas cleared")
}

// replay sends the current scope history to sid. Only used in room mode,
// when a connection switches canvas.
func (o *Orchestrator) replay(sid domain.ConnID) {
	if o.Options.Scope != ScopeRoom {
		return
	}
	o.emitTo(sid, core.TypeCanvasHistory, o.History.Snapshot(o.scopeOf(sid)))
}
