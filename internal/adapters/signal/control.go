package signal

import (
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn, env core.Envelope) {
	ctl.sendEvent(conn, core.TypePong, env.ID, nil)
}

// handleWhoAmI tells a client its connection identity, the handle others
// use to invite it.
func (ctl *SignalWSController) handleWhoAmI(sid domain.ConnID, conn *WsSignalConn, env core.Envelope) {
	ctl.sendEvent(conn, core.TypeWhoAmI, env.ID, ctl.Orch.WhoAmI(sid))
}
