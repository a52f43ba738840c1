package signal

import (
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleDrawing has no ack; a rejected stroke is reported as an error event.
func (ctl *SignalWSController) handleDrawing(sid domain.ConnID, c *WsSignalConn, env core.Envelope) {
	ev, err := decodeData[domain.StrokeEvent](env)
	if err == nil {
		err = ctl.Orch.Draw(sid, ev)
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("stroke rejected")
		ctl.sendError(c, err)
	}
}

func (ctl *SignalWSController) handleClear(sid domain.ConnID) {
	ctl.Orch.Clear(sid)
}
