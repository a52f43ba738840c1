package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/canvas/internal/app/orch"
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), time.Now().Add(writeWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.Disconnect(sid)
		if ctl.limiter != nil {
			ctl.limiter.Forget(sid)
		}
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.pongWait()))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid domain.ConnID, c *WsSignalConn, data []byte) {
	env, err := core.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
		return
	}

	switch env.Type {
	case core.TypeDrawing:
		ctl.handleDrawing(sid, c, env)
	case core.TypeClearCanvas:
		ctl.handleClear(sid)
	case core.TypeCreateRoom:
		ctl.handleCreateRoom(sid, c, env)
	case core.TypeInvite:
		ctl.handleInvite(sid, c, env)
	case core.TypeJoinRoom:
		ctl.handleJoin(sid, c, env)
	case core.TypeLeaveRoom:
		ctl.handleLeave(sid, c, env)
	case core.TypeDeleteRoom:
		ctl.handleDelete(sid, c, env)
	case core.TypeGetRoomList:
		ctl.handleRoomList(c, env)
	case core.TypePing:
		ctl.handlePing(c, env)
	case core.TypeWhoAmI:
		ctl.handleWhoAmI(sid, c, env)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidPayload, env.Type))
	}
}

// decodeData unmarshals the envelope payload into T.
func decodeData[T any](env core.Envelope) (T, error) {
	var p T
	if len(env.Data) == 0 {
		return p, fmt.Errorf("%w: missing data", domain.ErrInvalidPayload)
	}
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return p, nil
}

func (ctl *SignalWSController) sendEvent(c core.SignalConnection, typ, id string, v any) {
	f, err := core.Encode(typ, id, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendEvent encode")
		return
	}
	if err := c.TrySend(f); err != nil && !errors.Is(err, core.ErrConnClosed) {
		log.Warn().Err(err).Str("module", "signal").Str("type", typ).Msg("sendEvent")
	}
}

func (ctl *SignalWSController) ack(c core.SignalConnection, id string, v any) {
	ctl.sendEvent(c, core.TypeAck, id, v)
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, err error) {
	ctl.sendEvent(c, core.TypeError, "", errorPayload{Error: orch.ErrorCode(err), Message: err.Error()})
}
