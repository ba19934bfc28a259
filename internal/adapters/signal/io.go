package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Estimate/internal/app/orch"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump owns the connection's lifetime: when it returns, the member
// bound to this connection goes offline in every room.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.ID())).Msg("readPump closing")
		ctl.Orch.Disconnect(c.ID())
		ctl.limiter.Forget(c.ID())
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(c.ID())).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
			ctl.handleSignal(c, data)
		}
	}
}

// envelope is the wire form of an inbound frame. "value" is accepted as an
// alias of "estimate".
type envelope struct {
	orch.Action
	Value *domain.Estimate `json:"value,omitempty"`
}

func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.ID())).Msg("bad json")
		ctl.rejectBadPayload(c)
		return
	}
	if env.Value != nil && env.Estimate == "" {
		env.Estimate = *env.Value
	}

	if env.Type == controlPing {
		ctl.handlePing(c)
		return
	}
	if !ctl.limiter.Allow(c.ID()) {
		ctl.rejectRateLimited(c, env.Type)
		return
	}
	ctl.Orch.Dispatch(c.ID(), env.Action)
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
