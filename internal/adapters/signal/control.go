package signal

import (
	"time"

	"github.com/dkeye/Estimate/internal/app/orch"
)

// Control replies are answered by the transport itself and never reach the
// gateway, so they are not ordered with room notifications.
const (
	controlPing = "ping"
	controlPong = "pong"

	reasonBadPayload  = "bad_payload"
	reasonRateLimited = "rate_limited"
)

type pong struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
}

// handlePing answers the application-level keepalive browsers send when
// they cannot see websocket ping frames. serverTime is unix millis.
func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, pong{Type: controlPong, ServerTime: time.Now().UnixMilli()})
}

func (ctl *SignalWSController) rejectBadPayload(conn *WsSignalConn) {
	ctl.sendJSON(conn, orch.Error{Type: orch.EventError, Message: reasonBadPayload})
}

func (ctl *SignalWSController) rejectRateLimited(conn *WsSignalConn, action orch.ActionType) {
	ctl.sendJSON(conn, orch.Error{Type: orch.EventError, Action: action, Message: reasonRateLimited})
}
