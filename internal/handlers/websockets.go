package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sentinel_cam/internal/models"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxMsgSize   = 1 << 12
	defaultPoll  = time.Second
	minPoll      = 50 * time.Millisecond
	maxPoll      = 10 * time.Second
	envStatus    = "status"
	envChange    = "transition"
	envError     = "error"
	errStatusMsg = "device state unavailable"
)

// wsEnvelope frames every message on the state stream.
type wsEnvelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// wsTransition is sent when the lifecycle moved to another state between
// two polls of the snapshot.
type wsTransition struct {
	From   string              `json:"from"`
	To     string              `json:"to"`
	Status models.DeviceStatus `json:"status"`
}

// The diagnostics port is only reachable on the device's local link.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Lifecycle state stream
// @Description  WebSocket. Sends the current snapshot, then a "transition" message whenever the controller changes state. Poll period is set with ?interval=500ms (50ms..10s).
// @Tags         device
// @Param        interval  query  string  false  "poll period"  example(1s)
// @Router       /ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	poll := pollInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.drain(conn, done)

	ctx := c.Request.Context()
	last, ok := h.pushStatus(ctx, conn)
	if !ok {
		return
	}

	ticker := time.NewTicker(poll)
	ping := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			st, err := h.services.Monitoring.GetStatus(ctx)
			if err != nil {
				h.closeWithError(conn, err)
				return
			}
			if st.State == last.State {
				last = st
				continue
			}
			msg := wsEnvelope{Type: envChange, Data: wsTransition{From: last.State, To: st.State, Status: st}}
			if err := writeEnvelope(conn, msg); err != nil {
				return
			}
			last = st
		}
	}
}

// pushStatus sends the opening snapshot.
func (h *Handler) pushStatus(ctx context.Context, conn *websocket.Conn) (models.DeviceStatus, bool) {
	st, err := h.services.Monitoring.GetStatus(ctx)
	if err != nil {
		h.closeWithError(conn, err)
		return st, false
	}
	if err := writeEnvelope(conn, wsEnvelope{Type: envStatus, Data: st}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "err", err)
		}
		return st, false
	}
	return st, true
}

func (h *Handler) closeWithError(conn *websocket.Conn, err error) {
	if h.log != nil {
		h.log.Errorw("ws_get_status_failed", "err", err)
	}
	_ = writeEnvelope(conn, wsEnvelope{Type: envError, Error: errStatusMsg})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

// pollInterval reads ?interval=, falling back to the default when it is
// missing, malformed or out of bounds.
func pollInterval(c *gin.Context) time.Duration {
	d, err := time.ParseDuration(c.Query("interval"))
	if err != nil || d < minPoll || d > maxPoll {
		return defaultPoll
	}
	return d
}

// drain consumes client frames so control messages are processed and a
// disconnect is noticed.
func (h *Handler) drain(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
