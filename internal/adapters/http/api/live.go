package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/bridge"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

const (
	// maxClientMessage bounds frames read from displays; they only send
	// control frames.
	maxClientMessage = 512
	liveSendBuffer   = 4
)

// liveMessage is the frame pushed to displays on every refresh.
type liveMessage struct {
	Type  string      `json:"type"`
	Board types.Board `json:"board"`
}

// LiveHandler upgrades display connections and drives one bridge per
// socket until either side goes away.
type LiveHandler struct {
	deps     Dependencies
	settings *settings
	upgrader websocket.Upgrader
	base     context.Context
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps Dependencies, s *settings) *LiveHandler {
	h := &LiveHandler{deps: deps, settings: s, base: context.Background()}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *LiveHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(h.settings.allowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.settings.allowedOrigins, origin)
}

// HandleLive handles GET /ws/live?view=&limit=. The first frame is the
// current board; later frames follow change notifications.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	view, err := parseView(r.URL.Query().Get("view"))
	if err != nil {
		writeServiceError(w, r, h.settings.logger, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), h.deps.LeaderboardSize(), h.settings.maxLimit)
	if err != nil {
		writeServiceError(w, r, h.settings.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the client.
		h.settings.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(h.base, cancel)
	defer stop()

	lc := &liveConn{
		conn:     conn,
		send:     make(chan []byte, liveSendBuffer),
		settings: h.settings,
		logger: h.settings.logger.With(
			logger.String("connection_id", uuid.NewString()),
			logger.String("view", view)),
	}

	written := make(chan struct{})
	go func() {
		defer close(written)
		lc.writePump(ctx, cancel)
	}()
	go lc.readPump(cancel)

	b := bridge.New(h.deps, h.deps,
		bridge.WithView(view),
		bridge.WithLimit(limit),
		bridge.WithFilterByEvent(h.settings.filterByEvent),
		bridge.WithLogger(lc.logger))
	if err := b.Run(ctx, lc.push); err != nil && ctx.Err() == nil {
		lc.logger.Warn(ctx, "live display stopped", logger.Error(err))
	}

	cancel()
	<-written
	_ = conn.Close()
}

// liveConn owns one display socket. Only writePump writes data frames.
type liveConn struct {
	conn     *websocket.Conn
	send     chan []byte
	settings *settings
	logger   logger.Logger
}

// push is the bridge sink: it hands the board to writePump.
func (c *liveConn) push(ctx context.Context, b types.Board) error {
	msg, err := json.Marshal(liveMessage{Type: "board", Board: b})
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *liveConn) writePump(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(c.settings.pingInterval)
	defer ticker.Stop()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.settings.writeTimeout))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug(ctx, "failed to write board", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug(ctx, "failed to send ping", logger.Error(err))
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
// Any read error ends the display.
func (c *liveConn) readPump(cancel context.CancelFunc) {
	defer cancel()

	readTimeout := 2 * c.settings.pingInterval
	c.conn.SetReadLimit(maxClientMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug(context.Background(), "unexpected websocket close", logger.Error(err))
			}
			return
		}
	}
}
