package http

import (
	"context"
	"io"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/core"
	logpkg "github.com/vovakirdan/relaychat/internal/log"
	"github.com/vovakirdan/relaychat/internal/proto"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler upgrades HTTP connections and runs a hub session over them.
// Each text frame carries exactly one line.
type WSHandler struct {
	hub          *core.Hub
	maxLineBytes int
	log          *zerolog.Logger

	// sessions counts handlers in flight. Hijacked connections are invisible
	// to http.Server.Shutdown, so Wait covers them.
	sessions sync.WaitGroup
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, maxLineBytes int, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, maxLineBytes: maxLineBytes, log: logpkg.OrNop(logger)}
}

// Wait blocks until every running session has finished or ctx is done.
func (h *WSHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	// Counted before the upgrade, while Shutdown still tracks the connection.
	h.sessions.Add(1)
	defer h.sessions.Done()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	if h.maxLineBytes > 0 {
		conn.SetReadLimit(int64(h.maxLineBytes))
	}

	h.log.Info().Str("remote_addr", r.RemoteAddr).Msg("A new user has joined!")

	if err := h.hub.Serve(r.Context(), newWSLineChannel(conn)); err != nil && r.Context().Err() == nil {
		h.log.Info().Err(err).Str("code", core.ErrorCode(err)).Str("remote_addr", r.RemoteAddr).Msg("ws session ended")
	}
}

// wsLineChannel adapts a WebSocket connection to core.LineChannel.
type wsLineChannel struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func newWSLineChannel(conn *websocket.Conn) *wsLineChannel {
	return &wsLineChannel{conn: conn}
}

func (c *wsLineChannel) ReadLine(ctx context.Context) (string, error) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return "", io.EOF
			}
			return "", err
		}
		if typ != websocket.MessageText {
			continue
		}
		return proto.TrimLine(string(data)), nil
	}
}

func (c *wsLineChannel) WriteLine(ctx context.Context, line string) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, []byte(line))
}

func (c *wsLineChannel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close(websocket.StatusNormalClosure, "closing")
	})
	return c.closeErr
}
