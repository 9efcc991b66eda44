package contentsite

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/eringen/contentsite/events"
)

const (
	liveWriteWait    = 10 * time.Second
	livePingInterval = 30 * time.Second
	refreshMessage   = "refresh"
)

// liveHub fans publish events out to open preview tabs so they reload when
// content changes.
type liveHub struct {
	mu      sync.Mutex
	clients map[chan events.Event]struct{}
	closed  bool
	cancel  func()
	logger  *slog.Logger
}

func newLiveHub(logger *slog.Logger) *liveHub {
	return &liveHub{clients: make(map[chan events.Event]struct{}), logger: logger}
}

// Subscribe forwards every event on sub to the connected clients.
func (h *liveHub) Subscribe(sub events.Subscriber) error {
	cancel, err := sub.Subscribe(h.broadcast)
	if err != nil {
		return err
	}
	h.cancel = cancel
	return nil
}

func (h *liveHub) broadcast(ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		// A client that has not drained the previous event reloads anyway.
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *liveHub) join() (chan events.Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan events.Event, 1)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *liveHub) leave(ch chan events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// Len returns the number of connected clients.
func (h *liveHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops listening for events.
func (h *liveHub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// handleLivePreview upgrades a preview tab to a websocket that receives
// "refresh" whenever content is published.
func (a *App) handleLivePreview(c echo.Context) error {
	if !IsDraft(c) {
		return echo.NewHTTPError(http.StatusForbidden, "preview mode required")
	}
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		// Accept has already written the response.
		a.Logger.Warn("Live preview upgrade failed", "error", err)
		return nil
	}
	defer conn.CloseNow()

	ch, ok := a.live.join()
	if !ok {
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return nil
	}
	defer a.live.leave(ch)

	// Clients never send; CloseRead handles control frames and ends ctx
	// when the peer goes away.
	ctx := conn.CloseRead(c.Request().Context())
	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "shutting down")
				return nil
			}
			a.Logger.Debug("Live preview refresh", "tag", ev.Tag)
			if err := writeLive(ctx, conn, refreshMessage); err != nil {
				return nil
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, liveWriteWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return nil
			}
		}
	}
}

func writeLive(ctx context.Context, conn *websocket.Conn, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, liveWriteWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(msg))
}
