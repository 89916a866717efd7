package rest

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/pingme/pingme-server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsConn adapts a websocket connection to the dispatcher's Conn
// surface. Emit serialises writes; gorilla connections allow only one
// concurrent writer.
type wsConn struct {
	id string
	ws *websocket.Conn

	mu sync.Mutex
}

func newWsConn(ws *websocket.Conn) *wsConn {
	return &wsConn{
		id: uuid.New().String(),
		ws: ws,
	}
}

func (c *wsConn) ID() string {
	return c.id
}

func (c *wsConn) Emit(ev pingme.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(ev)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	return h.allowedOrigins[r.Header.Get("Origin")]
}

// handleRealtime upgrades the request and feeds the connection's
// events to the dispatch engine in arrival order. Disconnect cleanup
// runs exactly once, whatever ended the read loop.
func (h *Handler) handleRealtime(c echo.Context) error {
	up := upgrader
	up.CheckOrigin = h.checkOrigin

	ws, err := up.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()
	conn := newWsConn(ws)
	defer h.dispatch.HandleDisconnect(ctx, conn)

	for {
		var ev pingme.Event
		err := ws.ReadJSON(&ev)
		if err != nil {

			wsErr, ok := err.(*websocket.CloseError)
			if ok {
				if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
					slog.DebugContext(
						ctx, "WebSocket closed",
						slog.String("error", wsErr.Error()),
						slog.String("module", "socket"),
					)
				}
			} else {
				slog.DebugContext(
					ctx, "Error reading message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
			}
			return nil
		}

		h.dispatch.HandleEvent(ctx, conn, ev)
	}
}
