package controller

import (
	"net/http"
	"time"

	"artbid-api/internal/platform/logger"
	"artbid-api/internal/service"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
)

const (
	watchWriteWait  = 10 * time.Second
	watchPongWait   = 60 * time.Second
	watchPingPeriod = (watchPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: watchWriteWait,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type watchRoutesHandler struct {
	watchService service.Watch
	log          logger.Logger
}

func newWatchRoutesHandler(outer *echo.Group, services *service.Services, log logger.Logger) *watchRoutesHandler {
	h := &watchRoutesHandler{watchService: services.Watch, log: log}

	outer.GET("/auctions/:auctionId/watch", h.Watch)

	return h
}

// /auctions/:auctionId/watch streams the auction's events over a websocket
// until either side goes away.
func (h *watchRoutesHandler) Watch(c echo.Context) error {
	ctx := c.Request().Context()
	sub, err := h.watchService.Watch(ctx, c.Param("auctionId"))
	if err != nil {
		return respondError(c, err)
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)

		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(watchPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))

				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
