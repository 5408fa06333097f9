package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"StockX/internal/domain/models"
	xlogger "StockX/pkg/logger"
	"StockX/pkg/util"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// ProgressSource is the subscribe side of the training progress hub.
type ProgressSource interface {
	Subscribe(symbol string) (<-chan models.TrainingProgress, func())
	Last(symbol string) (models.TrainingProgress, bool)
}

// ProgressHandler streams training progress of one symbol over a
// websocket until the client goes away.
type ProgressHandler struct {
	logger   *xlogger.Logger
	hub      ProgressSource
	upgrader websocket.Upgrader
}

func NewProgressHandler(logger *xlogger.Logger, hub ProgressSource) *ProgressHandler {
	return &ProgressHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ProgressHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/train/:symbol/progress", h.Stream)
}

func (h *ProgressHandler) Stream(c echo.Context) error {
	sym := util.NormalizeSymbol(c.Param("symbol"))
	if sym == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol is required")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.String("symbol", sym), xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	updates, unsubscribe := h.hub.Subscribe(sym)
	defer unsubscribe()

	// The read loop only handles control frames and notices the close.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if last, ok := h.hub.Last(sym); ok {
		if err := h.write(conn, last); err != nil {
			return nil
		}
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case p, ok := <-updates:
			if !ok {
				return nil
			}
			if err := h.write(conn, p); err != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *ProgressHandler) write(conn *websocket.Conn, p models.TrainingProgress) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(p)
}
