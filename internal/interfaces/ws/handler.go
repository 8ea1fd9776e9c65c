package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/loyalty/backend/internal/application/session"
	"github.com/loyalty/backend/internal/infrastructure/config"
)

type role string

const (
	roleDisplay role = "display"
	roleControl role = "control"
)

// Handler upgrades HTTP requests into websocket peers and plugs them into
// the session coordinator. The display endpoint serves the customer-facing
// tablet, the control endpoint serves the register client.
type Handler struct {
	coordinator *session.Coordinator
	cfg         config.WebSocketConfig
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

// NewHandler builds a websocket handler bound to the given coordinator.
func NewHandler(coordinator *session.Coordinator, cfg config.WebSocketConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		coordinator: coordinator,
		cfg:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Peers are kiosk clients on the same host, not browsers
			// from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// RegisterRoutes mounts the websocket endpoints directly on the engine.
// They live outside the versioned API group.
func (h *Handler) RegisterRoutes(e *gin.Engine) {
	e.GET("/ws/tablet", h.Display)
	e.GET("/ws/register", h.Control)
}

// Display handles the customer-facing tablet connection.
func (h *Handler) Display(c *gin.Context) {
	h.serve(c, roleDisplay)
}

// Control handles the register client connection.
func (h *Handler) Control(c *gin.Context) {
	h.serve(c, roleControl)
}

func (h *Handler) serve(c *gin.Context, r role) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Warn("websocket upgrade failed",
			zap.String("role", string(r)),
			zap.Error(err))
		return
	}

	peer := newPeer(conn, h.cfg.WriteTimeout)
	log := h.log.With(
		zap.String("role", string(r)),
		zap.String("remote", conn.RemoteAddr().String()))

	conn.SetReadLimit(h.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	switch r {
	case roleDisplay:
		h.coordinator.AttachDisplay(peer)
	case roleControl:
		h.coordinator.AttachControl(peer)
	}

	done := make(chan struct{})
	go h.pingLoop(peer, done, log)

	h.readLoop(conn, r, log)

	close(done)
	switch r {
	case roleDisplay:
		h.coordinator.DetachDisplay(peer)
	case roleControl:
		h.coordinator.DetachControl(peer)
	}
	_ = peer.Close()
}

func (h *Handler) readLoop(conn *websocket.Conn, r role, log *zap.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg session.Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("discarding malformed message", zap.Error(err))
			continue
		}

		switch r {
		case roleDisplay:
			err = h.coordinator.HandleDisplayMessage(msg)
		case roleControl:
			err = h.coordinator.HandleControlMessage(msg)
		}
		if err != nil {
			log.Warn("message dispatch failed",
				zap.String("action", msg.Action),
				zap.Error(err))
			return
		}
	}
}

func (h *Handler) pingLoop(peer *Peer, done <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := peer.ping(); err != nil {
				log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}
