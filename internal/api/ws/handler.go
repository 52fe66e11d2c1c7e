package ws

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/session"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/id"
	"github.com/GriffinCanCode/webshell/backend/internal/shell"
)

// Config tunes bridge connections.
type Config struct {
	// AllowedOrigins restricts the Origin header on upgrade. Empty allows
	// every origin.
	AllowedOrigins []string
	// MaxMessageSize caps inbound messages. Snapshots travel inline, so the
	// default is generous.
	MaxMessageSize int64
	WriteTimeout   time.Duration
	// OverrideTimeout bounds how long the engine waits for an override
	// decision.
	OverrideTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4 << 20
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.OverrideTimeout <= 0 {
		c.OverrideTimeout = 5 * time.Second
	}
	return c
}

// Handler manages bridge connections
type Handler struct {
	registry *shell.Registry
	config   Config
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new bridge handler
func NewHandler(registry *shell.Registry, config Config, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	config = config.withDefaults()
	h := &Handler{
		registry: registry,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(h.config.AllowedOrigins, func(allowed string) bool {
		return allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host)
	})
}

// HandleConnection upgrades the request and serves one engine until it
// disconnects
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := id.NewConnectionID()
	logger := h.logger.With(zap.String("connection", connID.String()))
	conn.SetReadLimit(h.config.MaxMessageSize)

	h.metrics.IncBridgeConnections()
	defer h.metrics.DecBridgeConnections()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	bridge := newBridge(conn, h.config.WriteTimeout, logger, h.metrics)
	sh, err := h.registry.Open(ctx, bridge)
	if err != nil {
		logger.Error("Failed to open shell", zap.Error(err))
		bridge.sendError(err.Error())
		return
	}
	defer h.registry.Close(sh.ID())

	go func() {
		select {
		case <-sh.Done():
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	logger.Info("Bridge connected", zap.String("shell", sh.ID().String()))
	_ = bridge.send(Outbound{Type: "ready", ShellID: sh.ID().String()})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Bridge read error", zap.Error(err))
			}
			break
		}
		h.handleMessage(ctx, sh, bridge, data, logger)
	}
	logger.Info("Bridge disconnected", zap.String("shell", sh.ID().String()))
}

func (h *Handler) handleMessage(ctx context.Context, sh *shell.Shell, bridge *Bridge, data []byte, logger *zap.Logger) {
	var msg Inbound
	if err := sonic.Unmarshal(data, &msg); err != nil {
		bridge.sendError("malformed message")
		return
	}
	if msg.Name == namePing {
		h.metrics.RecordBridgeMessage("in", namePing)
		_ = bridge.send(Outbound{Type: "pong"})
		return
	}

	ev, err := DecodeEvent(msg)
	if err != nil {
		h.metrics.RecordBridgeMessage("in", "invalid")
		logger.Debug("Rejected bridge message", zap.String("name", msg.Name), zap.Error(err))
		bridge.sendError(err.Error())
		return
	}
	h.metrics.RecordBridgeMessage("in", msg.Name)

	if override, ok := ev.(session.LocationOverride); ok {
		h.replyOverride(ctx, sh, bridge, msg.ID, override)
		return
	}
	sh.Dispatch(ev)
}

// replyOverride answers synchronously; the engine holds the navigation until
// it hears back.
func (h *Handler) replyOverride(ctx context.Context, sh *shell.Shell, bridge *Bridge, requestID int64, ev session.LocationOverride) {
	ctx, cancel := context.WithTimeout(ctx, h.config.OverrideTimeout)
	defer cancel()

	override, err := sh.ShouldOverride(ctx, ev)
	if err != nil {
		override = false
	}
	_ = bridge.send(Outbound{Type: "override", ID: requestID, Override: &override})
}
