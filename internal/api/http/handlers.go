package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/id"
	"github.com/GriffinCanCode/webshell/backend/internal/shell"
)

const inspectTimeout = 2 * time.Second

// Handlers contains the inspection API handlers
type Handlers struct {
	registry   *shell.Registry
	pathConfig *pathconfig.Configuration
	client     *client.Client
	logger     *zap.Logger
	started    time.Time
}

// NewHandlers creates a new handler set. client may be nil when the server
// runs without remote fetching.
func NewHandlers(registry *shell.Registry, pathConfig *pathconfig.Configuration, httpClient *client.Client, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry:   registry,
		pathConfig: pathConfig,
		client:     httpClient,
		logger:     logger,
		started:    time.Now(),
	}
}

// Register mounts every handler on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/path-configuration", h.PathConfiguration)

	sessions := r.Group("/sessions")
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.POST("/:id/route", h.RouteSession)
	sessions.POST("/:id/pop", h.PopSession)
	sessions.POST("/:id/clear", h.ClearSession)
	sessions.DELETE("/:id", h.CloseSession)
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webshell",
	})
}

// Health reports liveness and the state of outbound fetching
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"shells": h.registry.Count(),
	}
	if h.client != nil {
		body["origin_breaker"] = h.client.BreakerState().String()
	}
	c.JSON(http.StatusOK, body)
}

// PathConfiguration resolves the properties for ?location= and returns the
// global settings
func (h *Handlers) PathConfiguration(c *gin.Context) {
	body := gin.H{"settings": h.pathConfig.Settings()}
	if location := c.Query("location"); location != "" {
		body["location"] = location
		body["properties"] = h.pathConfig.Properties(location)
	}
	c.JSON(http.StatusOK, body)
}

// SessionSummary is one row of the session list
type SessionSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Location  string    `json:"location"`
	Depth     int       `json:"depth"`
	Ready     bool      `json:"ready"`
}

// ListSessions lists every open shell
func (h *Handlers) ListSessions(c *gin.Context) {
	shells := h.registry.List()
	summaries := make([]SessionSummary, 0, len(shells))
	for _, s := range shells {
		in, err := h.inspect(c, s)
		if err != nil {
			continue
		}
		summaries = append(summaries, SessionSummary{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			Location:  in.Session.Location,
			Depth:     len(in.Backstack),
			Ready:     in.Session.Ready,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries, "count": len(summaries)})
}

// GetSession returns the full state of one shell
func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	in, err := h.inspect(c, s)
	if err != nil {
		h.unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

// RouteRequest is the body of POST /sessions/:id/route
type RouteRequest struct {
	Location string         `json:"location" binding:"required"`
	Options  *visit.Options `json:"options"`
}

// RouteSession routes a location in one shell
func (h *Handlers) RouteSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid route request: " + err.Error()})
		return
	}
	options := visit.DefaultOptions()
	if req.Options != nil {
		options = *req.Options
		options.Action = visit.ParseAction(string(options.Action))
	}

	if err := s.Route(c.Request.Context(), req.Location, options); err != nil {
		var cfgErr *visit.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
			return
		}
		h.unavailable(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "location": req.Location})
}

// PopSession pops the top screen of one shell
func (h *Handlers) PopSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := s.Pop(c.Request.Context()); err != nil {
		h.unavailable(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// ClearSession pops one shell back to its start screen
func (h *Handlers) ClearSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := s.ClearAll(c.Request.Context()); err != nil {
		h.unavailable(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// CloseSession stops one shell
func (h *Handlers) CloseSession(c *gin.Context) {
	shellID := id.ShellID(c.Param("id"))
	if !h.registry.Close(shellID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) lookup(c *gin.Context) (*shell.Shell, bool) {
	s, err := h.registry.Get(id.ShellID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func (h *Handlers) inspect(c *gin.Context, s *shell.Shell) (shell.Inspection, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), inspectTimeout)
	defer cancel()
	return s.Inspect(ctx)
}

func (h *Handlers) unavailable(c *gin.Context, err error) {
	h.logger.Warn("Session unavailable", zap.String("session", c.Param("id")), zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}
