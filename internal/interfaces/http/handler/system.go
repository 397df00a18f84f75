package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// Pinger is a dependency whose liveness is reported by the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	cache     Pinger
	timeout   time.Duration
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. cache may be nil when the
// report cache is disabled.
func NewSystemHandler(name, version string, db, cache Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		cache:     cache,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

// HealthResponse reports the status of the service and its dependencies
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDisabled = "disabled"
)

// Health godoc
//
//	@Summary		Health check
//	@Description	Pings the database and the report cache. A cache outage degrades but does not fail the check.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: statusUp, Cache: statusDisabled}
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Database = statusDown
	}
	if h.cache != nil {
		resp.Cache = statusUp
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = statusDown
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
	}

	status := http.StatusOK
	if resp.Database == statusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns version and uptime
//
//	@Router	/system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}
