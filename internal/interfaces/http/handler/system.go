package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Version is the API version reported by /system/info
const Version = "1.0.0"

// Pinger checks that a dependency answers
type Pinger interface {
	Ping() error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	store     *comanda.Store
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(name string, store *comanda.Store, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		store:     store,
		db:        db,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"comanda"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-03-10T12:00:00Z"`
}

// ReloadResponse reports the mirror size after a reload
type ReloadResponse struct {
	Products int `json:"products" example:"42"`
	Tabs     int `json:"tabs" example:"130"`
	OpenTabs int `json:"open_tabs" example:"6"`
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Loaded   bool   `json:"loaded" example:"true"`
	Database string `json:"database,omitempty" example:"ok"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Security     BearerAuth
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Reload godoc
// @ID           reloadSystem
// @Summary      Reload products and tabs from storage
// @Description  Replaces the in-memory catalog and tabs with what storage holds now
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=ReloadResponse}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /system/reload [post]
func (h *SystemHandler) Reload(c *gin.Context) {
	if err := h.store.FetchInitialData(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReloadResponse{
		Products: len(h.store.ListProducts()),
		Tabs:     len(h.store.ListTabs()),
		OpenTabs: len(h.store.GetOpenTabs()),
	})
}

// Health answers 200 once the initial load succeeded and the database answers, 503 otherwise
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Loaded: h.store.Loaded()}
	status := http.StatusOK
	if !resp.Loaded {
		resp.Status = "loading"
		status = http.StatusServiceUnavailable
	}
	if h.db != nil {
		resp.Database = "ok"
		if err := h.db.Ping(); err != nil {
			resp.Database = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
