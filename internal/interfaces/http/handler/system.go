package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/backend/internal/interfaces/http/dto"
)

// ReadinessCheck reports whether a named dependency is reachable
type ReadinessCheck struct {
	Name  string
	Check func() error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    []ReadinessCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(checks ...ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checks:    checks,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Vitrine Storefront API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// Health reports process liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Ready reports whether all registered dependencies are reachable
func (h *SystemHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	overall := "ready"
	results := make(map[string]string, len(h.checks))

	for _, check := range h.checks {
		if err := check.Check(); err != nil {
			status = http.StatusServiceUnavailable
			overall = "degraded"
			results[check.Name] = err.Error()
			continue
		}
		results[check.Name] = "ok"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": results,
	})
}

// Ping is a trivial responsiveness probe
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"message":   "pong",
		"timestamp": time.Now().Format(time.RFC3339),
	}))
}
