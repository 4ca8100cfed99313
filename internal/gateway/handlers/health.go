package handlers

import (
	"context"
	"net/http"
	"time"

	"kasir-system/internal/gateway/clients"

	"github.com/gin-gonic/gin"
)

type HealthChecker interface {
	Services() []string
	IsAvailable(name string) bool
	Check(ctx context.Context, name string) clients.ServiceStatus
}

type HealthHandler struct {
	checker HealthChecker
	timeout time.Duration
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, timeout: 5 * time.Second}
}

// Health answers from connection state only and never calls upstream.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"
	httpStatus := http.StatusOK

	unavailable := []string{}
	for _, name := range h.checker.Services() {
		if !h.checker.IsAvailable(name) {
			unavailable = append(unavailable, name)
		}
	}
	if len(unavailable) > 0 {
		status = "degraded"
		httpStatus = http.StatusPartialContent
	}

	c.JSON(httpStatus, gin.H{
		"status":               status,
		"message":              "Server is running",
		"unavailable_services": unavailable,
		"timestamp":            time.Now(),
	})
}

// Detailed runs grpc.health.v1 Check against every upstream.
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	overall := "healthy"
	services := make(map[string]clients.ServiceStatus)
	for _, name := range h.checker.Services() {
		st := h.checker.Check(ctx, name)
		if st.Status != "healthy" {
			overall = "degraded"
		}
		services[name] = st
	}

	c.JSON(http.StatusOK, gin.H{
		"overall_status": overall,
		"services":       services,
		"timestamp":      time.Now(),
	})
}

// ServiceHeaders sets X-<Service>-Service: available|unavailable on every
// response.
func ServiceHeaders(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range checker.Services() {
			value := "unavailable"
			if checker.IsAvailable(name) {
				value = "available"
			}
			c.Header(http.CanonicalHeaderKey("X-"+name+"-Service"), value)
		}
		c.Next()
	}
}
