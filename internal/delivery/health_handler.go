package delivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log *logrus.Logger
}

func NewHealthHandler(db Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: logger}
}

func (h *HealthHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Errorf("Handler: Health check failed, database unreachable: %v", err)
		ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
