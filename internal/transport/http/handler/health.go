package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/bootstrap"
	mysqlClient "gopherai-docqa/internal/platform/mysql"
	redisClient "gopherai-docqa/internal/platform/redis"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports every enabled dependency. A missing document is reported
// but does not make the service unhealthy.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	allOK := true
	record := func(name string, st dependencyStatus) {
		deps[name] = st
		allOK = allOK && st.OK
	}
	if h.app.MySQL != nil {
		record("mysql", h.checkMySQL(ctx))
	}
	if h.app.Redis != nil {
		record("redis", h.checkRedis(ctx))
	}
	if h.app.MQConn != nil {
		record("rabbitmq", h.checkRabbitMQ())
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":            h.app.Config.App.Name,
		"env":            h.app.Config.App.Env,
		"uptime_sec":     int(time.Since(h.app.StartedAt).Seconds()),
		"retrieval_mode": h.app.Orchestrator.Mode(),
		"document_ready": h.app.Orchestrator.Ready(),
		"dependencies":   deps,
	})
}

func (h *HealthHandler) checkMySQL(ctx context.Context) dependencyStatus {
	if err := mysqlClient.Ping(ctx, h.app.MySQL); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if err := redisClient.Ping(ctx, h.app.Redis); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
