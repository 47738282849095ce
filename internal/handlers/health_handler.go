package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tuckshop/backend/internal/respond"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"up"`
	Redis    string `json:"redis" example:"up"`
}

// HealthHandler reports readiness. The database is required; Redis is
// optional and only reported.
type HealthHandler struct {
	db    Pinger
	redis *redis.Client
}

func NewHealthHandler(db Pinger, client *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: client}
}

// Health reports dependency status
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "up", Redis: "disabled"}
	status := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Redis = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			resp.Redis = "down"
		}
	}

	respond.JSON(w, status, resp)
}
