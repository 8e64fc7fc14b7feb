package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/redis/go-redis/v9"
)

type HealthStatus string

const (
	HealthHealthy       HealthStatus = "healthy"
	HealthUnhealthy     HealthStatus = "unhealthy"
	HealthNotConfigured HealthStatus = "not_configured"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	*transport.BaseHandler
	db    Pinger
	redis *redis.Client
}

// NewHealthHandler checks the database and, when configured, redis. A nil redis client is
// reported as not configured and does not fail the check.
func NewHealthHandler(db Pinger, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{BaseHandler: transport.NewBaseHandler(nil), db: db, redis: rdb}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{
		"postgres": check(ctx, h.db.PingContext),
	}
	if h.redis != nil {
		components["redis"] = check(ctx, func(ctx context.Context) error { return h.redis.Ping(ctx).Err() })
	} else {
		components["redis"] = CheckEntry{Status: HealthNotConfigured, CheckedAt: time.Now()}
	}

	resp := HealthResponse{Status: HealthHealthy, CheckedAt: time.Now(), Components: components}
	for _, c := range components {
		if c.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, status, resp)
}

func check(ctx context.Context, ping func(context.Context) error) CheckEntry {
	start := time.Now()
	err := ping(ctx)
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
