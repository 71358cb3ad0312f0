package api

import (
	"context"
	"net/http"

	"github.com/devikarao/newsletter-service/internal/domain"
	ws "github.com/devikarao/newsletter-service/internal/websocket"
)

// StatsSource provides the dashboard aggregates.
type StatsSource interface {
	GetSubscriberStats(ctx context.Context) (*domain.Stats, error)
}

// QueueDepther reports how many confirmation emails are waiting.
type QueueDepther interface {
	Depth(ctx context.Context) (int64, error)
}

type DashboardHandler struct {
	stats StatsSource
	queue QueueDepther
	hub   *ws.Hub
}

func NewDashboardHandler(stats StatsSource, queue QueueDepther, hub *ws.Hub) *DashboardHandler {
	return &DashboardHandler{stats: stats, queue: queue, hub: hub}
}

// Metrics returns aggregated system metrics for the admin dashboard.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetSubscriberStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get metrics")
		return
	}

	queueDepth, err := h.queue.Depth(r.Context())
	if err != nil {
		queueDepth = 0
	}

	type metricsResponse struct {
		domain.Stats
		QueueDepth       int64 `json:"queueDepth"`
		WebSocketClients int   `json:"websocketClients"`
	}

	respondJSON(w, http.StatusOK, metricsResponse{
		Stats:            *stats,
		QueueDepth:       queueDepth,
		WebSocketClients: h.hub.ClientCount(),
	})
}
