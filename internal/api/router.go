package api

import (
	"net/http"

	ws "github.com/devikarao/newsletter-service/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the HTTP router. Any method other than
// the ones registered on a path gets a 405 from chi.
func NewRouter(service SubscriptionService, stats StatsSource, queue QueueDepther, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// CORS for the dashboard frontend
	r.Use(corsMiddleware)

	subHandler := NewSubscriberHandler(service, hub)
	dashHandler := NewDashboardHandler(stats, queue, hub)

	// WebSocket feed for the live admin dashboard
	r.Get("/ws", hub.HandleWebSocket)

	r.Post("/subscribe", subHandler.Subscribe)

	r.Route("/subscribers", func(r chi.Router) {
		r.Get("/", subHandler.List)
		r.Put("/", subHandler.SetStatus)
	})

	r.Get("/health", HealthHandler())
	r.Get("/metrics", dashHandler.Metrics)

	return r
}

// corsMiddleware adds CORS headers for dashboard development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
