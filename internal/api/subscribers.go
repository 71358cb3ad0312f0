package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/devikarao/newsletter-service/internal/domain"
	ws "github.com/devikarao/newsletter-service/internal/websocket"
)

// SubscriptionService is the slice of the service layer the handlers use.
type SubscriptionService interface {
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
	List(ctx context.Context, params domain.ListParams) (*domain.SubscriberPage, error)
	SetActive(ctx context.Context, id string, isActive bool) (*domain.Subscriber, error)
}

type SubscriberHandler struct {
	service SubscriptionService
	hub     *ws.Hub
}

func NewSubscriberHandler(service SubscriptionService, hub *ws.Hub) *SubscriberHandler {
	return &SubscriberHandler{service: service, hub: hub}
}

// subscriberSummary is the projection returned on signup: only id, email
// and the subscription time leave the store.
type subscriberSummary struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

type subscribeResponse struct {
	Message    string            `json:"message"`
	Subscriber subscriberSummary `json:"subscriber"`
}

// Subscribe handles POST /subscribe.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req domain.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.SignupEvent{
			Type:         ws.EventSubscriberCreated,
			SubscriberID: sub.ID,
			Email:        sub.Email,
			Timestamp:    time.Now(),
		})
	}

	respondJSON(w, http.StatusCreated, subscribeResponse{
		Message: "Successfully subscribed!",
		Subscriber: subscriberSummary{
			ID:           sub.ID,
			Email:        sub.Email,
			SubscribedAt: sub.SubscribedAt,
		},
	})
}

// List handles GET /subscribers. Non-numeric or missing page/limit values
// fall back to their defaults.
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := domain.ListParams{
		Page:      atoiOr(q.Get("page"), domain.DefaultPage),
		Limit:     atoiOr(q.Get("limit"), domain.DefaultLimit),
		Search:    q.Get("search"),
		SortField: q.Get("sort"),
		SortOrder: q.Get("order"),
	}

	page, err := h.service.List(r.Context(), params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

type setStatusResponse struct {
	Message    string            `json:"message"`
	Subscriber domain.Subscriber `json:"subscriber"`
}

// SetStatus handles PUT /subscribers.
func (h *SubscriberHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ID == "" || req.IsActive == nil {
		respondError(w, http.StatusBadRequest, "id and isActive are required")
		return
	}

	sub, err := h.service.SetActive(r.Context(), req.ID, *req.IsActive)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.SignupEvent{
			Type:         ws.EventSubscriberUpdated,
			SubscriberID: sub.ID,
			Email:        sub.Email,
			IsActive:     &sub.IsActive,
			Timestamp:    time.Now(),
		})
	}

	respondJSON(w, http.StatusOK, setStatusResponse{
		Message:    "Subscriber status updated successfully",
		Subscriber: *sub,
	})
}

// respondServiceError maps the domain error taxonomy to HTTP statuses.
// Unexpected errors become a generic 500 with no internal detail leaked.
func (h *SubscriberHandler) respondServiceError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Reason)
	case errors.Is(err, domain.ErrAlreadySubscribed):
		respondError(w, http.StatusConflict, "email already subscribed")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "subscriber not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
