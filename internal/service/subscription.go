package service

import (
	"context"
	"log/slog"

	"github.com/devikarao/newsletter-service/internal/domain"
)

// Store is the persistence surface the service depends on. *store.PostgresStore
// implements it; tests substitute an in-memory fake.
type Store interface {
	CreateSubscriber(ctx context.Context, email, source string) (*domain.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	ListSubscribers(ctx context.Context, params domain.ListParams) ([]domain.Subscriber, int, error)
	GetSubscriberStats(ctx context.Context) (*domain.Stats, error)
	SetSubscriberActive(ctx context.Context, id string, isActive bool) (*domain.Subscriber, error)
}

// Notifier queues a confirmation message for a new subscriber. It is a
// best-effort collaborator: failures are logged and swallowed, never turned
// into an error for the caller.
type Notifier interface {
	Enqueue(ctx context.Context, sub *domain.Subscriber) error
}

// Subscription implements signup, the admin list query, and the active-flag
// toggle.
type Subscription struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

func NewSubscription(store Store, notifier Notifier, logger *slog.Logger) *Subscription {
	return &Subscription{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Subscribe validates and stores a new subscriber, then queues the
// confirmation email. The store's unique index is the final arbiter for
// concurrent duplicate signups; its violation and the pre-check both come
// back as domain.ErrAlreadySubscribed.
func (s *Subscription) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if !domain.IsValidEmail(email) {
		return nil, domain.NewValidationError("please enter a valid email address")
	}

	normalized := domain.NormalizeEmail(email)

	existing, err := s.store.GetSubscriberByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadySubscribed
	}

	sub, err := s.store.CreateSubscriber(ctx, normalized, domain.SourceWebsite)
	if err != nil {
		return nil, err
	}

	// The subscription is durable at this point; a notification failure
	// must not surface to the subscriber.
	if err := s.notifier.Enqueue(ctx, sub); err != nil {
		s.logger.Warn("failed to queue confirmation email",
			"error", err,
			"subscriber_id", sub.ID,
		)
	}

	return sub, nil
}

// List returns one page of the filtered, sorted subscriber list together
// with the aggregate stats. Stats are computed over the whole table and are
// not affected by the search filter.
func (s *Subscription) List(ctx context.Context, params domain.ListParams) (*domain.SubscriberPage, error) {
	params = params.Normalize()

	subscribers, total, err := s.store.ListSubscribers(ctx, params)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.GetSubscriberStats(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SubscriberPage{
		Subscribers: subscribers,
		Pagination: domain.Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
			Pages: params.PageCount(total),
		},
		Stats: *stats,
	}, nil
}

// SetActive flips a subscriber's active flag. Setting the same value twice
// succeeds both times with the same observable state.
func (s *Subscription) SetActive(ctx context.Context, id string, isActive bool) (*domain.Subscriber, error) {
	if id == "" {
		return nil, domain.NewValidationError("id is required")
	}

	sub, err := s.store.SetSubscriberActive(ctx, id, isActive)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}
	return sub, nil
}
