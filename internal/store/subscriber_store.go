package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/devikarao/newsletter-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// sortColumns maps API sort field names to actual columns. Anything not in
// this map never reaches the query string.
var sortColumns = map[string]string{
	domain.SortBySubscribedAt: "subscribed_at",
	domain.SortByEmail:        "email",
	domain.SortByIsActive:     "is_active",
}

// CreateSubscriber inserts a new subscriber for the given normalized email.
// The unique index on email is the final arbiter for concurrent duplicate
// signups; its violation surfaces as domain.ErrAlreadySubscribed.
func (s *PostgresStore) CreateSubscriber(ctx context.Context, email, source string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscribers (email, source)
		VALUES ($1, $2)
		RETURNING id, email, subscribed_at, is_active, source
	`, email, source).Scan(
		&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.IsActive, &sub.Source,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("inserting subscriber: %w", err)
	}
	return &sub, nil
}

// GetSubscriberByEmail returns the subscriber for a normalized email, or nil
// when none exists.
func (s *PostgresStore) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, subscribed_at, is_active, source
		FROM subscribers WHERE email = $1
	`, email).Scan(
		&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.IsActive, &sub.Source,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying subscriber: %w", err)
	}
	return &sub, nil
}

// ListSubscribers returns one page of the filtered, sorted subscriber list
// and the total number of matching records. Only id, email, subscribed_at
// and is_active leave the store. A page past the end yields an empty slice
// with the real total.
func (s *PostgresStore) ListSubscribers(ctx context.Context, params domain.ListParams) ([]domain.Subscriber, int, error) {
	where := ""
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		where = fmt.Sprintf(" WHERE email ILIKE '%%' || $%d || '%%'", argIdx)
		args = append(args, params.Search)
		argIdx++
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM subscribers"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting subscribers: %w", err)
	}

	direction := "DESC"
	if params.SortOrder == domain.OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, email, subscribed_at, is_active
		FROM subscribers%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, sortColumns[params.SortField], direction, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.IsActive); err != nil {
			return nil, 0, fmt.Errorf("scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating subscribers: %w", err)
	}

	if subscribers == nil {
		subscribers = []domain.Subscriber{}
	}

	return subscribers, total, nil
}

// SetSubscriberActive updates only the is_active flag and returns the
// updated projection, or nil when no row matches the id. Setting the same
// value twice is a no-op the second time.
func (s *PostgresStore) SetSubscriberActive(ctx context.Context, id string, isActive bool) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := s.pool.QueryRow(ctx, `
		UPDATE subscribers SET is_active = $2
		WHERE id = $1
		RETURNING id, email, subscribed_at, is_active
	`, id, isActive).Scan(
		&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.IsActive,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		// A malformed UUID can never match a row; treat it as not found
		// rather than a server error.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
			return nil, nil
		}
		return nil, fmt.Errorf("updating subscriber status: %w", err)
	}
	return &sub, nil
}
