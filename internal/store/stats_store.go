package store

import (
	"context"
	"fmt"

	"github.com/devikarao/newsletter-service/internal/domain"
)

// GetSubscriberStats returns the dashboard aggregates in one query: active
// subscriber count, active signups in the trailing 7 days, and the active
// rate as a percentage of all stored records.
func (s *PostgresStore) GetSubscriberStats(ctx context.Context) (*domain.Stats, error) {
	var (
		stats domain.Stats
		total int
	)

	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE is_active AND subscribed_at >= NOW() - INTERVAL '7 days') AS recent,
			COUNT(*) AS total
		FROM subscribers
	`).Scan(&stats.TotalSubscribers, &stats.RecentSignups, &total)
	if err != nil {
		return nil, fmt.Errorf("querying subscriber stats: %w", err)
	}

	// An empty table would make the rate 0/0; report 0 instead.
	if total > 0 {
		stats.ActiveRate = float64(stats.TotalSubscribers) / float64(total) * 100
	}

	return &stats, nil
}
