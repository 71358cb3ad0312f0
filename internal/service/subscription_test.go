package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/devikarao/newsletter-service/internal/domain"
)

// fakeStore is an in-memory Store implementing the same filtering, sorting,
// pagination and stats semantics as the Postgres store.
type fakeStore struct {
	subs      []domain.Subscriber
	nextID    int
	createErr error
}

func (f *fakeStore) CreateSubscriber(_ context.Context, email, source string) (*domain.Subscriber, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, s := range f.subs {
		if s.Email == email {
			return nil, domain.ErrAlreadySubscribed
		}
	}
	f.nextID++
	sub := domain.Subscriber{
		ID:           fmt.Sprintf("sub-%d", f.nextID),
		Email:        email,
		SubscribedAt: time.Now(),
		IsActive:     true,
		Source:       source,
	}
	f.subs = append(f.subs, sub)
	return &sub, nil
}

func (f *fakeStore) GetSubscriberByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	for _, s := range f.subs {
		if s.Email == email {
			sub := s
			return &sub, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListSubscribers(_ context.Context, params domain.ListParams) ([]domain.Subscriber, int, error) {
	var matched []domain.Subscriber
	for _, s := range f.subs {
		if params.Search == "" || strings.Contains(strings.ToLower(s.Email), strings.ToLower(params.Search)) {
			matched = append(matched, s)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch params.SortField {
		case domain.SortByEmail:
			less = matched[i].Email < matched[j].Email
		case domain.SortByIsActive:
			less = !matched[i].IsActive && matched[j].IsActive
		default:
			less = matched[i].SubscribedAt.Before(matched[j].SubscribedAt)
		}
		if params.SortOrder == domain.OrderDesc {
			return !less
		}
		return less
	})

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	page := make([]domain.Subscriber, 0, end-start)
	page = append(page, matched[start:end]...)
	return page, total, nil
}

func (f *fakeStore) GetSubscriberStats(_ context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	for _, s := range f.subs {
		if s.IsActive {
			stats.TotalSubscribers++
			if s.SubscribedAt.After(cutoff) {
				stats.RecentSignups++
			}
		}
	}
	if len(f.subs) > 0 {
		stats.ActiveRate = float64(stats.TotalSubscribers) / float64(len(f.subs)) * 100
	}
	return &stats, nil
}

func (f *fakeStore) SetSubscriberActive(_ context.Context, id string, isActive bool) (*domain.Subscriber, error) {
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs[i].IsActive = isActive
			sub := f.subs[i]
			return &sub, nil
		}
	}
	return nil, nil
}

type fakeNotifier struct {
	enqueued []string
	err      error
}

func (f *fakeNotifier) Enqueue(_ context.Context, sub *domain.Subscriber) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, sub.Email)
	return nil
}

func setupService(t *testing.T) (*Subscription, *fakeStore, *fakeNotifier) {
	t.Helper()
	st := &fakeStore{}
	n := &fakeNotifier{}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSubscription(st, n, logger), st, n
}

func seed(t *testing.T, st *fakeStore, email string, active bool, subscribedAt time.Time) string {
	t.Helper()
	st.nextID++
	id := fmt.Sprintf("sub-%d", st.nextID)
	st.subs = append(st.subs, domain.Subscriber{
		ID:           id,
		Email:        email,
		SubscribedAt: subscribedAt,
		IsActive:     active,
		Source:       domain.SourceWebsite,
	})
	return id
}

func TestSubscribe_EmptyEmail(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Subscribe(context.Background(), "")

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSubscribe_InvalidFormat(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Subscribe(context.Background(), "not-an-email")

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Error("invalid format must not be reported as a conflict")
	}
}

func TestSubscribe_Success(t *testing.T) {
	svc, _, n := setupService(t)

	sub, err := svc.Subscribe(context.Background(), "Alice@Example.COM")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if sub.Email != "alice@example.com" {
		t.Errorf("email not normalized: got %q", sub.Email)
	}
	if !sub.IsActive {
		t.Error("new subscriber should be active")
	}
	if sub.Source != domain.SourceWebsite {
		t.Errorf("source: got %q, want %q", sub.Source, domain.SourceWebsite)
	}
	if len(n.enqueued) != 1 || n.enqueued[0] != "alice@example.com" {
		t.Errorf("confirmation not queued: %v", n.enqueued)
	}
}

func TestSubscribe_DuplicateDiffersOnlyInCase(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.Subscribe(ctx, "a@b.com"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}

	_, err := svc.Subscribe(ctx, "A@B.com")
	if !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestSubscribe_StoreConflictWinsOverPreCheck(t *testing.T) {
	// Simulates losing the check-then-insert race: the pre-check sees
	// nothing but the unique index rejects the insert.
	svc, st, _ := setupService(t)
	st.createErr = domain.ErrAlreadySubscribed

	_, err := svc.Subscribe(context.Background(), "alice@example.com")
	if !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestSubscribe_NotifierFailureIsSwallowed(t *testing.T) {
	svc, _, n := setupService(t)
	n.err = errors.New("queue unreachable")

	sub, err := svc.Subscribe(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("notification failure must not fail the subscription: %v", err)
	}
	if sub == nil {
		t.Fatal("expected a subscriber back")
	}
}

func TestList_EmptyStore(t *testing.T) {
	svc, _, _ := setupService(t)

	page, err := svc.List(context.Background(), domain.ListParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if page.Subscribers == nil || len(page.Subscribers) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", page.Subscribers)
	}
	if page.Pagination.Total != 0 || page.Pagination.Pages != 0 {
		t.Errorf("pagination: got %+v, want total=0 pages=0", page.Pagination)
	}
	if page.Stats.ActiveRate != 0 {
		t.Errorf("activeRate on empty store must be 0, got %v", page.Stats.ActiveRate)
	}
}

func TestList_SearchFiltersCaseInsensitively(t *testing.T) {
	svc, st, _ := setupService(t)
	now := time.Now()
	seed(t, st, "alice@example.com", true, now)
	seed(t, st, "ALICE.smith@example.com", true, now)
	seed(t, st, "bob@example.com", true, now)

	page, err := svc.List(context.Background(), domain.ListParams{Search: "alice"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if page.Pagination.Total != 2 {
		t.Fatalf("total: got %d, want 2", page.Pagination.Total)
	}
	for _, s := range page.Subscribers {
		if !strings.Contains(strings.ToLower(s.Email), "alice") {
			t.Errorf("unexpected match %q", s.Email)
		}
	}

	// Stats are independent of the filter
	if page.Stats.TotalSubscribers != 3 {
		t.Errorf("stats must ignore search: got %d active, want 3", page.Stats.TotalSubscribers)
	}
}

func TestList_PageBeyondEnd(t *testing.T) {
	svc, st, _ := setupService(t)
	now := time.Now()
	for i := 0; i < 15; i++ {
		seed(t, st, fmt.Sprintf("user%d@example.com", i), true, now.Add(-time.Duration(i)*time.Minute))
	}

	page, err := svc.List(context.Background(), domain.ListParams{Page: 999, Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(page.Subscribers) != 0 {
		t.Errorf("expected empty slice past the end, got %d records", len(page.Subscribers))
	}
	if page.Pagination.Total != 15 {
		t.Errorf("total: got %d, want 15", page.Pagination.Total)
	}
	if page.Pagination.Pages != 2 {
		t.Errorf("pages: got %d, want 2", page.Pagination.Pages)
	}
}

func TestList_SortByEmailAscending(t *testing.T) {
	svc, st, _ := setupService(t)
	now := time.Now()
	seed(t, st, "carol@example.com", true, now)
	seed(t, st, "alice@example.com", true, now)
	seed(t, st, "bob@example.com", true, now)

	page, err := svc.List(context.Background(), domain.ListParams{
		SortField: domain.SortByEmail,
		SortOrder: domain.OrderAsc,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	want := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	for i, s := range page.Subscribers {
		if s.Email != want[i] {
			t.Errorf("position %d: got %q, want %q", i, s.Email, want[i])
		}
	}
}

func TestList_DefaultSortNewestFirst(t *testing.T) {
	svc, st, _ := setupService(t)
	now := time.Now()
	seed(t, st, "old@example.com", true, now.Add(-48*time.Hour))
	seed(t, st, "new@example.com", true, now)

	page, err := svc.List(context.Background(), domain.ListParams{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if page.Subscribers[0].Email != "new@example.com" {
		t.Errorf("default order should be newest first, got %q on top", page.Subscribers[0].Email)
	}
}

func TestList_ActiveRateExact(t *testing.T) {
	svc, st, _ := setupService(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		seed(t, st, fmt.Sprintf("active%d@example.com", i), true, now)
	}
	seed(t, st, "inactive@example.com", false, now)

	page, err := svc.List(context.Background(), domain.ListParams{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if page.Stats.TotalSubscribers != 3 {
		t.Errorf("totalSubscribers: got %d, want 3", page.Stats.TotalSubscribers)
	}
	if page.Stats.ActiveRate != 75 {
		t.Errorf("activeRate: got %v, want 75", page.Stats.ActiveRate)
	}
}

func TestList_RecentSignupsWindow(t *testing.T) {
	svc, st, _ := setupService(t)
	now := time.Now()
	seed(t, st, "recent@example.com", true, now.Add(-24*time.Hour))
	seed(t, st, "stale@example.com", true, now.Add(-8*24*time.Hour))
	seed(t, st, "recent-inactive@example.com", false, now.Add(-time.Hour))

	page, err := svc.List(context.Background(), domain.ListParams{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if page.Stats.RecentSignups != 1 {
		t.Errorf("recentSignups: got %d, want 1", page.Stats.RecentSignups)
	}
}

func TestSetActive_Idempotent(t *testing.T) {
	svc, st, _ := setupService(t)
	id := seed(t, st, "alice@example.com", true, time.Now())
	ctx := context.Background()

	first, err := svc.SetActive(ctx, id, false)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	second, err := svc.SetActive(ctx, id, false)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}

	if first.IsActive || second.IsActive {
		t.Error("both calls should report isActive=false")
	}
}

func TestSetActive_UnknownID(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.SetActive(context.Background(), "missing", true)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetActive_EmptyID(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.SetActive(context.Background(), "", true)

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
