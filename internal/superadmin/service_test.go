package superadmin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubStore struct {
	calls   int
	metrics Metrics
	err     error
}

func (s *stubStore) Snapshot(context.Context) (Metrics, error) {
	s.calls++
	return s.metrics, s.err
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestDashboardMetricsServedFromCache(t *testing.T) {
	cache, _ := newRedisCache(t)
	store := &stubStore{metrics: Metrics{TotalCompanies: 7, TotalUsers: 42}}
	svc, err := NewService(store, WithCache(cache, time.Minute))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	first, err := svc.DashboardMetrics(ctx)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.TotalUsers != 42 {
		t.Fatalf("unexpected metrics: %+v", first)
	}

	second, err := svc.DashboardMetrics(ctx)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if second.TotalCompanies != 7 {
		t.Fatalf("cached metrics corrupted: %+v", second)
	}
	if store.calls != 1 {
		t.Fatalf("second read must come from cache, store hit %d times", store.calls)
	}
}

func TestDashboardMetricsRefreshesAfterTTL(t *testing.T) {
	cache, mr := newRedisCache(t)
	store := &stubStore{metrics: Metrics{TotalUsers: 1}}
	svc, _ := NewService(store, WithCache(cache, time.Minute))
	ctx := context.Background()

	if _, err := svc.DashboardMetrics(ctx); err != nil {
		t.Fatalf("first read: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	store.metrics.TotalUsers = 2
	m, err := svc.DashboardMetrics(ctx)
	if err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if m.TotalUsers != 2 || store.calls != 2 {
		t.Fatalf("expired cache not refreshed: %+v calls=%d", m, store.calls)
	}
}

func TestDashboardMetricsWithoutCache(t *testing.T) {
	store := &stubStore{metrics: Metrics{TotalSystemEditions: 3}}
	svc, _ := NewService(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		m, err := svc.DashboardMetrics(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if m.TotalSystemEditions != 3 {
			t.Fatalf("unexpected metrics: %+v", m)
		}
		if m.GeneratedAt.IsZero() {
			t.Fatalf("generated_at not set")
		}
	}
	if store.calls != 2 {
		t.Fatalf("expected store hit per read, got %d", store.calls)
	}
}

func TestDashboardMetricsStoreError(t *testing.T) {
	wantErr := errors.New("db down")
	svc, _ := NewService(&stubStore{err: wantErr})
	if _, err := svc.DashboardMetrics(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newRedisCache(t)
	if _, err := cache.Get(context.Background()); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
}
