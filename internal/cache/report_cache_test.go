package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"cares/internal/cache"
	"cares/internal/model"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestReportCache_SetGet(t *testing.T) {
	mr, client := newRedis(t)
	c := cache.NewReportCache(client, time.Hour)
	ctx := context.Background()

	rec := &model.ReportRecord{
		ID:     17,
		Child:  model.ChildInfo{ChildName: "Ada"},
		Scores: model.Scores{OverallScore: 55.5, Category: model.CategoryTransition, RedFlags: []string{}},
		AIStructured: model.StructuredReport{
			model.FieldHeaderSummary: "hello",
		},
	}
	if err := c.Set(ctx, rec); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if ttl := mr.TTL("report:17"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	got, err := c.Get(ctx, 17)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil || got.Child.ChildName != "Ada" || got.Scores.OverallScore != 55.5 {
		t.Errorf("Get() = %+v", got)
	}
	if got.AIStructured.String(model.FieldHeaderSummary) != "hello" {
		t.Errorf("structured = %v", got.AIStructured)
	}
}

func TestReportCache_Miss(t *testing.T) {
	_, client := newRedis(t)
	got, err := cache.NewReportCache(client, 0).Get(context.Background(), 1)
	if err != nil || got != nil {
		t.Errorf("Get() = %v, %v; want nil, nil", got, err)
	}
}

func TestReportCache_Expiry(t *testing.T) {
	mr, client := newRedis(t)
	c := cache.NewReportCache(client, time.Minute)
	ctx := context.Background()
	if err := c.Set(ctx, &model.ReportRecord{ID: 5}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if got, _ := c.Get(ctx, 5); got != nil {
		t.Error("record survived its TTL")
	}
}

func TestReportCache_List(t *testing.T) {
	_, client := newRedis(t)
	c := cache.NewReportCache(client, time.Hour)
	ctx := context.Background()

	if got, err := c.GetList(ctx); err != nil || got != nil {
		t.Fatalf("GetList() on empty cache = %v, %v", got, err)
	}
	list := []model.ReportSummary{{ID: 1, Child: "A"}, {ID: 2, Child: "B"}}
	if err := c.SetList(ctx, list); err != nil {
		t.Fatalf("SetList() error: %v", err)
	}
	got, err := c.GetList(ctx)
	if err != nil || len(got) != 2 || got[1].Child != "B" {
		t.Fatalf("GetList() = %v, %v", got, err)
	}
	if err := c.InvalidateList(ctx); err != nil {
		t.Fatalf("InvalidateList() error: %v", err)
	}
	if got, _ := c.GetList(ctx); got != nil {
		t.Errorf("list survived invalidation: %v", got)
	}
}

func TestRateLimiter_Window(t *testing.T) {
	mr, client := newRedis(t)
	l := cache.NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow() error: %v", err)
		}
		if ok != want {
			t.Errorf("hit %d: Allow() = %v, want %v", i+1, ok, want)
		}
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("a different key was limited")
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Error("limit did not reset after the window")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := cache.NewRateLimiter(nil, 1, time.Minute)
	for i := 0; i < 5; i++ {
		if ok, err := l.Allow(context.Background(), "k"); !ok || err != nil {
			t.Fatalf("Allow() = %v, %v; want always true", ok, err)
		}
	}
}
