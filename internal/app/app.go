// Package app opens the storage and cache backends selected by config.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"cares/internal/cache"
	"cares/internal/config"
	"cares/internal/repository"
)

type App struct {
	ReportRepo  repository.ReportRepo
	ReportCache cache.ReportCache
	RateLimiter cache.RateLimiter

	closers []func() error
}

// Open connects the configured report store and, when configured, Redis
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		ReportCache: cache.NoopReportCache{},
		RateLimiter: cache.AllowAll{},
	}

	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := repository.ConnectMongo(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		a.ReportRepo = repository.NewReportRepo(client.Database(cfg.Store.MongoDB))
		log.Printf("Connected to MongoDB (database %s)", cfg.Store.MongoDB)
	case config.DriverSQLite, "":
		repo, err := repository.NewSQLiteReportRepo(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		a.ReportRepo = repo
		log.Printf("Opened SQLite store %s", cfg.Store.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			a.Close()
			return nil, fmt.Errorf("ping Redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.ReportCache = cache.NewReportCache(rdb, cfg.Redis.ReportTTL())
		a.RateLimiter = cache.NewRateLimiter(rdb, cfg.RateLimit.Assessments, cfg.RateLimit.Window())
		log.Printf("Connected to Redis at %s", cfg.Redis.Addr)
	} else {
		log.Println("Redis not configured: report cache and rate limiting disabled")
	}

	return a, nil
}

// Close releases backends in reverse order of opening
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
