package container

import (
	"context"
	"fmt"

	"troopstats/adapters/cache"
	"troopstats/adapters/memory"
	"troopstats/adapters/postgres"
	"troopstats/app"
	"troopstats/internal"
	"troopstats/internal/config"
	"troopstats/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Cache *cache.RedisLeaderboardCache

	// Data access
	Store ports.Store

	// Services
	Boards *app.LeaderboardService
	Troops *app.TroopService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}, nil
}

// InitWithDatabase wires the services over PostgreSQL, with the Redis
// leaderboard cache when one is configured
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	c.DB = db
	c.Store = postgres.NewTroopStore(db)

	if err := c.initCache(ctx); err != nil {
		return err
	}
	c.initServices()
	return nil
}

// InitInMemory wires the services over a process-local store
func (c *Container) InitInMemory() {
	c.Store = memory.NewStore()
	c.initServices()
}

func (c *Container) initCache(ctx context.Context) error {
	if c.Config.Cache.RedisURL == "" {
		c.Logger.Info("REDIS_URL not set, leaderboard cache disabled")
		return nil
	}
	redisCache, err := cache.Connect(ctx, c.Config.Cache.RedisURL, c.Config.Cache.LeaderboardTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize leaderboard cache: %w", err)
	}
	c.Cache = redisCache
	c.Logger.Info("Leaderboard cache enabled (ttl %s)", c.Config.Cache.LeaderboardTTL)
	return nil
}

func (c *Container) initServices() {
	var boardCache ports.LeaderboardCache
	if c.Cache != nil {
		boardCache = c.Cache
	}
	c.Boards = app.NewLeaderboardService(c.Store, boardCache, c.Logger)
	c.Troops = app.NewTroopService(c.Store, c.Boards, c.Config.Calendar.Location, c.Logger)
}

// Shutdown releases the cache and database connections
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
