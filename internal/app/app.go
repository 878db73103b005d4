package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/auth"
	"github.com/owenmcgrath/todoist-projection/internal/cache"
	"github.com/owenmcgrath/todoist-projection/internal/config"
	"github.com/owenmcgrath/todoist-projection/internal/events"
	"github.com/owenmcgrath/todoist-projection/internal/repo"
	"github.com/owenmcgrath/todoist-projection/internal/repo/migrations"
	"github.com/owenmcgrath/todoist-projection/internal/service"
	"github.com/owenmcgrath/todoist-projection/internal/todoist"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

type App struct {
	cfg    config.Config
	pg     *pgxpool.Pool
	sqlite *sql.DB
	redis  *redis.Client
	router *gin.Engine

	snapshots *service.SnapshotService
	stop      context.CancelFunc
	done      chan struct{}
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	rdb, err := NewRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = rdb

	history, err := a.newHistory(cfg.Store)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	hash := cfg.Auth.PasswordHash
	if hash == "" {
		if hash, err = service.HashPassword(cfg.Auth.Password); err != nil {
			a.Close(context.Background())
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	broker := events.NewBroker(16)
	sessions := auth.NewStore(rdb, cfg.Auth.SessionTTL.Duration())
	a.snapshots = service.NewSnapshotService(
		NewTodoistClient(cfg),
		cache.NewSnapshotCache(rdb, cfg.Redis.SnapshotTTL.Duration()),
		history,
		broker,
		SnapshotOptions(cfg),
	)
	authSvc := service.NewAuthService(hash, sessions)

	a.router = newRouter(cfg, routeDeps{
		sessions:  sessions,
		auth:      authSvc,
		snapshots: a.snapshots,
		history:   history,
		broker:    broker,
	})
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Start runs the refresh loop until Close.
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		a.snapshots.Run(ctx)
	}()
}

func (a *App) Close(ctx context.Context) error {
	if a.stop != nil {
		a.stop()
		select {
		case <-a.done:
		case <-ctx.Done():
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.sqlite != nil {
		_ = a.sqlite.Close()
	}
	return nil
}

// NewTodoistClient returns the upstream client configured by cfg.
func NewTodoistClient(cfg config.Config) *todoist.Client {
	return todoist.NewClient(cfg.Todoist.BaseURL, cfg.Todoist.APIToken, &http.Client{})
}

// SnapshotOptions maps refresh settings onto the service options.
func SnapshotOptions(cfg config.Config) service.SnapshotOptions {
	return service.SnapshotOptions{
		FetchTimeout:   cfg.Refresh.FetchTimeout.Duration(),
		Interval:       cfg.Refresh.Interval.Duration(),
		CompletedLimit: cfg.Refresh.CompletedLimit,
	}
}

func (a *App) newHistory(cfg config.StoreConfig) (repo.HistoryRepo, error) {
	switch cfg.Driver {
	case config.StorePostgres:
		pool, err := newPostgres(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		a.pg = pool
		if err := runPGMigrations(cfg.PGDSN); err != nil {
			return nil, err
		}
		log.Printf("history store: postgres")
		return repo.NewPGHistoryRepo(pool), nil
	case config.StoreSQLite:
		db, err := newSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		log.Printf("history store: sqlite at %s", cfg.SQLitePath)
		return repo.NewSQLiteHistoryRepo(db), nil
	default:
		log.Printf("history store: disabled")
		return repo.NopHistoryRepo{}, nil
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func runPGMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()
	return migrations.Up(db, "postgres")
}

func newSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	if err := migrations.Up(db, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewRedis connects and pings Redis.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, deps routeDeps) *gin.Engine {
	r := gin.Default()

	r.Use(requestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Todoist-Hmac-SHA256"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, deps)
	return r
}
