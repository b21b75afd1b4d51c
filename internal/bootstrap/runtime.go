// Package bootstrap wires the runtime: database, redis, the rehydrated store
// and the services that act on it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discovrr/internal/cache"
	"discovrr/internal/config"
	"discovrr/internal/database"
	"discovrr/internal/models"
	"discovrr/internal/notifications"
	"discovrr/internal/observability"
	"discovrr/internal/persist"
	"discovrr/internal/repository"
	"discovrr/internal/seed"
	"discovrr/internal/service"
	"discovrr/internal/store"
	"discovrr/internal/thunk"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo data.
	SeedDemo bool
	Seed     seed.Options
	// PersistDebounce coalesces snapshot writes. Zero saves after every dispatch.
	PersistDebounce time.Duration
	// ResumeSession revalidates a rehydrated session token with the backend.
	ResumeSession bool
}

// Runtime is a fully wired application.
type Runtime struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Store      *store.Store
	Dispatcher *thunk.Dispatcher
	Services   *service.Services
	// Persistor is nil when redis is unavailable; state then lives in memory only.
	Persistor *persist.Persistor

	detach func()
}

// InitRuntime connects to DB and Redis, optionally seeds, and builds the runtime.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// may leave a nil client if redis is unreachable
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedIfEmpty(db, opts.Seed); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return New(ctx, cfg, db, r, opts)
}

// New builds the runtime over already-initialized dependencies. r may be nil.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, r *redis.Client, opts Options) (*Runtime, error) {
	rt := &Runtime{DB: db, Redis: r, detach: func() {}}

	state := store.InitialState()
	if r != nil {
		rt.Persistor = persist.New(persist.NewRedisStorage(r), cfg.PersistKey, opts.PersistDebounce)
		rehydrated, err := rt.Persistor.Rehydrate(ctx)
		if err != nil {
			observability.GlobalLogger.WarnContext(ctx, "could not rehydrate state, starting empty", "error", err)
		}
		state = rehydrated
	}

	rt.Store = store.New(state)
	rt.Dispatcher = thunk.NewDispatcher(rt.Store)

	var notifier *notifications.Notifier
	if r != nil {
		notifier = notifications.NewNotifier(r)
	}
	rt.Services = service.New(rt.Dispatcher, Repositories(cfg, db), notifier)

	if rt.Persistor != nil {
		rt.detach = rt.Persistor.Attach(ctx, rt.Store)
	}
	rt.Services.Session.ResetForVersion(cfg.AppVersion)

	if opts.ResumeSession {
		rt.resumeSession(ctx)
	}
	return rt, nil
}

// Repositories builds the gorm-backed collaborators.
func Repositories(cfg *config.Config, db *gorm.DB) service.Repositories {
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	return service.Repositories{
		Posts:         repository.NewPostRepository(db),
		Comments:      repository.NewCommentRepository(db),
		Profiles:      repository.NewProfileRepository(db),
		Products:      repository.NewProductRepository(db),
		Merchants:     repository.NewMerchantRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Auth:          repository.NewAuthProvider(db, cfg.JWTSecret, ttl),
	}
}

func (rt *Runtime) resumeSession(ctx context.Context) {
	token := rt.Store.State().Auth.SessionID
	if token == "" {
		return
	}
	if _, err := rt.Services.Auth.SignInWithToken(ctx, token); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "persisted session could not be resumed", "error", err)
	}
}

// Shutdown stops persisting after a final flush, waits for background
// sign-outs and closes the connections.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	rt.detach()

	done := make(chan struct{})
	go func() {
		rt.Services.Auth.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		observability.GlobalLogger.Warn("background sign-out still running at shutdown")
	}

	var errs []error
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func seedIfEmpty(db *gorm.DB, opts seed.Options) error {
	var count int64
	if err := db.Model(&models.Profile{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		observability.GlobalLogger.Info("database already has profiles, skipping demo seed", "profiles", count)
		return nil
	}
	_, err := seed.Seed(db, opts)
	return err
}
