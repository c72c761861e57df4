package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/junaidrashid-git/storefront-api/account"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/cache"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/orders"
	"github.com/junaidrashid-git/storefront-api/repository/memory"
	"github.com/junaidrashid-git/storefront-api/repository/postgres"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	loader *config.Loader
	cfg    *config.Config
	log    zerolog.Logger

	db       *gorm.DB
	catalog  catalog.Repository
	accounts account.Repository
	orders   orders.Repository
	reader   orders.CatalogReader

	cache cache.Cache
	files *storage.Local

	closers []func() error
}

// bootstrap loads config, builds the logger and opens the store. The
// returned context carries the logger.
func bootstrap(ctx context.Context) (*app, context.Context, error) {
	loader, cfg, err := config.Load(configFile)
	if err != nil {
		return nil, ctx, err
	}

	// The logger itself accepts everything; the global level filters so a
	// config reload can change it in either direction.
	log := logger.New("trace", cfg.LogFormat, os.Stdout)
	logger.SetGlobalLevel(cfg.LogLevel)
	ctx = log.WithContext(ctx)

	a := &app{loader: loader, cfg: cfg, log: log, cache: cache.Nop{}}
	a.files = storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)

	switch cfg.Store {
	case config.StoreMemory:
		st := memory.New()
		a.catalog, a.accounts, a.orders, a.reader = st, st, st, st
		log.Warn().Msg("using in-memory store, data is lost on exit")
	default:
		db, err := postgres.Connect(ctx, cfg.DSN(), cfg.DBDebug)
		if err != nil {
			return nil, ctx, err
		}
		a.db = db
		a.closers = append(a.closers, func() error { return postgres.Close(db) })
		catalogRepo := postgres.NewCatalogRepo(db)
		a.catalog, a.reader = catalogRepo, catalogRepo
		a.accounts = postgres.NewUserRepo(db)
		a.orders = postgres.NewOrderRepo(db)
		log.Info().Msg("connected to postgres")
	}
	return a, ctx, nil
}

// connectCache switches to redis when REDIS_ADDR is set. A redis that cannot
// be reached is logged and the service runs uncached.
func (a *app) connectCache(ctx context.Context) {
	if a.cfg.RedisAddr == "" {
		return
	}
	client, err := cache.Connect(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		a.log.Error().Err(err).Str("addr", a.cfg.RedisAddr).Msg("redis unavailable, caching disabled")
		return
	}
	a.cache = cache.NewRedisCache(client, "storefront")
	a.closers = append(a.closers, client.Close)
	a.log.Info().Str("addr", a.cfg.RedisAddr).Msg("connected to redis")
}

func (a *app) catalogService() *catalog.Service {
	return catalog.NewService(a.catalog, a.cache, a.files, a.cfg.CacheTTL)
}

func (a *app) accountService() *account.Service {
	return account.NewService(a.accounts, auth.BcryptHasher{}, a.files)
}

func (a *app) migrate(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	if err := postgres.Migrate(ctx, a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.log.Info().Msg("database schema is up to date")
	return nil
}

// seed loads demo catalog data and, when configured, the admin account.
func (a *app) seed(ctx context.Context) error {
	if err := a.catalogService().Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if a.cfg.AdminUsername == "" {
		return nil
	}
	if err := a.accountService().SeedAdmin(ctx, a.cfg.AdminUsername, a.cfg.AdminEmail, a.cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
