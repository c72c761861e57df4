package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/orders"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	serveMigrate bool
	serveSeed    bool
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, ctx, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return a.serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Migrate the schema before serving")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Load demo data before serving")
	rootCmd.AddCommand(serveCmd)
}

func (a *app) serve(ctx context.Context) error {
	if serveMigrate {
		if err := a.migrate(ctx); err != nil {
			return err
		}
	}
	// The memory store starts empty, so it is always seeded.
	if serveSeed || a.cfg.Store == config.StoreMemory {
		if err := a.seed(ctx); err != nil {
			return err
		}
	}
	a.connectCache(ctx)

	tokens, err := auth.NewTokenMaker(a.cfg.JWTSecret, a.cfg.AccessTokenTTL, a.cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}
	hub := orderControllers.NewHub()
	defer hub.Close()

	r := a.engine(routes.Deps{
		Name:      "storefront-api",
		Version:   Version,
		Catalog:   a.catalogService(),
		Accounts:  a.accountService(),
		Orders:    orders.NewService(a.orders, a.reader, hub),
		Tokens:    tokens,
		Hub:       hub,
		Checks:    a.healthChecks(),
		PageSize:  a.cfg.PageSize,
		MaxUpload: a.cfg.MaxUploadBytes,
	})

	a.loader.Watch(func(cfg *config.Config, err error) {
		if err != nil {
			a.log.Error().Err(err).Msg("config reload rejected")
			return
		}
		level := logger.SetGlobalLevel(cfg.LogLevel)
		a.log.Info().Str("level", level.String()).Msg("config reloaded")
	})

	if a.cfg.BackupDir != "" {
		backup := storage.NewBackup(a.cfg.MediaRoot, a.cfg.BackupDir, a.cfg.BackupRetention, a.cfg.BackupHour)
		go backup.Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("version", Version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *app) engine(d routes.Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = a.cfg.MaxUploadBytes

	r.Use(middleware.RequestLogger(a.log))
	r.Use(middleware.CORS(a.cfg.CORSOrigins))

	// Serve uploaded images
	r.Static(a.cfg.MediaURL, a.cfg.MediaRoot)

	routes.SetupRoutes(r, d)
	return r
}

func (a *app) healthChecks() map[string]adminController.Check {
	checks := map[string]adminController.Check{}
	if a.db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if pinger, ok := a.cache.(interface{ Ping(context.Context) error }); ok {
		checks["cache"] = pinger.Ping
	}
	return checks
}
