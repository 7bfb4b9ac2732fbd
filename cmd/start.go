package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/database"
	"pattern-catalog/core/loader"
	"pattern-catalog/core/logger"
	"pattern-catalog/core/metrics"
	"pattern-catalog/core/middleware/auth"
	"pattern-catalog/core/middleware/rayid"
	catalogfeature "pattern-catalog/feature/catalog"
	"pattern-catalog/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "pattern-catalog/docs/swagger"
)

// @title Pattern Catalog API
// @version 1.0
// @description Exposes templated storage paths as a catalog of addressable entries.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog server",
	Long:  `Builds the configured catalog and serves it over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadCatalogConfig(cmd)
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Metrics
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := metrics.New(promReg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}

		opts := []catalog.Option{
			catalog.WithLogger(logg),
			catalog.WithMetrics(m),
		}

		// Snapshot database (optional)
		var (
			db    *gorm.DB
			store *catalogfeature.SnapshotStore
		)
		if cfg.Database.Enabled {
			if db, err = database.Connect(cfg.Database); err != nil {
				logg.Warn("Optional database connection failed", zap.Error(err))
				db = nil
			} else {
				store = catalogfeature.NewSnapshotStore(db, logg)
				if err := store.Migrate(); err != nil {
					logg.Warn("Snapshot table unavailable", zap.Error(err))
					store = nil
				} else {
					opts = append(opts, catalog.OnRefresh(store.Hook(cfg.Catalog.Name)))
					logg.Info("Connected to snapshot database", zap.String("driver", cfg.Database.Driver))
				}
			}
		}

		// Catalog
		reg, err := newRegistry(cfg, logg)
		if err != nil {
			return err
		}
		idx, loc, err := catalog.Open(ctx, cfg.Catalog, reg, opts...)
		if err != nil {
			return err
		}
		logg.Info("Catalog ready",
			zap.String("catalog", idx.Name()),
			zap.String("url", loc.String()),
			zap.String("glob", idx.Pattern().Glob()),
			zap.Bool("listable", idx.Listable()))

		if idx.Listable() {
			if err := idx.Reload(ctx); err != nil {
				// Reads retry the listing, so a cold start is not fatal.
				logg.Warn("Initial listing failed", zap.Error(err))
			}
		}

		// Features
		mgr := loader.NewManager()
		mgr.Register(catalogfeature.NewFeature(catalogfeature.NewService(idx, loc, store, logg)))

		var model interface{}
		if db != nil {
			model = catalogfeature.SnapshotEntry{}
		}
		mgr.Register(integrity.NewFeature(integrity.NewService(idx.Pattern(), idx.Lister(), idx.KeyBuilder(), db, model, logg)))

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			l.Info("Request",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(start)))
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		if cfg.Metrics.Enabled {
			app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
		}

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			errCh <- app.Listen(cfg.Server.Addr())
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-sig:
		}

		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(time.Duration(cfg.Server.ShutdownSeconds) * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
