package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"bulk-manager/core/loader"
	"bulk-manager/core/logger"
	"bulk-manager/core/middleware/auth"
	"bulk-manager/core/middleware/rayid"
	"bulk-manager/feature/bulkupdate"
	"bulk-manager/feature/fieldcopy"
	"bulk-manager/feature/migration"
	"bulk-manager/feature/notes"
	"bulk-manager/feature/runs"
	"bulk-manager/feature/upsert"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "bulk-manager/docs/swagger"
)

// @title Bulk Manager API
// @version 1.0
// @description Preview and execute bulk reconciliation runs against a remote entity API.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bulk manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := e.log
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
			BodyLimit:             e.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager()
		mgr.Register(fieldcopy.NewFeature(fieldcopy.NewService(e.remote, e.remote, e.runner, e.migrations, logg), logg))
		mgr.Register(notes.NewFeature(notes.NewService(e.remote, e.remote, e.runner, logg), logg))
		mgr.Register(bulkupdate.NewFeature(bulkupdate.NewService(e.remote, e.remote, e.runner, logg), logg))
		mgr.Register(upsert.NewFeature(upsert.NewService(e.remote, e.remote, e.runner, logg), logg))
		mgr.Register(migration.NewFeature(e.migrations, logg))
		mgr.Register(runs.NewFeature(e.runner, logg))

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("took", time.Since(start)),
			)
			return err
		})

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: e.cfg.Server.ApiKey}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		go func() {
			logg.Info("Starting server", zap.String("port", e.cfg.Server.Port))
			if err := app.Listen(e.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down server...")
		// In-flight runs see their request context end and stop at the next item.
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logg.Warn("Shutdown incomplete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
