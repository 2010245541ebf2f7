package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/foodies/cache"
	"github.com/krishkalaria12/foodies/config"
	"github.com/krishkalaria12/foodies/database"
	handler "github.com/krishkalaria12/foodies/handlers"
	"github.com/krishkalaria12/foodies/media"
	"github.com/krishkalaria12/foodies/middleware"
	"github.com/krishkalaria12/foodies/router"
	"github.com/krishkalaria12/foodies/submission"
	"github.com/krishkalaria12/foodies/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.MustLoad()

	shutdownTelemetry, err := telemetry.Init(ctx, "foodies", cfg.MetricsStdout)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	db := database.MustConnect(cfg)
	// close the database connection
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing the database connection: %v", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	persister, err := newPersister(ctx, cfg)
	if err != nil {
		return err
	}

	routes, err := cache.New(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return err
	}
	scope, err := cache.ParseScope(cfg.InvalidationScope)
	if err != nil {
		return err
	}

	store := database.NewMealStore(db)
	svc := submission.NewService(persister, store, routes,
		submission.WithListingRoute(cfg.ListingRoute),
		submission.WithScope(scope),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    cfg.BodyLimit(),
	})
	if local, ok := persister.(*media.Local); ok {
		app.Static(cfg.MediaBaseURL, local.Dir())
	}
	router.SetupRoutes(app, handler.NewMealHandler(svc, store), routes)

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server is listening at the port %s", cfg.Port)
		errc <- app.Listen(":" + cfg.Port)
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sc)

	select {
	case err := <-errc:
		return err
	case <-sc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newPersister(ctx context.Context, cfg *config.Config) (media.Persister, error) {
	switch cfg.MediaBackend {
	case config.MediaGCS:
		return media.NewGCS(ctx, cfg.GCSProjectID, cfg.GCSBucket)
	case config.MediaS3:
		return media.NewS3(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicURL)
	default:
		return media.NewLocal(cfg.MediaDir, cfg.MediaBaseURL)
	}
}
