package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"restou/internal/admin"
	"restou/internal/app"
	"restou/internal/auth"
	"restou/internal/config"
	"restou/internal/crous"
	"restou/internal/database"
	"restou/internal/feedback"
	"restou/internal/menu"
	"restou/internal/metrics"
	"restou/internal/notify"
	"restou/internal/server"
	"restou/internal/storage"
	"restou/internal/tracking"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// services is everything the API and the scrape command share.
type services struct {
	db        *database.DB
	menus     *menu.Repository
	metrics   *metrics.Store
	snapshots *storage.SnapshotStore
	app       *app.App
}

func openServices(cfg *config.Config) (*services, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	snapshots, err := storage.NewSnapshotStore(cfg.SnapshotPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	menus := menu.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	application := app.NewApp(crous.NewClient(cfg), menus, metricsStore, snapshots, notify.New(cfg))

	return &services{
		db:        db,
		menus:     menus,
		metrics:   metricsStore,
		snapshots: snapshots,
		app:       application,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.db.Close()

	srv := server.New(server.Deps{
		Scraper:  svc.app,
		Menus:    svc.menus,
		Admins:   admin.NewRepository(svc.db.SQL),
		Feedback: feedback.NewRepository(svc.db.SQL),
		Tracking: tracking.NewRepository(svc.db.SQL),
		Metrics:  svc.metrics,
		Issuer:   auth.NewIssuer(cfg.JWTSecret, cfg.Production),
		DataPath: filepath.Dir(cfg.DatabasePath),
	})

	return srv.ListenAndServe(cmd.Context(), ":"+cfg.Port)
}
