package app

import (
	"context"
	"time"

	"restou/internal/crous"
	"restou/internal/menu"
	"restou/internal/metrics"
	"restou/internal/notify"
	"restou/internal/storage"
)

// MenuStore persists scraped menu entries.
type MenuStore interface {
	Upsert(ctx context.Context, e menu.Entry) (menu.UpsertResult, error)
}

// App holds the application's dependencies.
type App struct {
	crousClient  crous.Client
	menus        MenuStore
	metricsStore *metrics.Store
	snapshots    *storage.SnapshotStore
	notifier     notify.Notifier
	now          func() time.Time
}

// NewApp creates and initializes a new App instance. metricsStore and
// snapshots may be nil; a nil notifier is replaced by notify.Nop.
func NewApp(
	crousClient crous.Client,
	menus MenuStore,
	metricsStore *metrics.Store,
	snapshots *storage.SnapshotStore,
	notifier notify.Notifier,
) *App {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &App{
		crousClient:  crousClient,
		menus:        menus,
		metricsStore: metricsStore,
		snapshots:    snapshots,
		notifier:     notifier,
		now:          time.Now,
	}
}
