package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mamatimer/internal/bootstrap"
	"mamatimer/internal/platform/config"
	"mamatimer/internal/platform/notify"
)

type stepClock struct{ now time.Time }

func (s *stepClock) Now() time.Time { return s.now }

func TestEndToEndDayWithSQLiteBackend(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Backend = config.BackendSQLite
	cfg.Timezone = "UTC"
	clk := &stepClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	queue := notify.NewQueue(16)

	app, err := bootstrap.New(cfg, bootstrap.Options{Clock: clk, Notifier: queue})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	ctx := context.Background()

	if _, err := app.FetalCLI.Start(ctx); err != nil {
		t.Fatalf("fetal start: %v", err)
	}
	if _, err := app.FetalCLI.Tap(ctx); err != nil {
		t.Fatalf("fetal tap: %v", err)
	}
	clk.now = clk.now.Add(time.Hour)
	ended, err := app.FetalCLI.End(ctx)
	if err != nil || !ended.Persisted {
		t.Fatalf("fetal end: %+v %v", ended, err)
	}

	if _, err := app.ContractionCLI.Start(ctx); err != nil {
		t.Fatalf("contraction start: %v", err)
	}
	clk.now = clk.now.Add(50 * time.Second)
	if _, err := app.ContractionCLI.Stop(ctx); err != nil {
		t.Fatalf("contraction stop: %v", err)
	}

	days, err := app.HistoryCLI.List(ctx, "all")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if len(days) != 1 || days[0].Fetal == nil || days[0].Contraction == nil {
		t.Fatalf("unexpected history: %+v", days)
	}

	exported, err := app.HistoryCLI.Export(ctx, time.Time{}, "all")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if want := filepath.Join(dir, "history", "2026", "10", "2026-10-18.md"); exported.Path != want {
		t.Fatalf("expected %s, got %s", want, exported.Path)
	}
	if _, err := os.Stat(exported.Path); err != nil {
		t.Fatalf("note missing: %v", err)
	}
	if len(queue.Drain()) == 0 {
		t.Fatalf("expected notifications to be queued")
	}
}

func TestNotificationsDisabled(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Backend = config.BackendMemory
	cfg.Notifications = false
	queue := notify.NewQueue(4)
	app, err := bootstrap.New(cfg, bootstrap.Options{Notifier: queue})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()
	if _, err := app.ContractionCLI.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := queue.Drain(); len(got) != 0 {
		t.Fatalf("expected no notifications, got %v", got)
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Backend = "redis"
	if _, _, err := bootstrap.OpenStore(cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
