package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	contractioninadapter "mamatimer/internal/modules/contraction/adapter/in"
	contractionoutadapter "mamatimer/internal/modules/contraction/adapter/out"
	contractionservice "mamatimer/internal/modules/contraction/service"
	contractionusecase "mamatimer/internal/modules/contraction/usecase"
	fetalinadapter "mamatimer/internal/modules/fetal/adapter/in"
	fetaloutadapter "mamatimer/internal/modules/fetal/adapter/out"
	fetalservice "mamatimer/internal/modules/fetal/service"
	fetalusecase "mamatimer/internal/modules/fetal/usecase"
	historyinadapter "mamatimer/internal/modules/history/adapter/in"
	historyoutadapter "mamatimer/internal/modules/history/adapter/out"
	historyservice "mamatimer/internal/modules/history/service"
	historyusecase "mamatimer/internal/modules/history/usecase"
	"mamatimer/internal/platform/clock"
	"mamatimer/internal/platform/config"
	"mamatimer/internal/platform/id"
	"mamatimer/internal/platform/kv"
	"mamatimer/internal/platform/logging"
	"mamatimer/internal/platform/notify"
	uiapp "mamatimer/internal/ui/app"
)

// Options carries the collaborators that differ between the one-shot CLI,
// the foreground run loop and the TUI.
type Options struct {
	Logger   *slog.Logger
	Notifier notify.Notifier
	// Tickers drives the timers in-process. Leave nil for one-shot commands.
	Tickers clock.TickerFactory
	Clock   clock.Clock
	// Store overrides the configured backend.
	Store kv.Store
}

type App struct {
	Config         config.Config
	Location       *time.Location
	FetalCLI       fetalinadapter.CLIHandler
	ContractionCLI contractioninadapter.CLIHandler
	HistoryCLI     historyinadapter.CLIHandler

	closers []func() error
}

func New(cfg config.Config, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Notifier == nil || !cfg.Notifications {
		opts.Notifier = notify.Noop{}
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Location: loc}
	store := opts.Store
	if store == nil {
		opened, closeStore, err := OpenStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
		}
		store = opened
		if closeStore != nil {
			app.closers = append(app.closers, closeStore)
		}
	}
	ids := id.UUIDv7{}

	fetalSvc := fetalservice.NewFetalService(opts.Clock, ids, fetaloutadapter.NewKVRecordStore(store), fetalservice.Options{
		Location:      loc,
		SessionLength: cfg.FetalSessionLength(),
		CoolDown:      cfg.CoolDown(),
		Logger:        opts.Logger,
	})
	fetalUC := fetalusecase.NewInteractor(fetalSvc, fetaloutadapter.NewKVActiveSessionStore(store), opts.Tickers, opts.Notifier)

	contractionSvc := contractionservice.NewContractionService(opts.Clock, ids, contractionoutadapter.NewKVRecordStore(store), loc, opts.Logger)
	contractionUC := contractionusecase.NewInteractor(contractionSvc, contractionoutadapter.NewKVActiveSessionStore(store), opts.Tickers, opts.Notifier)

	historyUC := historyusecase.NewInteractor(
		historyservice.NewHistoryService(fetalUC, contractionUC, opts.Clock, loc, opts.Logger),
		historyoutadapter.NewMarkdownNoteStore(cfg.DataDir, loc),
	)

	// Usecases close first so tickers stop before the store goes away.
	app.closers = append([]func() error{fetalUC.Close, contractionUC.Close}, app.closers...)
	app.FetalCLI = fetalinadapter.NewCLIHandler(fetalUC)
	app.ContractionCLI = contractioninadapter.NewCLIHandler(contractionUC)
	app.HistoryCLI = historyinadapter.NewCLIHandler(historyUC)
	return app, nil
}

// OpenStore opens the configured key-value backend. The returned close func
// may be nil.
func OpenStore(cfg config.Config) (kv.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := kv.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil, nil
	case config.BackendFile, "":
		return kv.NewFileStore(filepath.Join(cfg.DataDir, "store")), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App, queue *notify.Queue) error {
	model := uiapp.NewModel(app.FetalCLI, app.ContractionCLI, app.HistoryCLI, queue, uiapp.Options{
		Location:      app.Location,
		SessionLength: app.Config.FetalSessionLength(),
		CoolDown:      app.Config.CoolDown(),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
