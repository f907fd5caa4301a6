package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mamatimer/internal/modules/contraction/domain"
	"mamatimer/internal/modules/contraction/dto"
	contractionin "mamatimer/internal/modules/contraction/port/in"
	contractionout "mamatimer/internal/modules/contraction/port/out"
	"mamatimer/internal/modules/contraction/service"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/clock"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/format"
	"mamatimer/internal/platform/notify"
)

type Interactor struct {
	svc         *service.ContractionService
	activeStore contractionout.ActiveSessionStore
	tickers     clock.TickerFactory
	notifier    notify.Notifier
	logger      *slog.Logger

	mu      sync.Mutex
	resumed bool
	session *domain.Session
	// shared is set once the session is known to the active-session store.
	shared bool
	ticker  clock.Ticker
	done    chan struct{}
}

func NewInteractor(svc *service.ContractionService, activeStore contractionout.ActiveSessionStore, tickers clock.TickerFactory, notifier notify.Notifier) contractionin.Usecase {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Interactor{
		svc:         svc,
		activeStore: activeStore,
		tickers:     tickers,
		notifier:    notifier,
		logger:      svc.Logger(),
	}
}

func (i *Interactor) Start(ctx context.Context) (dto.StartOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.syncLocked(ctx)
	if i.session != nil {
		return dto.StartOutput{}, apperrors.ErrActiveSessionExists
	}

	session := i.svc.NewSession()
	i.session = &session
	i.shared = false
	if i.activeStore != nil {
		if err := i.activeStore.SaveActive(ctx, session); err != nil {
			i.logger.Warn("persist active contraction", "error", err)
		} else {
			i.shared = true
		}
	}
	i.acquireTickerLocked()
	i.logger.Info("contraction started", "session_id", session.SessionID)
	i.notifier.Vibrate()
	i.notifier.Toast("Contraction started")
	return dto.StartOutput{SessionID: session.SessionID, StartedAt: session.StartedAt}, nil
}

// Stop records the running contraction. Stopping while idle, or after another
// process already stopped it, is a no-op.
func (i *Interactor) Stop(ctx context.Context) (dto.StopOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.syncLocked(ctx)
	if i.session == nil {
		return dto.StopOutput{}, nil
	}

	record := i.session.Finish(i.svc.Now())
	persisted := i.svc.Append(ctx, record) == nil
	if i.activeStore != nil {
		if err := i.activeStore.ClearActive(ctx); err != nil {
			i.logger.Warn("clear active contraction", "error", err)
		}
	}
	i.releaseTickerLocked()
	i.session = nil
	i.shared = false

	i.notifier.Vibrate()
	i.notifier.Toast("Contraction recorded: " + format.Clock(record.Duration))
	return dto.StopOutput{
		Stopped:   true,
		Persisted: persisted,
		Record:    i.recordOutput(ctx, record),
	}, nil
}

// Tick advances the stopwatch by one second.
func (i *Interactor) Tick(ctx context.Context) (dto.StatusOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.resumeLocked(ctx)
	if i.session != nil {
		i.session.Tick()
	}
	return i.statusLocked(), nil
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.syncLocked(ctx)
	return i.statusLocked(), nil
}

func (i *Interactor) Day(ctx context.Context, input dto.DayInput) (dto.DayOutput, error) {
	day := input.Day
	if day.IsZero() {
		day = i.svc.Today()
	}
	return toDayOutput(i.svc.Day(ctx, day), i.svc.Location()), nil
}

func (i *Interactor) History(ctx context.Context) ([]dto.DayOutput, error) {
	reports := i.svc.Days(ctx)
	out := make([]dto.DayOutput, 0, len(reports))
	for _, report := range reports {
		out = append(out, toDayOutput(report, i.svc.Location()))
	}
	return out, nil
}

// Close stops the ticker; a running contraction stays persisted.
func (i *Interactor) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.releaseTickerLocked()
	return nil
}

func (i *Interactor) resumeLocked(ctx context.Context) {
	if i.resumed {
		return
	}
	i.resumed = true
	if i.activeStore == nil {
		return
	}
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			i.logger.Warn("load active contraction", "error", err)
		}
		return
	}
	active.CatchUp(i.svc.Now())
	i.session = &active
	i.shared = true
	i.acquireTickerLocked()
}

// syncLocked resumes the persisted contraction, then drops the in-memory one
// if another process has since stopped or replaced it.
func (i *Interactor) syncLocked(ctx context.Context) {
	i.resumeLocked(ctx)
	if i.session == nil || i.ownsLocked(ctx) {
		return
	}
	i.logger.Info("contraction stopped elsewhere", "session_id", i.session.SessionID)
	i.releaseTickerLocked()
	i.session = nil
	i.shared = false
	i.resumed = false
	i.resumeLocked(ctx)
}

func (i *Interactor) ownsLocked(ctx context.Context) bool {
	if i.activeStore == nil || !i.shared {
		return true
	}
	active, err := i.activeStore.LoadActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return false
	}
	if err != nil {
		i.logger.Warn("check active contraction", "error", err)
		return true
	}
	return active.SessionID == i.session.SessionID
}

// recordOutput derives the interval fields of a freshly stopped record from
// the rest of its day.
func (i *Interactor) recordOutput(ctx context.Context, record domain.Record) dto.RecordOutput {
	at, err := record.Timestamp(i.svc.Location())
	if err == nil {
		for _, view := range i.svc.Day(ctx, at).Views {
			if view.ID == record.ID {
				return toRecordOutput(view, i.svc.Location())
			}
		}
	}
	return toRecordOutput(domain.RecordView{Record: record, At: at, ShowDash: true}, i.svc.Location())
}

// ─── stopwatch ticker ───

func (i *Interactor) acquireTickerLocked() {
	if i.tickers == nil || i.ticker != nil {
		return
	}
	i.ticker = i.tickers.NewTicker(time.Second)
	i.done = make(chan struct{})
	go i.pump(i.ticker, i.done)
}

func (i *Interactor) releaseTickerLocked() {
	if i.ticker == nil {
		return
	}
	i.ticker.Stop()
	close(i.done)
	i.ticker = nil
	i.done = nil
}

func (i *Interactor) pump(t clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-t.C():
			i.mu.Lock()
			if i.done == done && i.session != nil {
				i.session.Tick()
			}
			i.mu.Unlock()
		}
	}
}

// ─── mapping ───

func (i *Interactor) statusLocked() dto.StatusOutput {
	if i.session == nil {
		return dto.StatusOutput{}
	}
	return dto.StatusOutput{
		Active:         true,
		SessionID:      i.session.SessionID,
		StartedAt:      i.session.StartedAt,
		ElapsedSeconds: i.session.ElapsedSeconds,
	}
}

func toRecordOutput(view domain.RecordView, loc *time.Location) dto.RecordOutput {
	out := dto.RecordOutput{
		ID:              view.ID,
		DurationSeconds: view.Duration,
		IntervalSeconds: view.IntervalSeconds,
		ShowDash:        view.ShowDash,
		IsLabor:         view.IsLabor,
	}
	if !view.At.IsZero() {
		out.StartedAt = view.At.In(loc)
	}
	if end, ok := view.EndedAt(); ok {
		out.EndedAt = end.In(loc)
	}
	return out
}

func toDayOutput(report domain.DayReport, loc *time.Location) dto.DayOutput {
	out := dto.DayOutput{
		Day: report.Day,
		Key: calendar.Key(report.Day, loc),
		Stats: dto.StatsOutput{
			TotalCount:  report.Stats.TotalCount,
			AvgDuration: report.Stats.AvgDuration,
			AvgInterval: report.Stats.AvgInterval,
			LaborCount:  report.Stats.LaborCount,
		},
	}
	for _, view := range report.Views {
		out.Records = append(out.Records, toRecordOutput(view, loc))
	}
	return out
}
