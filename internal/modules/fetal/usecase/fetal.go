package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mamatimer/internal/modules/fetal/domain"
	"mamatimer/internal/modules/fetal/dto"
	fetalin "mamatimer/internal/modules/fetal/port/in"
	fetalout "mamatimer/internal/modules/fetal/port/out"
	"mamatimer/internal/modules/fetal/service"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/clock"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/notify"
)

// Interactor runs at most one counting session. With a ticker factory the
// countdown advances on its own; without one the caller drives Tick and
// wall-clock catch-up happens on resume.
type Interactor struct {
	svc         *service.FetalService
	activeStore fetalout.ActiveSessionStore
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

func NewInteractor(svc *service.FetalService, activeStore fetalout.ActiveSessionStore, tickers clock.TickerFactory, notifier notify.Notifier) fetalin.Usecase {
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
	i.saveActiveLocked(ctx)
	i.acquireTickerLocked()
	i.logger.Info("fetal session started", "session_id", session.SessionID, "length_seconds", session.LengthSeconds)
	i.notifier.Vibrate()
	i.notifier.Toast("Counting started")
	return dto.StartOutput{
		SessionID:        session.SessionID,
		StartedAt:        session.StartedAt,
		RemainingSeconds: session.RemainingSeconds,
	}, nil
}

func (i *Interactor) RecordMovement(ctx context.Context) (dto.MovementOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.syncLocked(ctx)
	if i.session == nil {
		return dto.MovementOutput{}, apperrors.ErrNoActiveSession
	}

	coolDown := i.svc.CoolDown()
	valid := i.session.RecordEvent(i.svc.Now(), coolDown)
	i.saveActiveLocked(ctx)
	if valid {
		i.notifier.Vibrate()
	}
	return dto.MovementOutput{
		Valid:       valid,
		TotalClicks: i.session.TotalClicks,
		ValidCount:  i.session.ValidCount,
		NextValidAt: i.session.NextValidAt(coolDown),
	}, nil
}

// Tick advances the countdown by one second. The tick that reaches zero
// finalizes the session exactly once.
func (i *Interactor) Tick(ctx context.Context) (dto.StatusOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.resumeLocked(ctx)
	i.tickLocked(ctx)
	return i.statusLocked(), nil
}

// End finalizes the running session. Ending while idle, or after another
// process already ended it, is a no-op.
func (i *Interactor) End(ctx context.Context) (dto.EndOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.syncLocked(ctx)
	if i.session == nil {
		return dto.EndOutput{}, nil
	}
	return i.finalizeLocked(ctx, i.svc.Now(), false), nil
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

// Close stops the countdown ticker. A running session stays persisted and is
// resumed by the next interactor.
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
			i.logger.Warn("load active fetal session", "error", err)
		}
		return
	}
	active.CatchUp(i.svc.Now())
	i.session = &active
	i.shared = true
	if active.Expired() {
		out := i.finalizeLocked(ctx, active.EndsAt(), true)
		i.logger.Info("fetal session expired while away", "session_id", out.Record.ID)
		return
	}
	i.acquireTickerLocked()
}

func (i *Interactor) tickLocked(ctx context.Context) {
	if i.session == nil {
		return
	}
	if !i.session.Tick() {
		return
	}
	if !i.ownsLocked(ctx) {
		i.dropLocked()
		return
	}
	i.finalizeLocked(ctx, i.svc.Now(), true)
}

// syncLocked resumes the persisted session, then drops the in-memory one if
// another process has since finalized or replaced it.
func (i *Interactor) syncLocked(ctx context.Context) {
	i.resumeLocked(ctx)
	if i.session == nil || i.ownsLocked(ctx) {
		return
	}
	i.dropLocked()
	i.resumeLocked(ctx)
}

// ownsLocked reports whether the active-session store still holds this
// session. A session that was never stored, or a store that cannot be read,
// leaves the in-memory session in charge.
func (i *Interactor) ownsLocked(ctx context.Context) bool {
	if i.activeStore == nil || !i.shared {
		return true
	}
	active, err := i.activeStore.LoadActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return false
	}
	if err != nil {
		i.logger.Warn("check active fetal session", "error", err)
		return true
	}
	return active.SessionID == i.session.SessionID
}

func (i *Interactor) dropLocked() {
	i.logger.Info("fetal session finished elsewhere", "session_id", i.session.SessionID)
	i.releaseTickerLocked()
	i.session = nil
	i.shared = false
	i.resumed = false
}

func (i *Interactor) finalizeLocked(ctx context.Context, endedAt time.Time, automatic bool) dto.EndOutput {
	record := i.session.Finish(endedAt)
	persisted := i.svc.Append(ctx, record) == nil
	if i.activeStore != nil {
		if err := i.activeStore.ClearActive(ctx); err != nil {
			i.logger.Warn("clear active fetal session", "error", err)
		}
	}
	i.releaseTickerLocked()
	i.session = nil
	i.shared = false

	i.notifier.Vibrate()
	i.notifier.Toast(fmt.Sprintf("Session complete: %d movements", record.ValidCount))
	return dto.EndOutput{
		Ended:     true,
		Automatic: automatic,
		Persisted: persisted,
		Record:    toRecordOutput(record, i.svc.Location()),
	}
}

func (i *Interactor) saveActiveLocked(ctx context.Context) {
	if i.activeStore == nil || i.session == nil {
		return
	}
	if err := i.activeStore.SaveActive(ctx, *i.session); err != nil {
		i.logger.Warn("persist active fetal session", "error", err)
		return
	}
	i.shared = true
}

// ─── countdown ticker ───

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
			i.tickFrom(done)
		}
	}
}

func (i *Interactor) tickFrom(done chan struct{}) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.done != done {
		return
	}
	i.tickLocked(context.Background())
}

// ─── mapping ───

func (i *Interactor) statusLocked() dto.StatusOutput {
	if i.session == nil {
		return dto.StatusOutput{}
	}
	out := dto.StatusOutput{
		Active:           true,
		SessionID:        i.session.SessionID,
		StartedAt:        i.session.StartedAt,
		RemainingSeconds: i.session.RemainingSeconds,
		TotalClicks:      i.session.TotalClicks,
		ValidCount:       i.session.ValidCount,
	}
	if i.session.LastValidAt != nil {
		out.LastValidAt = *i.session.LastValidAt
	}
	return out
}

func toRecordOutput(r domain.Record, loc *time.Location) dto.RecordOutput {
	out := dto.RecordOutput{ID: r.ID, ValidCount: r.ValidCount, TotalClicks: r.TotalClicks}
	if at, err := r.Timestamp(loc); err == nil {
		out.StartedAt = at.In(loc)
	}
	if r.EndTime > 0 {
		out.EndedAt = time.UnixMilli(r.EndTime).In(loc)
	}
	return out
}

func toDayOutput(report domain.DayReport, loc *time.Location) dto.DayOutput {
	out := dto.DayOutput{
		Day: report.Day,
		Key: calendar.Key(report.Day, loc),
		Stats: dto.StatsOutput{
			SessionCount:    report.Stats.SessionCount,
			TotalValidCount: report.Stats.TotalValidCount,
			TotalClicks:     report.Stats.TotalClicks,
			AvgPerSession:   report.Stats.AvgPerSession,
			Estimate12h:     report.Stats.Estimate12h,
		},
	}
	for _, r := range report.Records {
		out.Records = append(out.Records, toRecordOutput(r.Record, loc))
	}
	return out
}
