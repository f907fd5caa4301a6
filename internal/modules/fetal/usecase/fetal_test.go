package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	fetalout "mamatimer/internal/modules/fetal/adapter/out"
	"mamatimer/internal/modules/fetal/domain"
	fetalin "mamatimer/internal/modules/fetal/port/in"
	"mamatimer/internal/modules/fetal/service"
	"mamatimer/internal/modules/fetal/usecase"
	"mamatimer/internal/platform/clock"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/kv"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) NewTicker(time.Duration) clock.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) Last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

type recordingNotifier struct {
	mu       sync.Mutex
	vibrates int
	toasts   chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{toasts: make(chan string, 16)}
}

func (r *recordingNotifier) Vibrate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vibrates++
}

func (r *recordingNotifier) Toast(message string) {
	select {
	case r.toasts <- message:
	default:
	}
}

func (r *recordingNotifier) waitFor(t *testing.T, prefix string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-r.toasts:
			if strings.HasPrefix(msg, prefix) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for toast %q", prefix)
		}
	}
}

type failingKV struct {
	failGet bool
	failSet bool
	inner   *kv.MemoryStore
}

func (f failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("disk unavailable")
	}
	return f.inner.Get(ctx, key)
}

func (f failingKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.inner.Set(ctx, key, value)
}

func (f failingKV) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}

var t0 = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newUsecase(store kv.Store, clk clock.Clock, tickers clock.TickerFactory, notifier *recordingNotifier, length time.Duration) fetalin.Usecase {
	svc := service.NewFetalService(clk, fakeID{}, fetalout.NewKVRecordStore(store), service.Options{
		Location:      time.UTC,
		SessionLength: length,
		CoolDown:      domain.DefaultCoolDown,
	})
	if notifier == nil {
		notifier = newRecordingNotifier()
	}
	return usecase.NewInteractor(svc, fetalout.NewKVActiveSessionStore(store), tickers, notifier)
}

func TestCountingSessionPersistsOneRecord(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	clk := &fakeClock{now: t0}
	uc := newUsecase(store, clk, nil, nil, time.Hour)
	ctx := context.Background()

	started, err := uc.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.RemainingSeconds != 3600 {
		t.Fatalf("expected 3600 remaining, got %d", started.RemainingSeconds)
	}
	wantValid := []bool{true, false, true}
	for idx, step := range []time.Duration{0, 60 * time.Second, 250 * time.Second} {
		clk.Advance(step)
		got, err := uc.RecordMovement(ctx)
		if err != nil {
			t.Fatalf("movement %d: %v", idx, err)
		}
		if got.Valid != wantValid[idx] {
			t.Fatalf("movement %d: expected valid=%v", idx, wantValid[idx])
		}
	}
	clk.Advance(3600*time.Second - 310*time.Second)
	ended, err := uc.End(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !ended.Ended || ended.Automatic || !ended.Persisted {
		t.Fatalf("unexpected end output: %+v", ended)
	}
	if ended.Record.ValidCount != 2 || ended.Record.TotalClicks != 3 {
		t.Fatalf("expected 2 valid of 3 clicks, got %+v", ended.Record)
	}

	records, err := fetalout.NewKVRecordStore(store).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].EndTime-records[0].StartTime != 3600*1000 {
		t.Fatalf("unexpected record span: %+v", records[0])
	}
	if _, found, _ := store.Get(ctx, domain.ActiveKey); found {
		t.Fatalf("active session should be cleared after end")
	}

	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Active {
		t.Fatalf("expected idle after end")
	}
}

func TestStartWhileActiveFails(t *testing.T) {
	t.Parallel()
	uc := newUsecase(kv.NewMemoryStore(), &fakeClock{now: t0}, nil, nil, time.Hour)
	if _, err := uc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Start(context.Background()); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
}

func TestIdleOperations(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	uc := newUsecase(store, &fakeClock{now: t0}, nil, nil, time.Hour)
	ctx := context.Background()

	if _, err := uc.RecordMovement(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	ended, err := uc.End(ctx)
	if err != nil {
		t.Fatalf("end while idle: %v", err)
	}
	if ended.Ended {
		t.Fatalf("idle end should be a no-op")
	}
	if _, err := uc.Tick(ctx); err != nil {
		t.Fatalf("tick while idle: %v", err)
	}
	if _, found, _ := store.Get(ctx, domain.RecordsKey); found {
		t.Fatalf("idle operations must not write records")
	}
}

func TestTickFinalizesExactlyOnce(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	clk := &fakeClock{now: t0}
	uc := newUsecase(store, clk, nil, nil, 3*time.Second)
	ctx := context.Background()

	if _, err := uc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	for step := 0; step < 5; step++ {
		clk.Advance(time.Second)
		status, err := uc.Tick(ctx)
		if err != nil {
			t.Fatalf("tick %d: %v", step, err)
		}
		if step < 2 && status.RemainingSeconds != 2-step {
			t.Fatalf("tick %d: expected %d remaining, got %d", step, 2-step, status.RemainingSeconds)
		}
		if step >= 2 && status.Active {
			t.Fatalf("tick %d: session should have finished", step)
		}
	}
	records, err := fetalout.NewKVRecordStore(store).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
}

func TestTickerDrivesCountdown(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	clk := &fakeClock{now: t0}
	tickers := &fakeTickers{}
	notifier := newRecordingNotifier()
	uc := newUsecase(store, clk, tickers, notifier, 2*time.Second)
	ctx := context.Background()

	if _, err := uc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	ticker := tickers.Last()
	ticker.c <- t0.Add(time.Second)
	ticker.c <- t0.Add(2 * time.Second)
	notifier.waitFor(t, "Session complete")

	if !ticker.Stopped() {
		t.Fatalf("ticker should be released after the session finishes")
	}
	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Active {
		t.Fatalf("expected idle after countdown")
	}
	if err := uc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestResumeRestoresSessionAcrossInteractors(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	clk := &fakeClock{now: t0}
	ctx := context.Background()

	first := newUsecase(store, clk, nil, nil, time.Hour)
	if _, err := first.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := first.RecordMovement(ctx); err != nil {
		t.Fatalf("movement: %v", err)
	}
	_ = first.Close()

	clk.Advance(10 * time.Minute)
	second := newUsecase(store, clk, nil, nil, time.Hour)
	status, err := second.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Active || status.ValidCount != 1 || status.TotalClicks != 1 {
		t.Fatalf("expected resumed session, got %+v", status)
	}
	if status.RemainingSeconds != 3000 {
		t.Fatalf("expected catch-up to 3000s, got %d", status.RemainingSeconds)
	}
	got, err := second.RecordMovement(ctx)
	if err != nil {
		t.Fatalf("movement after resume: %v", err)
	}
	if !got.Valid {
		t.Fatalf("movement ten minutes later should count")
	}
}

func TestResumeFinalizesExpiredSession(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	clk := &fakeClock{now: t0}
	ctx := context.Background()

	first := newUsecase(store, clk, nil, nil, time.Hour)
	if _, err := first.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(3 * time.Hour)

	second := newUsecase(store, clk, nil, nil, time.Hour)
	if _, err := second.RecordMovement(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after expiry, got %v", err)
	}
	records, err := fetalout.NewKVRecordStore(store).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected the expired session to be recorded, got %d", len(records))
	}
	if got := time.UnixMilli(records[0].EndTime).UTC(); !got.Equal(t0.Add(time.Hour)) {
		t.Fatalf("expected end at nominal expiry, got %s", got)
	}
}

func TestStorageFailuresDegrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	unreadable := failingKV{failGet: true, inner: kv.NewMemoryStore()}
	uc := newUsecase(unreadable, &fakeClock{now: t0}, nil, nil, time.Hour)
	day, err := uc.Day(ctx, dtoDay(t0))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if day.Stats.SessionCount != 0 {
		t.Fatalf("unreadable storage should read as empty")
	}

	unwritable := failingKV{failSet: true, inner: kv.NewMemoryStore()}
	uc = newUsecase(unwritable, &fakeClock{now: t0}, nil, nil, time.Hour)
	if _, err := uc.Start(ctx); err != nil {
		t.Fatalf("start must survive write failure: %v", err)
	}
	ended, err := uc.End(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !ended.Ended || ended.Persisted {
		t.Fatalf("expected ended but not persisted, got %+v", ended)
	}
}

func TestDayAndHistory(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	seed := []domain.Record{
		{ID: "a", StartTime: t0.UnixMilli(), ValidCount: 5, TotalClicks: 8},
		{ID: "b", StartTime: t0.Add(4 * time.Hour).UnixMilli(), ValidCount: 2, TotalClicks: 2},
		{ID: "c", StartTime: t0.Add(-24 * time.Hour).UnixMilli(), ValidCount: 4, TotalClicks: 4},
	}
	ctx := context.Background()
	if err := fetalout.NewKVRecordStore(store).SaveAll(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	uc := newUsecase(store, &fakeClock{now: t0}, nil, nil, time.Hour)

	today, err := uc.Day(ctx, dtoDay(time.Time{}))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if today.Key != "2026-10-18" || today.Stats.SessionCount != 2 || today.Stats.AvgPerSession != 3.5 || today.Stats.Estimate12h != 42 {
		t.Fatalf("unexpected today: %+v", today)
	}
	history, err := uc.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Key != "2026-10-18" || history[1].Key != "2026-10-17" {
		t.Fatalf("unexpected history order: %+v", history)
	}
}

func TestProcessesSharingStoreKeepEverySession(t *testing.T) {
	t.Parallel()
	store := kv.NewFileStore(t.TempDir())
	clk := &fakeClock{now: t0}
	ids := &seqID{}
	ctx := context.Background()
	tui, cli := newProcess(store, clk, ids), newProcess(store, clk, ids)

	for n, uc := range []fetalin.Usecase{tui, cli, tui} {
		if _, err := uc.Start(ctx); err != nil {
			t.Fatalf("session %d start: %v", n, err)
		}
		clk.Advance(time.Minute)
		if _, err := uc.End(ctx); err != nil {
			t.Fatalf("session %d end: %v", n, err)
		}
		clk.Advance(time.Minute)
	}

	records, err := fetalout.NewKVRecordStore(store).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	day, err := tui.Day(ctx, dtoDay(t0))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if day.Stats.SessionCount != 3 {
		t.Fatalf("long-lived interactor should see sessions from the other process, got %d", day.Stats.SessionCount)
	}
}

func TestSessionEndedByAnotherProcessIsDropped(t *testing.T) {
	t.Parallel()
	store := kv.NewFileStore(t.TempDir())
	clk := &fakeClock{now: t0}
	ids := &seqID{}
	ctx := context.Background()
	tui, cli := newProcess(store, clk, ids), newProcess(store, clk, ids)

	if _, err := tui.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(time.Minute)
	ended, err := cli.End(ctx)
	if err != nil || !ended.Ended {
		t.Fatalf("other process should end the session: %+v %v", ended, err)
	}

	if _, err := tui.RecordMovement(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	again, err := tui.End(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if again.Ended {
		t.Fatalf("session already ended elsewhere must not be recorded twice")
	}
	records, err := fetalout.NewKVRecordStore(store).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].ID != "id-1" {
		t.Fatalf("expected only id-1, got %+v", records)
	}
}

func TestSessionReplacedByAnotherProcessIsAdopted(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	clk := &fakeClock{now: t0}
	ids := &seqID{}
	ctx := context.Background()
	tui, cli := newProcess(store, clk, ids), newProcess(store, clk, ids)

	if _, err := tui.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := cli.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	started, err := cli.Start(ctx)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	status, err := tui.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Active || status.SessionID != started.SessionID {
		t.Fatalf("expected tui to follow %s, got %+v", started.SessionID, status)
	}
}
