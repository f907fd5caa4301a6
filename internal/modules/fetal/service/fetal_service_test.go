package service_test

import (
	"context"
	"testing"
	"time"

	fetalout "mamatimer/internal/modules/fetal/adapter/out"
	"mamatimer/internal/modules/fetal/domain"
	"mamatimer/internal/modules/fetal/service"
	"mamatimer/internal/platform/kv"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type fixedID struct{}

func (fixedID) New() string { return "unused" }

var t0 = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func TestZeroOptionsUseDefaults(t *testing.T) {
	t.Parallel()
	svc := service.NewFetalService(fixedClock{now: t0}, fixedID{}, fetalout.NewKVRecordStore(kv.NewMemoryStore()), service.Options{})
	if got := svc.CoolDown(); got != domain.DefaultCoolDown {
		t.Fatalf("expected default cool-down, got %s", got)
	}
	if got := svc.NewSession().LengthSeconds; got != domain.DefaultSessionSeconds {
		t.Fatalf("expected default length, got %d", got)
	}
}

func TestAppendKeepsRecordsWrittenByOtherServices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewFileStore(t.TempDir())
	newService := func() *service.FetalService {
		return service.NewFetalService(fixedClock{now: t0}, fixedID{}, fetalout.NewKVRecordStore(store), service.Options{Location: time.UTC})
	}
	a, b := newService(), newService()

	record := func(id string, offset time.Duration) domain.Record {
		start := t0.Add(offset)
		return domain.Record{ID: id, StartTime: start.UnixMilli(), EndTime: start.Add(time.Hour).UnixMilli(), ValidCount: 1, TotalClicks: 1}
	}
	if err := a.Append(ctx, record("r1", 0)); err != nil {
		t.Fatalf("append r1: %v", err)
	}
	if err := b.Append(ctx, record("r2", time.Hour)); err != nil {
		t.Fatalf("append r2: %v", err)
	}
	if err := a.Append(ctx, record("r3", 2*time.Hour)); err != nil {
		t.Fatalf("append r3: %v", err)
	}
	if err := a.Append(ctx, record("r1", 0)); err != nil {
		t.Fatalf("append r1 again: %v", err)
	}

	stored, err := fetalout.NewKVRecordStore(store).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var ids []string
	for _, r := range stored {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "r1" || ids[1] != "r2" || ids[2] != "r3" {
		t.Fatalf("expected [r1 r2 r3], got %v", ids)
	}
	if got := len(b.Records(ctx)); got != 3 {
		t.Fatalf("second service should see all records, got %d", got)
	}
}
