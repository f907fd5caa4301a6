package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mamatimer/internal/modules/fetal/domain"
	fetalout "mamatimer/internal/modules/fetal/port/out"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/clock"
	"mamatimer/internal/platform/id"
	"mamatimer/internal/platform/logging"
)

type Options struct {
	Location      *time.Location
	SessionLength time.Duration
	CoolDown      time.Duration
	Logger        *slog.Logger
}

// FetalService owns the completed-record history. Every append rereads the
// stored list and rewrites it whole.
type FetalService struct {
	clock    clock.Clock
	idGen    id.Generator
	store    fetalout.RecordStore
	loc      *time.Location
	length   int
	coolDown time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	records []domain.Record
	// pending holds appended records whose save failed.
	pending []domain.Record
}

func NewFetalService(clock clock.Clock, idGen id.Generator, store fetalout.RecordStore, opts Options) *FetalService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	length := int(opts.SessionLength / time.Second)
	if length <= 0 {
		length = domain.DefaultSessionSeconds
	}
	coolDown := opts.CoolDown
	if coolDown <= 0 {
		coolDown = domain.DefaultCoolDown
	}
	return &FetalService{
		clock:    clock,
		idGen:    idGen,
		store:    store,
		loc:      opts.Location,
		length:   length,
		coolDown: coolDown,
		logger:   opts.Logger.With("module", "fetal"),
	}
}

func (s *FetalService) Now() time.Time { return s.clock.Now() }

func (s *FetalService) CoolDown() time.Duration { return s.coolDown }

func (s *FetalService) Location() *time.Location { return s.loc }

func (s *FetalService) Logger() *slog.Logger { return s.logger }

func (s *FetalService) NewSession() domain.Session {
	return domain.NewSession(s.idGen.New(), s.clock.Now(), s.length)
}

// Records returns a copy of the history. An unreadable store is logged and
// the last list read is returned instead.
func (s *FetalService) Records(ctx context.Context) []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	return append([]domain.Record(nil), s.records...)
}

// Append adds a finished record and persists the full list. The record stays
// in memory even when the write fails.
func (s *FetalService) Append(ctx context.Context, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	if !containsID(s.records, record.ID) {
		s.records = append(s.records, record)
	}
	if err := s.store.SaveAll(ctx, s.records); err != nil {
		s.logger.Error("persist fetal records", "error", err, "record_id", record.ID)
		if !containsID(s.pending, record.ID) {
			s.pending = append(s.pending, record)
		}
		return err
	}
	s.pending = nil
	s.logger.Info("fetal session recorded", "record_id", record.ID, "valid_count", record.ValidCount, "total_clicks", record.TotalClicks)
	return nil
}

func (s *FetalService) Day(ctx context.Context, day time.Time) domain.DayReport {
	return domain.DeriveDay(s.Records(ctx), day, s.loc)
}

// Days reports every day with records, newest first.
func (s *FetalService) Days(ctx context.Context) []domain.DayReport {
	records := s.Records(ctx)
	days := domain.Days(records, s.loc)
	out := make([]domain.DayReport, 0, len(days))
	for _, day := range days {
		out = append(out, domain.DeriveDay(records, day, s.loc))
	}
	return out
}

func (s *FetalService) Today() time.Time {
	return calendar.StartOfDay(s.clock.Now(), s.loc)
}

// refreshLocked rereads the list on every access so records appended by
// another process survive the next save. The cached list stands in when the
// store cannot be read; records whose save failed are kept on top.
func (s *FetalService) refreshLocked(ctx context.Context) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("load fetal records, using cached list", "error", err, "cached", len(s.records))
		return
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			s.logger.Warn("fetal record failed validation", "record_id", r.ID, "error", err)
		}
	}
	for _, r := range s.pending {
		if !containsID(records, r.ID) {
			records = append(records, r)
		}
	}
	s.records = records
}

func containsID(records []domain.Record, id string) bool {
	for _, r := range records {
		if r.ID == id {
			return true
		}
	}
	return false
}
