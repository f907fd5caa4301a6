package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mamatimer/internal/modules/contraction/domain"
	contractionout "mamatimer/internal/modules/contraction/port/out"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/clock"
	"mamatimer/internal/platform/id"
	"mamatimer/internal/platform/logging"
)

type ContractionService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  contractionout.RecordStore
	loc    *time.Location
	logger *slog.Logger

	mu      sync.Mutex
	records []domain.Record
	// pending holds appended records whose save failed.
	pending []domain.Record
}

func NewContractionService(clock clock.Clock, idGen id.Generator, store contractionout.RecordStore, loc *time.Location, logger *slog.Logger) *ContractionService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ContractionService{
		clock:  clock,
		idGen:  idGen,
		store:  store,
		loc:    loc,
		logger: logger.With("module", "contraction"),
	}
}

func (s *ContractionService) Now() time.Time { return s.clock.Now() }

func (s *ContractionService) Location() *time.Location { return s.loc }

func (s *ContractionService) Logger() *slog.Logger { return s.logger }

func (s *ContractionService) Today() time.Time {
	return calendar.StartOfDay(s.clock.Now(), s.loc)
}

func (s *ContractionService) NewSession() domain.Session {
	return domain.NewSession(s.idGen.New(), s.clock.Now())
}

func (s *ContractionService) Records(ctx context.Context) []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	return append([]domain.Record(nil), s.records...)
}

func (s *ContractionService) Append(ctx context.Context, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	if !containsID(s.records, record.ID) {
		s.records = append(s.records, record)
	}
	if err := s.store.SaveAll(ctx, s.records); err != nil {
		s.logger.Error("persist contraction records", "error", err, "record_id", record.ID)
		if !containsID(s.pending, record.ID) {
			s.pending = append(s.pending, record)
		}
		return err
	}
	s.pending = nil
	s.logger.Info("contraction recorded", "record_id", record.ID, "duration_seconds", record.Duration)
	return nil
}

func (s *ContractionService) Day(ctx context.Context, day time.Time) domain.DayReport {
	return domain.DeriveDay(s.Records(ctx), day, s.loc)
}

func (s *ContractionService) Days(ctx context.Context) []domain.DayReport {
	records := s.Records(ctx)
	days := domain.Days(records, s.loc)
	out := make([]domain.DayReport, 0, len(days))
	for _, day := range days {
		out = append(out, domain.DeriveDay(records, day, s.loc))
	}
	return out
}

// refreshLocked rereads the list on every access so records appended by
// another process survive the next save. The cached list stands in when the
// store cannot be read; records whose save failed are kept on top.
func (s *ContractionService) refreshLocked(ctx context.Context) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("load contraction records, using cached list", "error", err, "cached", len(s.records))
		return
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
