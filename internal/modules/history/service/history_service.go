package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	contractiondto "mamatimer/internal/modules/contraction/dto"
	contractionin "mamatimer/internal/modules/contraction/port/in"
	fetaldto "mamatimer/internal/modules/fetal/dto"
	fetalin "mamatimer/internal/modules/fetal/port/in"
	"mamatimer/internal/modules/history/domain"
	"mamatimer/internal/modules/history/dto"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/clock"
	"mamatimer/internal/platform/logging"
)

// HistoryService reads both trackers through their inbound ports and groups
// their reports by calendar day.
type HistoryService struct {
	fetal       fetalin.Usecase
	contraction contractionin.Usecase
	clock       clock.Clock
	loc         *time.Location
	logger      *slog.Logger
}

func NewHistoryService(fetal fetalin.Usecase, contraction contractionin.Usecase, clock clock.Clock, loc *time.Location, logger *slog.Logger) *HistoryService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HistoryService{fetal: fetal, contraction: contraction, clock: clock, loc: loc, logger: logger.With("module", "history")}
}

func (s *HistoryService) Now() time.Time { return s.clock.Now() }

func (s *HistoryService) Location() *time.Location { return s.loc }

func (s *HistoryService) Logger() *slog.Logger { return s.logger }

// Days lists every day with records of the requested kind, newest first.
func (s *HistoryService) Days(ctx context.Context, kind domain.Kind) ([]dto.DayOutput, error) {
	byKey := map[string]*dto.DayOutput{}
	entry := func(key string, date time.Time) *dto.DayOutput {
		if d, ok := byKey[key]; ok {
			return d
		}
		d := &dto.DayOutput{Key: key, Date: date}
		byKey[key] = d
		return d
	}

	if kind.IncludesFetal() {
		days, err := s.fetal.History(ctx)
		if err != nil {
			return nil, err
		}
		for idx := range days {
			day := days[idx]
			entry(day.Key, day.Day).Fetal = &day
		}
	}
	if kind.IncludesContraction() {
		days, err := s.contraction.History(ctx)
		if err != nil {
			return nil, err
		}
		for idx := range days {
			day := days[idx]
			entry(day.Key, day.Day).Contraction = &day
		}
	}

	out := make([]dto.DayOutput, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, *d)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key > out[b].Key })
	return out, nil
}

// Day reports one calendar day. Requested kinds are always present, even
// when empty.
func (s *HistoryService) Day(ctx context.Context, day time.Time, kind domain.Kind) (dto.DayOutput, error) {
	if day.IsZero() {
		day = s.clock.Now()
	}
	day = calendar.StartOfDay(day, s.loc)
	out := dto.DayOutput{Key: calendar.Key(day, s.loc), Date: day}
	if kind.IncludesFetal() {
		fetal, err := s.fetal.Day(ctx, fetaldto.DayInput{Day: day})
		if err != nil {
			return dto.DayOutput{}, err
		}
		out.Fetal = &fetal
	}
	if kind.IncludesContraction() {
		contraction, err := s.contraction.Day(ctx, contractiondto.DayInput{Day: day})
		if err != nil {
			return dto.DayOutput{}, err
		}
		out.Contraction = &contraction
	}
	return out, nil
}

func ToDomain(out dto.DayOutput) domain.Day {
	day := domain.Day{Key: out.Key, Date: out.Date}
	if out.Fetal != nil {
		summary := &domain.FetalSummary{
			Sessions:      out.Fetal.Stats.SessionCount,
			ValidCount:    out.Fetal.Stats.TotalValidCount,
			TotalClicks:   out.Fetal.Stats.TotalClicks,
			AvgPerSession: out.Fetal.Stats.AvgPerSession,
			Estimate12h:   out.Fetal.Stats.Estimate12h,
		}
		for _, r := range out.Fetal.Records {
			summary.Entries = append(summary.Entries, domain.FetalEntry{StartedAt: r.StartedAt, ValidCount: r.ValidCount, TotalClicks: r.TotalClicks})
		}
		day.Fetal = summary
	}
	if out.Contraction != nil {
		summary := &domain.ContractionSummary{
			Count:       out.Contraction.Stats.TotalCount,
			AvgDuration: out.Contraction.Stats.AvgDuration,
			AvgInterval: out.Contraction.Stats.AvgInterval,
			LaborCount:  out.Contraction.Stats.LaborCount,
		}
		for _, r := range out.Contraction.Records {
			summary.Entries = append(summary.Entries, domain.ContractionEntry{
				StartedAt:       r.StartedAt,
				DurationSeconds: r.DurationSeconds,
				IntervalSeconds: r.IntervalSeconds,
				ShowDash:        r.ShowDash,
				IsLabor:         r.IsLabor,
			})
		}
		day.Contraction = summary
	}
	return day
}
