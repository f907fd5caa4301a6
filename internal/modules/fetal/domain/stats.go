package domain

import (
	"math"
	"sort"
	"time"

	"mamatimer/internal/platform/calendar"
)

// EstimateHours is the window the per-session average is extrapolated to.
const EstimateHours = 12

type DayStats struct {
	SessionCount    int
	TotalValidCount int
	TotalClicks     int
	AvgPerSession   float64
	Estimate12h     int
}

type TimedRecord struct {
	Record
	At time.Time
}

type DayReport struct {
	Day     time.Time
	Records []TimedRecord
	Stats   DayStats
}

// Chronological resolves record times, drops records whose time cannot be
// resolved, and sorts ascending by time then id.
func Chronological(records []Record, loc *time.Location) []TimedRecord {
	out := make([]TimedRecord, 0, len(records))
	for _, r := range records {
		at, err := r.Timestamp(loc)
		if err != nil {
			continue
		}
		out = append(out, TimedRecord{Record: r, At: at})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].At.Equal(out[b].At) {
			return out[a].At.Before(out[b].At)
		}
		return out[a].ID < out[b].ID
	})
	return out
}

func DeriveDay(records []Record, day time.Time, loc *time.Location) DayReport {
	report := DayReport{Day: calendar.StartOfDay(day, loc)}
	for _, r := range Chronological(records, loc) {
		if calendar.Contains(report.Day, r.At, loc) {
			report.Records = append(report.Records, r)
		}
	}
	report.Stats = stats(report.Records)
	return report
}

func stats(records []TimedRecord) DayStats {
	out := DayStats{SessionCount: len(records)}
	for _, r := range records {
		out.TotalValidCount += r.ValidCount
		out.TotalClicks += r.TotalClicks
	}
	if out.SessionCount == 0 {
		return out
	}
	perSession := float64(out.TotalValidCount) / float64(out.SessionCount)
	out.AvgPerSession = math.Round(perSession*10) / 10
	out.Estimate12h = int(math.Round(perSession * EstimateHours))
	return out
}

// Days lists the distinct calendar days holding records, newest first.
func Days(records []Record, loc *time.Location) []time.Time {
	timed := Chronological(records, loc)
	instants := make([]time.Time, len(timed))
	for n, r := range timed {
		instants[n] = r.At
	}
	return calendar.DistinctDays(instants, loc)
}
