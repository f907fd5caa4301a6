package domain

import (
	"math"
	"sort"
	"time"

	"mamatimer/internal/platform/calendar"
)

const (
	// LaborThreshold: a rest gap shorter than this flags the contraction.
	LaborThreshold = 300
	// GapThreshold: a rest gap longer than this is shown as a dash.
	GapThreshold = 3600
)

type RecordView struct {
	Record
	At              time.Time
	IntervalSeconds int
	ShowDash        bool
	IsLabor         bool
}

type DayStats struct {
	TotalCount  int
	AvgDuration int
	AvgInterval int
	LaborCount  int
}

type DayReport struct {
	Day   time.Time
	Views []RecordView
	Stats DayStats
}

type TimedRecord struct {
	Record
	At time.Time
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

// DeriveDay builds the views of one calendar day in ascending order. Intervals
// only link adjacent records of the same day.
func DeriveDay(records []Record, day time.Time, loc *time.Location) DayReport {
	report := DayReport{Day: calendar.StartOfDay(day, loc)}
	var prev *TimedRecord
	for _, r := range Chronological(records, loc) {
		if !calendar.Contains(report.Day, r.At, loc) {
			continue
		}
		view := RecordView{Record: r.Record, At: r.At, ShowDash: true}
		if prev != nil {
			view.IntervalSeconds = interval(*prev, r)
			view.ShowDash = view.IntervalSeconds > GapThreshold
			view.IsLabor = view.IntervalSeconds > 0 && view.IntervalSeconds < LaborThreshold
		}
		report.Views = append(report.Views, view)
		current := r
		prev = &current
	}
	report.Stats = stats(report.Views)
	return report
}

// interval is the rest between the previous contraction's end and this start,
// falling back to start-to-start when the previous end is unknown.
func interval(prev, cur TimedRecord) int {
	from := prev.At
	if end, ok := prev.EndedAt(); ok {
		from = end
	}
	gap := cur.At.Sub(from)
	if gap < 0 {
		return 0
	}
	return int(gap / time.Second)
}

func stats(views []RecordView) DayStats {
	out := DayStats{TotalCount: len(views)}
	if len(views) == 0 {
		return out
	}
	totalDuration := 0
	totalInterval := 0
	for idx, v := range views {
		totalDuration += v.Duration
		if idx > 0 {
			totalInterval += v.IntervalSeconds
		}
		if v.IsLabor {
			out.LaborCount++
		}
	}
	out.AvgDuration = roundDiv(totalDuration, len(views))
	if len(views) > 1 {
		out.AvgInterval = roundDiv(totalInterval, len(views)-1)
	}
	return out
}

func roundDiv(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
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
