package domain

import (
	"fmt"
	"time"

	"mamatimer/internal/platform/timestamp"
)

// Record is one completed contraction. Older payloads also carried "date" and
// "interval"; both are derived now and ignored on load.
type Record struct {
	ID        string `json:"id"`
	StartTime int64  `json:"startTime,omitempty"`
	EndTime   int64  `json:"endTime,omitempty"`
	Duration  int    `json:"duration"`
}

func (r Record) Timestamp(loc *time.Location) (time.Time, error) {
	return timestamp.Resolve(r.StartTime, r.ID, loc)
}

// EndedAt is only known for records that stored an explicit end time.
func (r Record) EndedAt() (time.Time, bool) {
	if r.EndTime <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(r.EndTime), true
}

func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if r.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	return nil
}
