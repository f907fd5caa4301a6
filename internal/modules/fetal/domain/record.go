package domain

import (
	"fmt"
	"time"

	"mamatimer/internal/platform/timestamp"
)

// Record is a completed counting session. Field names match the persisted
// JSON written by earlier releases so old histories keep loading.
type Record struct {
	ID          string `json:"id"`
	StartTime   int64  `json:"startTime,omitempty"`
	EndTime     int64  `json:"endTime,omitempty"`
	ValidCount  int    `json:"validCount"`
	TotalClicks int    `json:"totalClicks"`
}

func (r Record) Timestamp(loc *time.Location) (time.Time, error) {
	return timestamp.Resolve(r.StartTime, r.ID, loc)
}

func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if r.ValidCount < 0 || r.TotalClicks < 0 {
		return fmt.Errorf("record counts must be non-negative")
	}
	if r.ValidCount > r.TotalClicks {
		return fmt.Errorf("valid count %d exceeds total clicks %d", r.ValidCount, r.TotalClicks)
	}
	return nil
}
