package dto

import "time"

type StartOutput struct {
	SessionID        string
	StartedAt        time.Time
	RemainingSeconds int
}

type MovementOutput struct {
	Valid       bool
	TotalClicks int
	ValidCount  int
	NextValidAt time.Time
}

type StatusOutput struct {
	Active           bool
	SessionID        string
	StartedAt        time.Time
	RemainingSeconds int
	TotalClicks      int
	ValidCount       int
	LastValidAt      time.Time
}

type EndOutput struct {
	Ended     bool
	Automatic bool
	Persisted bool
	Record    RecordOutput
}

type RecordOutput struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	ValidCount  int
	TotalClicks int
}

type DayInput struct {
	// Day selects a calendar day; zero means today.
	Day time.Time
}

type StatsOutput struct {
	SessionCount    int
	TotalValidCount int
	TotalClicks     int
	AvgPerSession   float64
	Estimate12h     int
}

type DayOutput struct {
	Day     time.Time
	Key     string
	Records []RecordOutput
	Stats   StatsOutput
}
