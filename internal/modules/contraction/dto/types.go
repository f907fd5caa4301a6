package dto

import "time"

type StartOutput struct {
	SessionID string
	StartedAt time.Time
}

type StatusOutput struct {
	Active         bool
	SessionID      string
	StartedAt      time.Time
	ElapsedSeconds int
}

type StopOutput struct {
	Stopped   bool
	Persisted bool
	Record    RecordOutput
}

type RecordOutput struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	IntervalSeconds int
	ShowDash        bool
	IsLabor         bool
}

type DayInput struct {
	// Day selects a calendar day; zero means today.
	Day time.Time
}

type StatsOutput struct {
	TotalCount  int
	AvgDuration int
	AvgInterval int
	LaborCount  int
}

type DayOutput struct {
	Day     time.Time
	Key     string
	Records []RecordOutput
	Stats   StatsOutput
}
