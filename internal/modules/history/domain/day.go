package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

type Kind string

const (
	KindAll         Kind = "all"
	KindFetal       Kind = "fetal"
	KindContraction Kind = "contraction"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindAll:
		return KindAll, nil
	case KindFetal:
		return KindFetal, nil
	case KindContraction:
		return KindContraction, nil
	default:
		return "", fmt.Errorf("unknown history kind %q", raw)
	}
}

func (k Kind) IncludesFetal() bool       { return k == KindAll || k == KindFetal }
func (k Kind) IncludesContraction() bool { return k == KindAll || k == KindContraction }

type FetalEntry struct {
	StartedAt   time.Time
	ValidCount  int
	TotalClicks int
}

type FetalSummary struct {
	Sessions      int
	ValidCount    int
	TotalClicks   int
	AvgPerSession float64
	Estimate12h   int
	Entries       []FetalEntry
}

type ContractionEntry struct {
	StartedAt       time.Time
	DurationSeconds int
	IntervalSeconds int
	ShowDash        bool
	IsLabor         bool
}

type ContractionSummary struct {
	Count       int
	AvgDuration int
	AvgInterval int
	LaborCount  int
	Entries     []ContractionEntry
}

// Day is one calendar day across both trackers. A nil summary means the kind
// was not requested.
type Day struct {
	Key         string
	Date        time.Time
	Fetal       *FetalSummary
	Contraction *ContractionSummary
}

func (d Day) Empty() bool {
	fetal := d.Fetal == nil || d.Fetal.Sessions == 0
	contraction := d.Contraction == nil || d.Contraction.Count == 0
	return fetal && contraction
}
