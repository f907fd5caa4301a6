package dto

import (
	"time"

	contractiondto "mamatimer/internal/modules/contraction/dto"
	fetaldto "mamatimer/internal/modules/fetal/dto"
)

type ListInput struct {
	Kind string
}

type DayOutput struct {
	Key         string
	Date        time.Time
	Fetal       *fetaldto.DayOutput
	Contraction *contractiondto.DayOutput
	// Markdown is the day's note body as it would be exported.
	Markdown string
}

type ExportInput struct {
	// Day selects the calendar day; zero means today.
	Day  time.Time
	Kind string
}

type ExportOutput struct {
	Key     string
	Path    string
	Created bool
}
