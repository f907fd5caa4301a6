package out

import (
	"context"
	"time"

	"mamatimer/internal/modules/history/domain"
)

type NoteStore interface {
	// WriteDay creates or refreshes the note for day and reports its path.
	WriteDay(ctx context.Context, day domain.Day, exportedAt time.Time) (path string, created bool, err error)
}
