package out

import (
	"context"

	"mamatimer/internal/modules/contraction/domain"
)

type RecordStore interface {
	LoadAll(ctx context.Context) ([]domain.Record, error)
	SaveAll(ctx context.Context, records []domain.Record) error
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.Session) error
	LoadActive(ctx context.Context) (domain.Session, error)
	ClearActive(ctx context.Context) error
}
