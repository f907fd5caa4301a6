package in

import (
	"context"

	"mamatimer/internal/modules/fetal/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	RecordMovement(ctx context.Context) (dto.MovementOutput, error)
	Tick(ctx context.Context) (dto.StatusOutput, error)
	End(ctx context.Context) (dto.EndOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Day(ctx context.Context, input dto.DayInput) (dto.DayOutput, error)
	History(ctx context.Context) ([]dto.DayOutput, error)
	Close() error
}
