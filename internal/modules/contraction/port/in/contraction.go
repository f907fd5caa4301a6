package in

import (
	"context"

	"mamatimer/internal/modules/contraction/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	Stop(ctx context.Context) (dto.StopOutput, error)
	Tick(ctx context.Context) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Day(ctx context.Context, input dto.DayInput) (dto.DayOutput, error)
	History(ctx context.Context) ([]dto.DayOutput, error)
	Close() error
}
