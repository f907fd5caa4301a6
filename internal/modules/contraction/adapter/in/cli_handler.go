package in

import (
	"context"
	"time"

	"mamatimer/internal/modules/contraction/dto"
	contractionin "mamatimer/internal/modules/contraction/port/in"
)

type CLIHandler struct {
	usecase contractionin.Usecase
}

func NewCLIHandler(usecase contractionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) (dto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (dto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Day(ctx context.Context, day time.Time) (dto.DayOutput, error) {
	return h.usecase.Day(ctx, dto.DayInput{Day: day})
}

func (h CLIHandler) History(ctx context.Context) ([]dto.DayOutput, error) {
	return h.usecase.History(ctx)
}

func (h CLIHandler) Close() error {
	return h.usecase.Close()
}
