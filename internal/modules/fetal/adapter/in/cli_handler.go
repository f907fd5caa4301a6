package in

import (
	"context"
	"time"

	"mamatimer/internal/modules/fetal/dto"
	fetalin "mamatimer/internal/modules/fetal/port/in"
)

type CLIHandler struct {
	usecase fetalin.Usecase
}

func NewCLIHandler(usecase fetalin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) (dto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Tap(ctx context.Context) (dto.MovementOutput, error) {
	return h.usecase.RecordMovement(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) End(ctx context.Context) (dto.EndOutput, error) {
	return h.usecase.End(ctx)
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
