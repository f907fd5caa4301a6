package in

import (
	"context"
	"time"

	"mamatimer/internal/modules/history/dto"
	historyin "mamatimer/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, kind string) ([]dto.DayOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{Kind: kind})
}

func (h CLIHandler) Export(ctx context.Context, day time.Time, kind string) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx, dto.ExportInput{Day: day, Kind: kind})
}
