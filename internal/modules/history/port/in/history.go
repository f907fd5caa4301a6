package in

import (
	"context"

	"mamatimer/internal/modules/history/dto"
)

type Usecase interface {
	List(ctx context.Context, input dto.ListInput) ([]dto.DayOutput, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
