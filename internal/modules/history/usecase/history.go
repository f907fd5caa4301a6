package usecase

import (
	"context"
	"fmt"

	"mamatimer/internal/modules/history/domain"
	"mamatimer/internal/modules/history/dto"
	historyin "mamatimer/internal/modules/history/port/in"
	historyout "mamatimer/internal/modules/history/port/out"
	"mamatimer/internal/modules/history/service"
	apperrors "mamatimer/internal/platform/errors"
)

type Interactor struct {
	svc   *service.HistoryService
	notes historyout.NoteStore
}

func NewInteractor(svc *service.HistoryService, notes historyout.NoteStore) historyin.Usecase {
	return &Interactor{svc: svc, notes: notes}
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) ([]dto.DayOutput, error) {
	kind, err := domain.ParseKind(input.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	days, err := i.svc.Days(ctx, kind)
	if err != nil {
		return nil, err
	}
	for n := range days {
		days[n].Markdown = service.ToDomain(days[n]).Body(i.svc.Location())
	}
	return days, nil
}

func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	kind, err := domain.ParseKind(input.Kind)
	if err != nil {
		return dto.ExportOutput{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	if i.notes == nil {
		return dto.ExportOutput{}, fmt.Errorf("note store is not configured")
	}
	report, err := i.svc.Day(ctx, input.Day, kind)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	day := service.ToDomain(report)
	path, created, err := i.notes.WriteDay(ctx, day, i.svc.Now())
	if err != nil {
		i.svc.Logger().Error("export day note", "date", day.Key, "error", err)
		return dto.ExportOutput{}, err
	}
	i.svc.Logger().Info("day note exported", "date", day.Key, "path", path, "created", created)
	return dto.ExportOutput{Key: day.Key, Path: path, Created: created}, nil
}
