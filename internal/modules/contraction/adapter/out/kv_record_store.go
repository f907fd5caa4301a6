package out

import (
	"context"
	"fmt"

	"mamatimer/internal/modules/contraction/domain"
	contractionout "mamatimer/internal/modules/contraction/port/out"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/kv"
)

// KVRecordStore keeps the whole record list as one JSON array under
// domain.RecordsKey.
type KVRecordStore struct {
	kv kv.Store
}

func NewKVRecordStore(store kv.Store) contractionout.RecordStore {
	return &KVRecordStore{kv: store}
}

func (s *KVRecordStore) LoadAll(ctx context.Context) ([]domain.Record, error) {
	records := []domain.Record{}
	if _, err := kv.GetJSON(ctx, s.kv, domain.RecordsKey, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorageRead, err)
	}
	return records, nil
}

func (s *KVRecordStore) SaveAll(ctx context.Context, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	if err := kv.SetJSON(ctx, s.kv, domain.RecordsKey, records); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorageWrite, err)
	}
	return nil
}
