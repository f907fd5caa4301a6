package out

import (
	"context"
	"fmt"

	"mamatimer/internal/modules/fetal/domain"
	fetalout "mamatimer/internal/modules/fetal/port/out"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/kv"
)

type KVActiveSessionStore struct {
	kv kv.Store
}

func NewKVActiveSessionStore(store kv.Store) fetalout.ActiveSessionStore {
	return &KVActiveSessionStore{kv: store}
}

func (s *KVActiveSessionStore) SaveActive(ctx context.Context, session domain.Session) error {
	if err := kv.SetJSON(ctx, s.kv, domain.ActiveKey, session); err != nil {
		return fmt.Errorf("%w: write active session: %w", apperrors.ErrStorageWrite, err)
	}
	return nil
}

func (s *KVActiveSessionStore) LoadActive(ctx context.Context) (domain.Session, error) {
	active := domain.Session{}
	found, err := kv.GetJSON(ctx, s.kv, domain.ActiveKey, &active)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: read active session: %w", apperrors.ErrStorageRead, err)
	}
	if !found || active.SessionID == "" {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	return active, nil
}

func (s *KVActiveSessionStore) ClearActive(ctx context.Context) error {
	if err := s.kv.Delete(ctx, domain.ActiveKey); err != nil {
		return fmt.Errorf("%w: clear active session: %w", apperrors.ErrStorageWrite, err)
	}
	return nil
}
