package usecase_test

import (
	"fmt"
	"sync"
	"time"

	fetalout "mamatimer/internal/modules/fetal/adapter/out"
	"mamatimer/internal/modules/fetal/dto"
	fetalin "mamatimer/internal/modules/fetal/port/in"
	"mamatimer/internal/modules/fetal/service"
	"mamatimer/internal/modules/fetal/usecase"
	"mamatimer/internal/platform/clock"
	"mamatimer/internal/platform/id"
	"mamatimer/internal/platform/kv"
)

func dtoDay(day time.Time) dto.DayInput {
	return dto.DayInput{Day: day}
}

// seqID hands out distinct ids across every interactor that shares it.
type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// newProcess builds an interactor the way a separate CLI or TUI process would:
// its own service and cache, sharing only the store.
func newProcess(store kv.Store, clk clock.Clock, ids id.Generator) fetalin.Usecase {
	svc := service.NewFetalService(clk, ids, fetalout.NewKVRecordStore(store), service.Options{Location: time.UTC})
	return usecase.NewInteractor(svc, fetalout.NewKVActiveSessionStore(store), nil, nil)
}
