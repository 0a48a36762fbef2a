// Package memory keeps expense records in process memory. It satisfies the
// same contract as the SQLite repository and backs DATA_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kharcha/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.ExpenseRecord
}

func New(seed ...core.ExpenseRecord) *Store {
	return &Store{items: append([]core.ExpenseRecord(nil), seed...)}
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Create(_ context.Context, e core.ExpenseRecord) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (core.ExpenseRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true, nil
	}
	return core.ExpenseRecord{}, false, nil
}

func (s *Store) ListByDateRange(_ context.Context, dr core.DateRange) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseRecord, 0)
	for _, e := range s.items {
		if dr.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) DailyTotals(ctx context.Context, dr core.DateRange) ([]core.DayTotal, error) {
	items, _ := s.ListByDateRange(ctx, dr)
	sums := map[time.Time][]float64{}
	for _, e := range items {
		d := core.Day(e.Timestamp)
		sums[d] = append(sums[d], e.Amount)
	}
	out := make([]core.DayTotal, 0, len(sums))
	for d, vs := range sums {
		out = append(out, core.DayTotal{Day: d, Total: core.SumAmounts(vs...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *Store) CategoryTotals(ctx context.Context, dr core.DateRange) ([]core.CategoryTotal, error) {
	items, _ := s.ListByDateRange(ctx, dr)
	sums := map[core.Category][]float64{}
	for _, e := range items {
		sums[e.Category] = append(sums[e.Category], e.Amount)
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for c, vs := range sums {
		out = append(out, core.CategoryTotal{Category: c, Total: core.SumAmounts(vs...)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) UpdateAmount(_ context.Context, id string, amount float64) (core.Mutation, error) {
	return s.update(id, func(e *core.ExpenseRecord) { e.Amount = amount }), nil
}

func (s *Store) UpdateReason(_ context.Context, id string, reason string) (core.Mutation, error) {
	return s.update(id, func(e *core.ExpenseRecord) { e.Reason = reason }), nil
}

func (s *Store) UpdateCategory(_ context.Context, id string, category core.Category) (core.Mutation, error) {
	return s.update(id, func(e *core.ExpenseRecord) { e.Category = category }), nil
}

func (s *Store) DeleteByID(_ context.Context, id string) (core.Mutation, error) {
	return s.remove(func(e core.ExpenseRecord) bool { return e.TransactionID == id }), nil
}

func (s *Store) DeleteByDateRange(_ context.Context, dr core.DateRange) (core.Mutation, error) {
	return s.remove(func(e core.ExpenseRecord) bool { return dr.Contains(e.Timestamp) }), nil
}

func (s *Store) DeleteAll(_ context.Context) (core.Mutation, error) {
	return s.remove(func(core.ExpenseRecord) bool { return true }), nil
}

func (s *Store) index(id string) int {
	for i, e := range s.items {
		if e.TransactionID == id {
			return i
		}
	}
	return -1
}

func (s *Store) update(id string, apply func(*core.ExpenseRecord)) core.Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.Mutation{}
	}
	apply(&s.items[i])
	return core.Mutation{Affected: 1}
}

func (s *Store) remove(match func(core.ExpenseRecord) bool) core.Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	var n int64
	for _, e := range s.items {
		if match(e) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	s.items = kept
	return core.Mutation{Affected: n}
}
