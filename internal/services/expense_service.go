package services

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/ports"
)

// EventPublisher receives a notification after each successful mutation.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.ExpenseEvent) error
	Close() error
}

// ExpenseService implements the expense store operations on top of a
// storage backend. It owns id and timestamp generation and input checks.
type ExpenseService struct {
	storage   ports.Backend
	publisher EventPublisher
	clock     core.Clock
}

func NewExpenseService(storage ports.Backend, publisher EventPublisher, clock core.Clock) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
		clock:     clock,
	}
}

// Create stores a new record stamped with a fresh id and the current
// local time.
func (s *ExpenseService) Create(ctx context.Context, amount float64, reason string, category core.Category) (core.ExpenseRecord, error) {
	cat, err := core.ParseCategory(string(category))
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	if err := core.ValidateAmount(amount); err != nil {
		return core.ExpenseRecord{}, err
	}

	rec := core.ExpenseRecord{
		TransactionID: core.NewTransactionID(),
		Timestamp:     s.clock.Now(),
		Amount:        amount,
		Reason:        reason,
		Category:      cat,
	}
	if err := s.storage.Create(ctx, rec); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogExpenseCreated(ctx, rec.TransactionID, rec.Amount, string(rec.Category))

	ev := amqp.NewExpenseEvent(amqp.EventCreated, 1)
	ev.TransactionID = rec.TransactionID
	s.publish(ctx, ev)

	return rec, nil
}

func (s *ExpenseService) FindByID(ctx context.Context, id string) (core.ExpenseRecord, bool, error) {
	id, err := core.NormalizeID(id)
	if err != nil {
		return core.ExpenseRecord{}, false, err
	}
	return s.storage.FindByID(ctx, id)
}

func (s *ExpenseService) ListByDateRange(ctx context.Context, r core.DateRange) ([]core.ExpenseRecord, error) {
	return s.storage.ListByDateRange(ctx, r)
}

func (s *ExpenseService) DailyTotals(ctx context.Context, r core.DateRange) ([]core.DayTotal, error) {
	return s.storage.DailyTotals(ctx, r)
}

func (s *ExpenseService) CategoryTotals(ctx context.Context, r core.DateRange) ([]core.CategoryTotal, error) {
	return s.storage.CategoryTotals(ctx, r)
}

// UpdateField overwrites one field of the record. value is coerced to the
// field's type; categories must belong to the fixed set.
func (s *ExpenseService) UpdateField(ctx context.Context, id string, field core.Field, value string) (core.Mutation, error) {
	id, err := core.NormalizeID(id)
	if err != nil {
		return core.Mutation{}, err
	}

	var m core.Mutation
	switch field {
	case core.FieldAmount:
		amount, perr := core.ParseAmount(value)
		if perr != nil {
			return core.Mutation{}, perr
		}
		m, err = s.storage.UpdateAmount(ctx, id, amount)
	case core.FieldReason:
		m, err = s.storage.UpdateReason(ctx, id, value)
	case core.FieldCategory:
		cat, perr := core.ParseCategory(value)
		if perr != nil {
			return core.Mutation{}, perr
		}
		m, err = s.storage.UpdateCategory(ctx, id, cat)
	default:
		return core.Mutation{}, core.ErrInvalidField
	}
	if err != nil {
		return core.Mutation{}, fmt.Errorf("update %s: %w", field, err)
	}
	logMutation(ctx, applog.OpUpdate, m, applog.NewFields().WithTransactionID(id).WithField(string(field)))

	if !m.NoMatch() {
		ev := amqp.NewExpenseEvent(amqp.EventUpdated, m.Affected)
		ev.TransactionID = id
		ev.Field = string(field)
		s.publish(ctx, ev)
	}
	return m, nil
}

func (s *ExpenseService) DeleteByID(ctx context.Context, id string) (core.Mutation, error) {
	id, err := core.NormalizeID(id)
	if err != nil {
		return core.Mutation{}, err
	}
	m, err := s.storage.DeleteByID(ctx, id)
	if err != nil {
		return core.Mutation{}, fmt.Errorf("delete expense: %w", err)
	}
	logMutation(ctx, applog.OpDelete, m, applog.NewFields().WithTransactionID(id))
	if !m.NoMatch() {
		ev := amqp.NewExpenseEvent(amqp.EventDeleted, m.Affected)
		ev.TransactionID = id
		s.publish(ctx, ev)
	}
	return m, nil
}

func (s *ExpenseService) DeleteByDateRange(ctx context.Context, r core.DateRange) (core.Mutation, error) {
	m, err := s.storage.DeleteByDateRange(ctx, r)
	if err != nil {
		return core.Mutation{}, fmt.Errorf("delete expenses by range: %w", err)
	}
	logMutation(ctx, applog.OpDeleteRange, m, applog.NewFields().WithRange(r.StartString(), r.EndString()))
	if !m.NoMatch() {
		ev := amqp.NewExpenseEvent(amqp.EventRangeDeleted, m.Affected)
		ev.StartDay, ev.EndDay = r.StartString(), r.EndString()
		s.publish(ctx, ev)
	}
	return m, nil
}

func (s *ExpenseService) DeleteAll(ctx context.Context) (core.Mutation, error) {
	m, err := s.storage.DeleteAll(ctx)
	if err != nil {
		return core.Mutation{}, fmt.Errorf("delete all expenses: %w", err)
	}
	logMutation(ctx, applog.OpDeleteAll, m, applog.NewFields())
	if !m.NoMatch() {
		s.publish(ctx, amqp.NewExpenseEvent(amqp.EventAllDeleted, m.Affected))
	}
	return m, nil
}

func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func logMutation(ctx context.Context, op string, m core.Mutation, fields applog.LogFields) {
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogMutation(ctx, op, m.Affected, fields)
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	// The mutation is already committed; a lost event is only logged.
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"type", ev.Type, "transaction_id", ev.TransactionID, "error", err)
	}
}

// Close closes both storage and the event publisher
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
