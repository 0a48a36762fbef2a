package ports

import (
	"context"

	"kharcha/internal/core"
)

type (
	// Backend is what a storage implementation offers the expense service.
	Backend interface {
		Create(ctx context.Context, e core.ExpenseRecord) error
		FindByID(ctx context.Context, id string) (core.ExpenseRecord, bool, error)
		ListByDateRange(ctx context.Context, r core.DateRange) ([]core.ExpenseRecord, error)
		DailyTotals(ctx context.Context, r core.DateRange) ([]core.DayTotal, error)
		CategoryTotals(ctx context.Context, r core.DateRange) ([]core.CategoryTotal, error)
		UpdateAmount(ctx context.Context, id string, amount float64) (core.Mutation, error)
		UpdateReason(ctx context.Context, id string, reason string) (core.Mutation, error)
		UpdateCategory(ctx context.Context, id string, category core.Category) (core.Mutation, error)
		DeleteByID(ctx context.Context, id string) (core.Mutation, error)
		DeleteByDateRange(ctx context.Context, r core.DateRange) (core.Mutation, error)
		DeleteAll(ctx context.Context) (core.Mutation, error)
		Ping(ctx context.Context) error
		Close() error
	}
)

// Ports for the UI surfaces. Each mode of the UI uses one of these.
type (
	RecordWriter interface {
		Create(ctx context.Context, amount float64, reason string, category core.Category) (core.ExpenseRecord, error)
	}

	// RecordReader backs the View/Export and Update lookup modes.
	RecordReader interface {
		ListByDateRange(ctx context.Context, r core.DateRange) ([]core.ExpenseRecord, error)
		FindByID(ctx context.Context, id string) (core.ExpenseRecord, bool, error)
	}

	// Aggregator backs the Visualize mode.
	Aggregator interface {
		DailyTotals(ctx context.Context, r core.DateRange) ([]core.DayTotal, error)
		CategoryTotals(ctx context.Context, r core.DateRange) ([]core.CategoryTotal, error)
	}

	RecordUpdater interface {
		UpdateField(ctx context.Context, id string, field core.Field, value string) (core.Mutation, error)
	}

	RecordDeleter interface {
		DeleteByID(ctx context.Context, id string) (core.Mutation, error)
		DeleteByDateRange(ctx context.Context, r core.DateRange) (core.Mutation, error)
		DeleteAll(ctx context.Context) (core.Mutation, error)
	}

	HealthChecker interface {
		Ping(ctx context.Context) error
	}

	// ExpenseStore is the full operation set behind the UI.
	ExpenseStore interface {
		RecordWriter
		RecordReader
		Aggregator
		RecordUpdater
		RecordDeleter
		HealthChecker
	}
)
