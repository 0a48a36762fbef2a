package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the database handle for the lifetime of the process.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer: the file is not shared between processes or goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

// Create inserts a fully populated record.
func (r *SQLiteRepository) Create(ctx context.Context, e core.ExpenseRecord) error {
	err := r.queries.CreateExpense(ctx, Expense{
		TransactionID: e.TransactionID,
		Timestamp:     e.Timestamp.Format(core.TimestampLayout),
		ExpenseAmt:    e.Amount,
		Reason:        e.Reason,
		ExpenseCat:    string(e.Category),
	})
	if err != nil {
		return storageErr("create expense", err)
	}

	return nil
}

// FindByID returns the record and true, or false when no record matches.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (core.ExpenseRecord, bool, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, false, nil
	}
	if err != nil {
		return core.ExpenseRecord{}, false, storageErr("get expense by id", err)
	}
	rec, err := toRecord(row)
	if err != nil {
		return core.ExpenseRecord{}, false, err
	}
	return rec, true, nil
}

// ListByDateRange returns matching records in insertion order.
func (r *SQLiteRepository) ListByDateRange(ctx context.Context, dr core.DateRange) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpensesByDateRange(ctx, rangeParams(dr))
	if err != nil {
		return nil, storageErr("list expenses by date range", err)
	}

	records := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DailyTotals sums amounts per calendar day, ascending.
func (r *SQLiteRepository) DailyTotals(ctx context.Context, dr core.DateRange) ([]core.DayTotal, error) {
	rows, err := r.queries.GetDailyTotals(ctx, rangeParams(dr))
	if err != nil {
		return nil, storageErr("get daily totals", err)
	}

	totals := make([]core.DayTotal, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(core.DateLayout, row.Day)
		if err != nil {
			return nil, storageErr("parse day", err)
		}
		totals = append(totals, core.DayTotal{Day: day, Total: row.Total})
	}
	return totals, nil
}

// CategoryTotals sums amounts per category, largest first.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, dr core.DateRange) ([]core.CategoryTotal, error) {
	rows, err := r.queries.GetCategoryTotals(ctx, rangeParams(dr))
	if err != nil {
		return nil, storageErr("get category totals", err)
	}

	totals := make([]core.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, core.CategoryTotal{Category: core.Category(row.ExpenseCat), Total: row.Total})
	}
	return totals, nil
}

func (r *SQLiteRepository) UpdateAmount(ctx context.Context, id string, amount float64) (core.Mutation, error) {
	n, err := r.queries.UpdateExpenseAmount(ctx, amount, id)
	if err != nil {
		return core.Mutation{}, storageErr("update expense amount", err)
	}
	return core.Mutation{Affected: n}, nil
}

func (r *SQLiteRepository) UpdateReason(ctx context.Context, id string, reason string) (core.Mutation, error) {
	n, err := r.queries.UpdateExpenseReason(ctx, reason, id)
	if err != nil {
		return core.Mutation{}, storageErr("update expense reason", err)
	}
	return core.Mutation{Affected: n}, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id string, category core.Category) (core.Mutation, error) {
	n, err := r.queries.UpdateExpenseCategory(ctx, string(category), id)
	if err != nil {
		return core.Mutation{}, storageErr("update expense category", err)
	}
	return core.Mutation{Affected: n}, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) (core.Mutation, error) {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return core.Mutation{}, storageErr("delete expense", err)
	}
	return core.Mutation{Affected: n}, nil
}

func (r *SQLiteRepository) DeleteByDateRange(ctx context.Context, dr core.DateRange) (core.Mutation, error) {
	n, err := r.queries.DeleteExpensesByDateRange(ctx, rangeParams(dr))
	if err != nil {
		return core.Mutation{}, storageErr("delete expenses by date range", err)
	}
	return core.Mutation{Affected: n}, nil
}

// DeleteAll empties the table.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) (core.Mutation, error) {
	n, err := r.queries.DeleteAllExpenses(ctx)
	if err != nil {
		return core.Mutation{}, storageErr("delete all expenses", err)
	}
	return core.Mutation{Affected: n}, nil
}

func rangeParams(dr core.DateRange) DateRangeParams {
	return DateRangeParams{StartDay: dr.StartString(), EndDay: dr.EndString()}
}

func toRecord(e Expense) (core.ExpenseRecord, error) {
	ts, err := time.Parse(core.TimestampLayout, e.Timestamp)
	if err != nil {
		return core.ExpenseRecord{}, storageErr("parse timestamp", err)
	}
	return core.ExpenseRecord{
		TransactionID: e.TransactionID,
		Timestamp:     ts,
		Amount:        e.ExpenseAmt,
		Reason:        e.Reason,
		Category:      core.Category(e.ExpenseCat),
	}, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrStorage, op, err)
}
