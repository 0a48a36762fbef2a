package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds every statement the repository runs. All user values are
// bound through placeholders.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Expense mirrors one row of the expenses table.
type Expense struct {
	TransactionID string
	Timestamp     string
	ExpenseAmt    float64
	Reason        string
	ExpenseCat    string
}

type DayTotalRow struct {
	Day   string
	Total float64
}

type CategoryTotalRow struct {
	ExpenseCat string
	Total      float64
}

type DateRangeParams struct {
	StartDay string
	EndDay   string
}

const createExpense = `
INSERT INTO expenses (transaction_id, timestamp, expense_amt, reason, expense_cat)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateExpense(ctx context.Context, arg Expense) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		arg.TransactionID,
		arg.Timestamp,
		arg.ExpenseAmt,
		arg.Reason,
		arg.ExpenseCat,
	)
	return err
}

const getExpense = `
SELECT transaction_id, timestamp, expense_amt, reason, expense_cat
FROM expenses
WHERE transaction_id = ?
`

func (q *Queries) GetExpense(ctx context.Context, transactionID string) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, transactionID)
	var i Expense
	err := row.Scan(&i.TransactionID, &i.Timestamp, &i.ExpenseAmt, &i.Reason, &i.ExpenseCat)
	return i, err
}

const listExpensesByDateRange = `
SELECT transaction_id, timestamp, expense_amt, reason, expense_cat
FROM expenses
WHERE date(timestamp) BETWEEN ? AND ?
ORDER BY rowid
`

func (q *Queries) ListExpensesByDateRange(ctx context.Context, arg DateRangeParams) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByDateRange, arg.StartDay, arg.EndDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.TransactionID, &i.Timestamp, &i.ExpenseAmt, &i.Reason, &i.ExpenseCat); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDailyTotals = `
SELECT date(timestamp) AS day, SUM(expense_amt) AS total
FROM expenses
WHERE date(timestamp) BETWEEN ? AND ?
GROUP BY day
ORDER BY day
`

func (q *Queries) GetDailyTotals(ctx context.Context, arg DateRangeParams) ([]DayTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, getDailyTotals, arg.StartDay, arg.EndDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DayTotalRow
	for rows.Next() {
		var i DayTotalRow
		if err := rows.Scan(&i.Day, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategoryTotals = `
SELECT expense_cat, SUM(expense_amt) AS total
FROM expenses
WHERE date(timestamp) BETWEEN ? AND ?
GROUP BY expense_cat
ORDER BY total DESC, expense_cat
`

func (q *Queries) GetCategoryTotals(ctx context.Context, arg DateRangeParams) ([]CategoryTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, getCategoryTotals, arg.StartDay, arg.EndDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryTotalRow
	for rows.Next() {
		var i CategoryTotalRow
		if err := rows.Scan(&i.ExpenseCat, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateExpenseAmount = `
UPDATE expenses SET expense_amt = ? WHERE transaction_id = ?
`

func (q *Queries) UpdateExpenseAmount(ctx context.Context, amount float64, transactionID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpenseAmount, amount, transactionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateExpenseReason = `
UPDATE expenses SET reason = ? WHERE transaction_id = ?
`

func (q *Queries) UpdateExpenseReason(ctx context.Context, reason string, transactionID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpenseReason, reason, transactionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateExpenseCategory = `
UPDATE expenses SET expense_cat = ? WHERE transaction_id = ?
`

func (q *Queries) UpdateExpenseCategory(ctx context.Context, category string, transactionID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpenseCategory, category, transactionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `
DELETE FROM expenses WHERE transaction_id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, transactionID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, transactionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpensesByDateRange = `
DELETE FROM expenses WHERE date(timestamp) BETWEEN ? AND ?
`

func (q *Queries) DeleteExpensesByDateRange(ctx context.Context, arg DateRangeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpensesByDateRange, arg.StartDay, arg.EndDay)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllExpenses = `
DELETE FROM expenses
`

func (q *Queries) DeleteAllExpenses(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllExpenses)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
