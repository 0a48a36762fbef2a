// Package export renders expense records as a CSV download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"kharcha/internal/core"
)

// Header is the first row of every export.
const Header = "transaction_id,Timestamp,Expense_Amount,Reason,Expense_Category"

const (
	FileName    = "expenses.csv"
	ContentType = "text/csv"
)

// WriteCSV writes the header followed by one row per record, in the order
// given.
func WriteCSV(w io.Writer, records []core.ExpenseRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a record to its CSV fields.
func MarshalRecord(rec core.ExpenseRecord) []string {
	return []string{
		rec.TransactionID,
		rec.Timestamp.Format(core.TimestampLayout),
		core.FormatAmount(rec.Amount),
		rec.Reason,
		string(rec.Category),
	}
}

// ContentDisposition is the header value that makes browsers save the body
// as FileName.
func ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", FileName)
}
