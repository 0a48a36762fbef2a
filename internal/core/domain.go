package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Food      Category = "Food"
	Groceries Category = "Groceries"
	Travel    Category = "Travel"
	Utilities Category = "Utilities"
	Leisure   Category = "Leisure"
	Others    Category = "Others"
)

const (
	FieldAmount   Field = "amount"
	FieldReason   Field = "reason"
	FieldCategory Field = "category"
)

type (
	Category string

	// Field names one user-editable column of an expense record.
	Field string

	ExpenseRecord struct {
		TransactionID string
		Timestamp     time.Time // zone-local civil time, location is UTC
		Amount        float64
		Reason        string
		Category      Category
	}

	// Mutation reports how many rows an update or delete touched.
	Mutation struct {
		Affected int64
	}
)

// Categories lists the fixed category set in display order.
var Categories = []Category{Food, Groceries, Travel, Utilities, Leisure, Others}

// Fields lists the editable fields in display order.
var Fields = []Field{FieldAmount, FieldReason, FieldCategory}

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidField    = errors.New("invalid field")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidID       = errors.New("invalid transaction id")

	// ErrStorage marks faults of the underlying database, as opposed to
	// validation failures or statements that matched no rows.
	ErrStorage = errors.New("storage error")
)

// ParseCategory matches s case-insensitively against the fixed category set.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Category) Validate() error {
	_, err := ParseCategory(string(c))
	return err
}

// ParseField accepts the column names as well as the form labels
// "Expense Amount", "Reason" and "Expense Category".
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "amount", "expense_amt", "expense amount":
		return FieldAmount, nil
	case "reason":
		return FieldReason, nil
	case "category", "expense_cat", "expense category":
		return FieldCategory, nil
	}
	return "", ErrInvalidField
}

// Label returns the form label for the field.
func (f Field) Label() string {
	switch f {
	case FieldAmount:
		return "Expense Amount"
	case FieldReason:
		return "Reason"
	case FieldCategory:
		return "Expense Category"
	}
	return string(f)
}

// NewTransactionID returns a random UUID string.
func NewTransactionID() string {
	return uuid.NewString()
}

// NormalizeID trims id and rejects the empty string. Well-formed ids
// that match no record are not an error.
func NormalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidID
	}
	return id, nil
}

// NoMatch reports whether the statement matched no rows.
func (m Mutation) NoMatch() bool {
	return m.Affected == 0
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.TransactionID) == "" {
		return ErrInvalidID
	}
	if e.Timestamp.IsZero() {
		return errors.New("timestamp cannot be zero")
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	return e.Category.Validate()
}
