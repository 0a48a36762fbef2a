package http

import (
	"context"
	"errors"
	"strings"

	"kharcha/internal/core"
	applog "kharcha/internal/log"
)

// Shown for storage faults; details go to the log only.
const genericFailure = "Something went wrong, please try again"

const noDataFound = "No data found"

// failureResponse maps an error from the expense store to a status code
// and a user-facing message. Validation problems are 422; everything else
// is logged and reported as a generic 500.
func failureResponse(ctx context.Context, op string, err error) *HTMXResponseBuilder {
	switch {
	case errors.Is(err, core.ErrInvalidCategory):
		return UnprocessableEntityError("Unknown category, choose one of " + categoryList())
	case errors.Is(err, core.ErrInvalidAmount):
		return UnprocessableEntityError("Amount must be a number")
	case errors.Is(err, core.ErrInvalidField):
		return UnprocessableEntityError("Field must be Expense Amount, Reason or Expense Category")
	case errors.Is(err, core.ErrInvalidDate):
		return UnprocessableEntityError("Dates must be given as YYYY-MM-DD")
	case errors.Is(err, core.ErrInvalidID):
		return UnprocessableEntityError("Transaction id is required")
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogError(ctx, "Expense store operation failed", err, applog.ComponentHTTP, op, applog.NewFields())
	return InternalServerError(genericFailure)
}

func categoryList() string {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
