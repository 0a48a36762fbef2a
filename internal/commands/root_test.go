package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/export"
)

type cliEnv struct {
	db    string
	clock *movableClock
}

type movableClock struct{ t time.Time }

func (c *movableClock) Now() time.Time { return c.t }

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{
		db:    filepath.Join(t.TempDir(), "expense.db"),
		clock: &movableClock{t: time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)},
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCommand(e.clock)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", e.db}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

var loggedID = regexp.MustCompile(`Logged (\S+):`)

func (e *cliEnv) log(t *testing.T, amount, category, reason string) string {
	t.Helper()
	out, _, err := e.run(t, "log", amount, "--category", category, "--reason", reason)
	require.NoError(t, err)
	m := loggedID.FindStringSubmatch(out)
	require.Len(t, m, 2, "unexpected output %q", out)
	return m[1]
}

func TestLogAndShow(t *testing.T) {
	env := newCLIEnv(t)
	id := env.log(t, "1,250.5", "food", "chai")

	out, _, err := env.run(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Expense Amount:   1250.50")
	assert.Contains(t, out, "Expense Category: Food")
	assert.Contains(t, out, "Timestamp:        2025-03-10 18:30:00")

	out, stderr, err := env.run(t, "show", "missing")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "No record found with transaction id missing")
}

func TestLogRejectsBadInput(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "log", "abc", "--category", "Food")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, _, err = env.run(t, "log", "10", "--category", "Rent")
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestListAndTotals(t *testing.T) {
	env := newCLIEnv(t)

	env.clock.t = time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
	env.log(t, "10", "Food", "breakfast")
	env.log(t, "30", "Travel", "cab")
	env.clock.t = time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)
	env.log(t, "5", "Food", "tea")
	env.clock.t = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	out, _, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "breakfast")
	assert.Contains(t, out, "3 records, total ₹45.00")

	out, _, err = env.run(t, "totals", "daily")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"2025-03-08", "40.00"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2025-03-09", "5.00"}, strings.Fields(lines[1]))

	out, _, err = env.run(t, "totals", "category")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"Travel", "30.00"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Food", "15.00"}, strings.Fields(lines[1]))

	_, stderr, err := env.run(t, "list", "--start", "2024-01-01", "--end", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No data found")

	_, _, err = env.run(t, "list", "--start", "01/01/2024")
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestExport(t *testing.T) {
	env := newCLIEnv(t)
	id := env.log(t, "99.9", "Utilities", "electricity")

	out, _, err := env.run(t, "export", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, export.Header+"\n"+id+",2025-03-10 18:30:00,99.90,electricity,Utilities\n", out)

	dest := filepath.Join(t.TempDir(), "out.csv")
	_, _, err = env.run(t, "export", "--output", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestUpdateAndDelete(t *testing.T) {
	env := newCLIEnv(t)
	id := env.log(t, "20", "Leisure", "movie")
	other := env.log(t, "7", "Food", "snack")

	out, _, err := env.run(t, "update", id, "Expense Amount", "25.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense Amount updated")

	out, _, err = env.run(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "25.50")
	assert.Contains(t, out, "Reason:           movie")

	_, _, err = env.run(t, "update", id, "timestamp", "x")
	assert.ErrorIs(t, err, core.ErrInvalidField)

	_, stderr, err := env.run(t, "update", "missing", "reason", "x")
	require.NoError(t, err)
	assert.Contains(t, stderr, "nothing was updated")

	out, _, err = env.run(t, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted record "+id)

	_, stderr, err = env.run(t, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, stderr, "nothing was deleted")

	out, _, err = env.run(t, "show", other)
	require.NoError(t, err)
	assert.Contains(t, out, "snack")
}

func TestDeleteRangeAndAll(t *testing.T) {
	env := newCLIEnv(t)
	env.clock.t = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	env.log(t, "1", "Others", "old")
	env.clock.t = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	env.log(t, "2", "Others", "new")

	_, _, err := env.run(t, "delete-range", "--start", "2025-03-01")
	assert.Error(t, err, "--end is required")

	out, _, err := env.run(t, "delete-range", "--start", "2025-03-01", "--end", "2025-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 records")

	_, _, err = env.run(t, "delete-all")
	assert.ErrorIs(t, err, errNotConfirmed)

	out, _, err = env.run(t, "delete-all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted all 1 records")

	_, stderr, err := env.run(t, "list", "--start", "2025-01-01")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No data found")
}
