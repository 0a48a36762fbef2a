package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/chart"
	"kharcha/internal/core"
	"kharcha/internal/export"
	applog "kharcha/internal/log"
)

// Chart box in SVG units.
const (
	chartWidth  = 640
	chartHeight = 240
)

var templateFuncs = template.FuncMap{
	"rupees": core.FormatRupees,
	"amount": core.FormatAmount,
	"timestamp": func(r core.ExpenseRecord) string {
		return r.Timestamp.Format(core.TimestampLayout)
	},
}

type modeTab struct {
	Key, Label string
	Active     bool
}

// The five mutually exclusive UI modes, in tab order.
var modes = []modeTab{
	{Key: "log", Label: "Log Expense"},
	{Key: "view", Label: "View/Export Data"},
	{Key: "visualize", Label: "Visualize Data"},
	{Key: "update", Label: "Update Data"},
	{Key: "delete", Label: "Delete Data"},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}

	mode := r.URL.Query().Get("mode")
	tabs := make([]modeTab, len(modes))
	copy(tabs, modes)
	found := false
	for i := range tabs {
		if tabs[i].Key == mode {
			tabs[i].Active = true
			found = true
		}
	}
	if !found {
		mode = tabs[0].Key
		tabs[0].Active = true
	}

	dr := core.DefaultRange(s.clock.Now())
	data := struct {
		Mode       string
		Tabs       []modeTab
		Start, End string
		Categories []core.Category
		Fields     []core.Field
	}{
		Mode:       mode,
		Tabs:       tabs,
		Start:      dr.StartString(),
		End:        dr.EndString(),
		Categories: core.Categories,
		Fields:     core.Fields,
	}
	s.view(r, "index.html", data).Write(w)
}

// handleCreateExpense backs the Log Expense mode.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	amount, err := core.ParseAmount(body.Get("amount"))
	if err != nil {
		failureResponse(ctx, applog.OpCreate, err).Write(w)
		return
	}
	rec, err := s.store.Create(ctx, amount, body.Get("reason"), core.Category(body.Get("category")))
	if err != nil {
		failureResponse(ctx, applog.OpCreate, err).Write(w)
		return
	}

	SuccessResponse(fmt.Sprintf("Expense logged: %s for %s (id %s)",
		core.FormatRupees(rec.Amount), rec.Category, rec.TransactionID)).
		TriggerExpenseChanged(ChangeCreated, 1).
		TriggerFormReset().
		TriggerSuccessNotification("Expense logged").
		Write(w)
}

// handleRecords renders the View mode table with a download link.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	dr, err := ParseRangeParams(r.URL.Query(), s.clock.Now())
	if err != nil {
		failureResponse(ctx, applog.OpList, err).Write(w)
		return
	}
	records, err := s.store.ListByDateRange(ctx, dr)
	if err != nil {
		failureResponse(ctx, applog.OpList, err).Write(w)
		return
	}
	if len(records) == 0 {
		WarningResponse(noDataFound).Write(w)
		return
	}

	amounts := make([]float64, len(records))
	for i, rec := range records {
		amounts[i] = rec.Amount
	}
	data := struct {
		Records    []core.ExpenseRecord
		Start, End string
		Total      float64
	}{
		Records: records,
		Start:   dr.StartString(),
		End:     dr.EndString(),
		Total:   core.SumAmounts(amounts...),
	}
	s.view(r, "records.html", data).Write(w)
}

// handleExport serves the selected range as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	dr, err := ParseRangeParams(r.URL.Query(), s.clock.Now())
	if err != nil {
		failureResponse(ctx, applog.OpExport, err).Write(w)
		return
	}
	records, err := s.store.ListByDateRange(ctx, dr)
	if err != nil {
		failureResponse(ctx, applog.OpExport, err).Write(w)
		return
	}
	if len(records) == 0 {
		WarningResponse(noDataFound).Status(http.StatusNotFound).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		failureResponse(ctx, applog.OpExport, err).Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", export.ContentType).
		Header("Content-Disposition", export.ContentDisposition()).
		Header("Content-Length", strconv.Itoa(buf.Len())).
		Body(buf.Bytes()).
		Write(w)
}

// handleCharts loads both aggregates concurrently for the Visualize mode.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	dr, err := ParseRangeParams(r.URL.Query(), s.clock.Now())
	if err != nil {
		failureResponse(ctx, applog.OpDailyTotals, err).Write(w)
		return
	}

	var (
		days []core.DayTotal
		cats []core.CategoryTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		days, err = s.store.DailyTotals(gctx, dr)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.store.CategoryTotals(gctx, dr)
		return err
	})
	if err := g.Wait(); err != nil {
		failureResponse(ctx, applog.OpCatTotals, err).Write(w)
		return
	}
	if len(days) == 0 {
		WarningResponse(noDataFound).Write(w)
		return
	}

	totals := make([]float64, len(days))
	for i, d := range days {
		totals[i] = d.Total
	}
	data := struct {
		Line       chart.LineChart
		Bars       []chart.Bar
		Start, End string
		Total      float64
	}{
		Line:  chart.Line(days, chartWidth, chartHeight),
		Bars:  chart.Bars(cats),
		Start: dr.StartString(),
		End:   dr.EndString(),
		Total: core.SumAmounts(totals...),
	}
	s.view(r, "charts.html", data).Write(w)
}

// handleRecord shows the current state of one record and the update form.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if fail := RequireGET(r); fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()
	id := sanitizeInput(r.URL.Query().Get("id"))

	rec, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		failureResponse(ctx, applog.OpFind, err).Write(w)
		return
	}
	if !ok {
		WarningResponse("No record found with transaction id " + id).Write(w)
		return
	}

	data := struct {
		Record     core.ExpenseRecord
		Fields     []core.Field
		Categories []core.Category
	}{
		Record:     rec,
		Fields:     core.Fields,
		Categories: core.Categories,
	}
	s.view(r, "record.html", data).Write(w)
}

// handleUpdate overwrites one field of one record.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	field, err := core.ParseField(body.Get("field"))
	if err != nil {
		failureResponse(ctx, applog.OpUpdate, err).Write(w)
		return
	}
	id := body.Get("id")
	m, err := s.store.UpdateField(ctx, id, field, body.Get("value"))
	if err != nil {
		failureResponse(ctx, applog.OpUpdate, err).Write(w)
		return
	}
	if m.NoMatch() {
		WarningResponse("No record matched transaction id " + id + ", nothing was updated").
			TriggerWarningNotification("Nothing updated").
			Write(w)
		return
	}

	SuccessResponse(field.Label() + " updated for " + id).
		TriggerExpenseChanged(ChangeUpdated, m.Affected).
		TriggerSuccessNotification("Record updated").
		Write(w)
}

// handleDelete removes one record. DELETE requests may pass the id in the
// query string.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if fail := RequireDeleteOrPOST(r); fail != nil {
		fail.Write(w)
		return
	}
	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	id := body.Get("id")
	if id == "" {
		id = sanitizeInput(r.URL.Query().Get("id"))
	}
	m, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		failureResponse(ctx, applog.OpDelete, err).Write(w)
		return
	}
	if m.NoMatch() {
		WarningResponse("No record matched transaction id " + id + ", nothing was deleted").
			TriggerWarningNotification("Nothing deleted").
			Write(w)
		return
	}

	SuccessResponse("Deleted record " + id).
		TriggerExpenseChanged(ChangeDeleted, m.Affected).
		TriggerSuccessNotification("Record deleted").
		Write(w)
}

// handleDeleteRange removes every record dated within the given days.
func (s *Server) handleDeleteRange(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	dr, err := ParseRequiredRange(body.Get)
	if err != nil {
		failureResponse(ctx, applog.OpDeleteRange, err).Write(w)
		return
	}
	m, err := s.store.DeleteByDateRange(ctx, dr)
	if err != nil {
		failureResponse(ctx, applog.OpDeleteRange, err).Write(w)
		return
	}
	if m.NoMatch() {
		WarningResponse(fmt.Sprintf("No records between %s and %s, nothing was deleted", dr.StartString(), dr.EndString())).
			Write(w)
		return
	}

	SuccessResponse(fmt.Sprintf("Deleted %d records between %s and %s", m.Affected, dr.StartString(), dr.EndString())).
		TriggerExpenseChanged(ChangeRangeDeleted, m.Affected).
		TriggerSuccessNotification("Records deleted").
		Write(w)
}

// deleteAllWarning is shown next to the confirmation box and returned
// when the box was not ticked.
const deleteAllWarning = "This will delete ALL data! Be careful."

// handleDeleteAll empties the table once the user has confirmed.
func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	ctx := r.Context()

	if body.Get("confirm") != "yes" {
		UnprocessableEntityError(deleteAllWarning + " Confirm to proceed.").Write(w)
		return
	}
	m, err := s.store.DeleteAll(ctx)
	if err != nil {
		failureResponse(ctx, applog.OpDeleteAll, err).Write(w)
		return
	}
	if m.NoMatch() {
		WarningResponse("There was nothing to delete").Write(w)
		return
	}

	SuccessResponse(fmt.Sprintf("Deleted all %d records", m.Affected)).
		TriggerExpenseChanged(ChangeAllDeleted, m.Affected).
		TriggerSuccessNotification("All records deleted").
		Write(w)
}
