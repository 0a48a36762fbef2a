package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/export"
	"kharcha/internal/services"
	"kharcha/internal/storage/memory"
)

var testNow = time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

func seedRecords() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		{TransactionID: "a-1", Timestamp: time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC), Amount: 15, Reason: "lunch", Category: core.Category("Food")},
		{TransactionID: "b-2", Timestamp: time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC), Amount: 30, Reason: "cab", Category: core.Category("Travel")},
	}
}

func newTestServer(t *testing.T, opts Options, seed ...core.ExpenseRecord) (*Server, *services.ExpenseService) {
	t.Helper()
	svc := services.NewExpenseService(memory.New(seed...), nil, core.FixedClock{T: testNow})
	srv := NewServer(":0", svc, core.FixedClock{T: testNow}, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, svc
}

func do(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/", nil)
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `hx-post="/expenses"`) {
		t.Fatalf("default mode should be Log Expense: %s", body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing X-Request-ID")
	}

	rr = do(srv, http.MethodGet, "/?mode=view", nil)
	body = rr.Body.String()
	if !strings.Contains(body, `value="2025-03-03"`) || !strings.Contains(body, `value="2025-03-10"`) {
		t.Errorf("range inputs should default to the last week: %s", body)
	}

	rr = do(srv, http.MethodGet, "/?mode=delete", nil)
	if !strings.Contains(rr.Body.String(), "This will delete ALL data! Be careful.") {
		t.Errorf("delete mode should carry the warning")
	}
	if strings.Contains(rr.Body.String(), `hx-post="/expenses"`) {
		t.Errorf("modes are exclusive, log form should not render in delete mode")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, nil)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := do(srv, http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
}

type downStore struct{ *services.ExpenseService }

func (downStore) Ping(context.Context) error { return errors.New("disk gone") }

func TestReadyReportsStorageFailure(t *testing.T) {
	svc := services.NewExpenseService(memory.New(), nil, core.FixedClock{T: testNow})
	srv := NewServer(":0", downStore{svc}, core.FixedClock{T: testNow}, Options{})
	defer srv.Shutdown(context.Background())

	if rr := do(srv, http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestCreateExpenseValidationAndSuccess(t *testing.T) {
	srv, svc := newTestServer(t, Options{})

	if rr := do(srv, http.MethodGet, "/expenses", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	tests := []struct {
		name string
		form url.Values
		code int
	}{
		{"bad amount", url.Values{"amount": {"abc"}, "reason": {"x"}, "category": {"Food"}}, 422},
		{"unknown category", url.Values{"amount": {"10"}, "reason": {"x"}, "category": {"Rent"}}, 422},
		{"ok", url.Values{"amount": {"₹1,500"}, "reason": {"chai"}, "category": {"food"}}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(srv, http.MethodPost, "/expenses", tt.form)
			if rr.Code != tt.code {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.code, rr.Body.String())
			}
		})
	}

	rr := do(srv, http.MethodPost, "/expenses", url.Values{"amount": {"abc"}, "category": {"Food"}})
	if trig := rr.Header().Get("HX-Trigger"); !strings.Contains(trig, "show-notification") || !strings.Contains(trig, `"type":"error"`) {
		t.Errorf("422 should raise an error notification, HX-Trigger=%q", trig)
	}

	rr = do(srv, http.MethodPost, "/expenses", url.Values{"amount": {"12.5"}, "reason": {"snacks"}, "category": {"Food"}})
	if !strings.Contains(rr.Body.String(), `class="success"`) {
		t.Fatalf("expected success in body: %s", rr.Body.String())
	}
	trig := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trig, "expense:changed") || !strings.Contains(trig, "form:reset") {
		t.Errorf("HX-Trigger=%q", trig)
	}

	recs, err := svc.ListByDateRange(context.Background(), core.DefaultRange(testNow))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(recs))
	}
	if recs[0].Amount != 1500 || recs[0].Category != core.Category("Food") {
		t.Errorf("first record = %+v", recs[0])
	}
}

func TestRecordsAndExport(t *testing.T) {
	srv, _ := newTestServer(t, Options{}, seedRecords()...)

	rr := do(srv, http.MethodGet, "/ui/records?start=2025-03-01&end=2025-03-10", nil)
	if rr.Code != 200 {
		t.Fatalf("records status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"lunch", "cab", "2025-03-08 09:00:00", "/export.csv?start=2025-03-01"} {
		if !strings.Contains(body, want) {
			t.Errorf("records body missing %q", want)
		}
	}

	rr = do(srv, http.MethodGet, "/ui/records?start=2024-01-01&end=2024-01-31", nil)
	if !strings.Contains(rr.Body.String(), "No data found") {
		t.Errorf("empty range should say No data found: %s", rr.Body.String())
	}

	rr = do(srv, http.MethodGet, "/ui/records?start=bogus", nil)
	if rr.Code != 422 {
		t.Errorf("malformed date status=%d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/export.csv?start=2025-03-01&end=2025-03-10", nil)
	if rr.Code != 200 {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("Content-Type=%q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != export.ContentDisposition() {
		t.Errorf("Content-Disposition=%q", cd)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Errorf("export should not be cached")
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 || lines[0] != export.Header {
		t.Fatalf("csv=%q", rr.Body.String())
	}
	if lines[1] != "a-1,2025-03-08 09:00:00,15.00,lunch,Food" {
		t.Errorf("row=%q", lines[1])
	}

	rr = do(srv, http.MethodGet, "/export.csv?start=2024-01-01&end=2024-01-02", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("empty export status=%d", rr.Code)
	}
}

func TestCharts(t *testing.T) {
	srv, _ := newTestServer(t, Options{}, seedRecords()...)

	rr := do(srv, http.MethodGet, "/ui/charts", nil)
	if rr.Code != 200 {
		t.Fatalf("charts status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"<polyline", "Travel", "Food", "₹45.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("charts body missing %q", want)
		}
	}

	rr = do(srv, http.MethodGet, "/ui/charts?start=2024-01-01&end=2024-01-31", nil)
	if !strings.Contains(rr.Body.String(), "No data found") {
		t.Errorf("empty charts: %s", rr.Body.String())
	}
}

func TestRecordAndUpdate(t *testing.T) {
	srv, svc := newTestServer(t, Options{}, seedRecords()...)
	ctx := context.Background()

	rr := do(srv, http.MethodGet, "/ui/record?id=a-1", nil)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "lunch") {
		t.Fatalf("record lookup status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(srv, http.MethodGet, "/ui/record?id=zzz", nil)
	if !strings.Contains(rr.Body.String(), "No record found") {
		t.Errorf("unknown id: %s", rr.Body.String())
	}

	rr = do(srv, http.MethodPost, "/expenses/update", url.Values{"id": {"a-1"}, "field": {"amount"}, "value": {"99"}})
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "success") {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	rec, _, _ := svc.FindByID(ctx, "a-1")
	if rec.Amount != 99 {
		t.Errorf("amount=%v, want 99", rec.Amount)
	}
	other, _, _ := svc.FindByID(ctx, "b-2")
	if other.Amount != 30 {
		t.Errorf("other record changed: %+v", other)
	}

	rr = do(srv, http.MethodPost, "/expenses/update", url.Values{"id": {"zzz"}, "field": {"reason"}, "value": {"x"}})
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "No record matched") {
		t.Errorf("no-match update: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(srv, http.MethodPost, "/expenses/update", url.Values{"id": {"a-1"}, "field": {"timestamp"}, "value": {"x"}})
	if rr.Code != 422 {
		t.Errorf("invalid field status=%d", rr.Code)
	}
	rr = do(srv, http.MethodPost, "/expenses/update", url.Values{"id": {"a-1"}, "field": {"category"}, "value": {"Rent"}})
	if rr.Code != 422 {
		t.Errorf("invalid category status=%d", rr.Code)
	}
}

func TestDeleteEndpoints(t *testing.T) {
	srv, svc := newTestServer(t, Options{}, seedRecords()...)
	ctx := context.Background()
	all := core.NewDateRange(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), testNow)

	rr := do(srv, http.MethodDelete, "/expenses/delete?id=zzz", nil)
	if !strings.Contains(rr.Body.String(), "nothing was deleted") {
		t.Errorf("no-match delete: %s", rr.Body.String())
	}

	rr = do(srv, http.MethodPost, "/expenses/delete-range", url.Values{"start": {"2025-03-08"}})
	if rr.Code != 422 {
		t.Errorf("delete-range without end status=%d", rr.Code)
	}
	rr = do(srv, http.MethodPost, "/expenses/delete-range", url.Values{"start": {"2025-03-08"}, "end": {"2025-03-08"}})
	if !strings.Contains(rr.Body.String(), "Deleted 1 records") {
		t.Errorf("delete-range: %s", rr.Body.String())
	}
	if recs, _ := svc.ListByDateRange(ctx, all); len(recs) != 1 {
		t.Fatalf("expected 1 record left, got %d", len(recs))
	}

	rr = do(srv, http.MethodPost, "/expenses/delete-all", url.Values{})
	if rr.Code != 422 || !strings.Contains(rr.Body.String(), "Be careful") {
		t.Errorf("delete-all without confirm: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(srv, http.MethodPost, "/expenses/delete-all", url.Values{"confirm": {"yes"}})
	if !strings.Contains(rr.Body.String(), "Deleted all 1 records") {
		t.Errorf("delete-all: %s", rr.Body.String())
	}
	if recs, _ := svc.ListByDateRange(ctx, all); len(recs) != 0 {
		t.Fatalf("expected empty store, got %d", len(recs))
	}
}

func TestRateLimitAppliesToMutations(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitRPM: 2})
	form := url.Values{"amount": {"1"}, "reason": {"x"}, "category": {"Food"}}

	for i := 0; i < 2; i++ {
		if rr := do(srv, http.MethodPost, "/expenses", form); rr.Code != 200 {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	if rr := do(srv, http.MethodPost, "/expenses", form); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/ui/records", nil); rr.Code != 200 {
		t.Fatalf("reads should not be limited, got %d", rr.Code)
	}
}

func TestCreateExpenseRejectsOversizedBody(t *testing.T) {
	srv, svc := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/expenses", url.Values{
		"amount":   {"10"},
		"category": {"Food"},
		"reason":   {strings.Repeat("r", 70000)},
	})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d, want 413", rr.Code)
	}
	recs, err := svc.ListByDateRange(context.Background(), core.DefaultRange(testNow))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("nothing should be stored, got %d records", len(recs))
	}
}

func TestTrustedProxyForwardedClientsLimitedSeparately(t *testing.T) {
	form := url.Values{"amount": {"1"}, "reason": {"x"}, "category": {"Food"}}
	post := func(srv *Server, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", xff)
		req.RemoteAddr = "203.0.113.5:1234"
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		return rr.Code
	}

	trusted, _ := newTestServer(t, Options{RateLimitRPM: 1, TrustedProxies: []string{"203.0.113.0/24"}})
	if code := post(trusted, "198.51.100.1"); code != 200 {
		t.Fatalf("first client status=%d", code)
	}
	if code := post(trusted, "198.51.100.2"); code != 200 {
		t.Fatalf("second client behind trusted proxy should have its own bucket, got %d", code)
	}

	untrusted, _ := newTestServer(t, Options{RateLimitRPM: 1})
	if code := post(untrusted, "198.51.100.1"); code != 200 {
		t.Fatalf("first request status=%d", code)
	}
	if code := post(untrusted, "198.51.100.2"); code != http.StatusTooManyRequests {
		t.Fatalf("untrusted proxy forwarded header must be ignored, got %d", code)
	}
}
