package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogMutation(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(NewText(&buf, slog.LevelInfo, ComponentHTTP))

	sl.LogMutation(context.Background(), OpDelete, 0, NewFields())
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "affected=0") {
		t.Errorf("no-match mutation should log a warning, got %q", out)
	}

	buf.Reset()
	sl.LogMutation(context.Background(), OpDeleteRange, 3, NewFields().WithRange("2025-01-01", "2025-01-07"))
	out := buf.String()
	for _, want := range []string{"level=INFO", "affected=3", "operation=delete_range", "start=2025-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger %+v", l)
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	base := NewText(&buf, slog.LevelInfo, ComponentHTTP).With(FieldRequestID, "req_1")
	sl := NewStructuredLogger(base)

	sl.LogExpenseCreated(context.Background(), "abc", 12.5, "Food")
	out := buf.String()
	if n := strings.Count(out, "component="); n != 1 {
		t.Fatalf("expected one component attr, got %d in %q", n, out)
	}
	if !strings.Contains(out, "component="+ComponentExpense) || !strings.Contains(out, "request_id=req_1") {
		t.Errorf("unexpected line %q", out)
	}

	buf.Reset()
	base.WithComponent(ComponentStorage).Info("opened")
	if n := strings.Count(buf.String(), "component="); n != 1 {
		t.Errorf("expected one component attr, got %d in %q", n, buf.String())
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo, ComponentHTTP)
	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("FromContext returned %p, want %p", got, l)
	}
}
