package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	now := time.Now()
	logger.Info("archived file", "file", "save.dat")

	output := buf.String()
	for _, want := range []string{"INFO", "archived file", "file=save.dat", now.Format(time.Kitchen)} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %q", want, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("expected trailing newline, got: %q", output)
	}
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil)).With("run", "r1").WithGroup("app")

	logger.Info("message", "name", "Example")

	output := buf.String()
	if !strings.Contains(output, "run=r1") {
		t.Errorf("expected common attribute in output, got: %q", output)
	}
	if !strings.Contains(output, "app.name=Example") {
		t.Errorf("expected grouped attribute in output, got: %q", output)
	}
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	ctx := t.Context()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("expected Info level to be disabled when min level is Warn")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
}

func TestHandler_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, &slog.HandlerOptions{Level: LevelTrace})

	r := slog.NewRecord(time.Time{}, LevelTrace, "rule expanded", 0)
	if err := h.Handle(t.Context(), r); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "TRACE rule expanded") {
		t.Errorf("expected untimed TRACE line, got: %q", buf.String())
	}
}

func TestHandler_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("selected", "account_id", "76561198000000042", "api_key", "secret12345")

	output := buf.String()
	if strings.Contains(output, "76561198000000042") {
		t.Error("account_id value should be redacted")
	}
	if !strings.Contains(output, "account_id=****0042") {
		t.Errorf("expected masked account_id, got: %q", output)
	}
	if !strings.Contains(output, "api_key=****2345") {
		t.Errorf("expected masked api_key, got: %q", output)
	}

	buf.Reset()
	logger.Info("token value", "foo", "ghp_secrettoken")
	if !strings.Contains(buf.String(), "foo=****oken") {
		t.Errorf("expected masked value based on prefix, got: %q", buf.String())
	}
}

func TestMaskValue(t *testing.T) {
	tests := map[string]string{
		"":           "********",
		"1234":       "********",
		"12345":      "****2345",
		"longsecret": "****cret",
	}
	for in, want := range tests {
		if got := MaskValue(in); got != want {
			t.Errorf("MaskValue(%q) = %q, want %q", in, got, want)
		}
	}
}
