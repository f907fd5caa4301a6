package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mamatimer/internal/bootstrap"
	"mamatimer/internal/platform/config"
	"mamatimer/internal/platform/kv"
)

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--data", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestFetalCommandsShareStateAcrossInvocations(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("MAMATIMER_TIMEZONE", "UTC")

	out, err := runCLI(t, dataDir, "fetal", "start")
	if err != nil || !strings.Contains(out, "counting started") {
		t.Fatalf("start: %v %q", err, out)
	}
	if _, err := runCLI(t, dataDir, "fetal", "start"); err == nil {
		t.Fatalf("expected second start to fail while a session is active")
	}

	out, err = runCLI(t, dataDir, "fetal", "tap")
	if err != nil || !strings.Contains(out, "movement counted: valid=1 clicks=1") {
		t.Fatalf("first tap: %v %q", err, out)
	}
	out, err = runCLI(t, dataDir, "fetal", "tap")
	if err != nil || !strings.Contains(out, "click noted: valid=1 clicks=2") {
		t.Fatalf("second tap: %v %q", err, out)
	}

	out, err = runCLI(t, dataDir, "fetal", "end")
	if err != nil || !strings.Contains(out, "valid=1 clicks=2") {
		t.Fatalf("end: %v %q", err, out)
	}
	out, err = runCLI(t, dataDir, "fetal", "status")
	if err != nil || !strings.Contains(out, "no counting session") {
		t.Fatalf("status: %v %q", err, out)
	}
	out, err = runCLI(t, dataDir, "fetal", "today")
	if err != nil || !strings.Contains(out, "sessions=1 valid=1 clicks=2") {
		t.Fatalf("today: %v %q", err, out)
	}
}

func TestContractionAndHistoryCommands(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("MAMATIMER_TIMEZONE", "UTC")

	out, err := runCLI(t, dataDir, "contraction", "stop")
	if err != nil || !strings.Contains(out, "no contraction running") {
		t.Fatalf("idle stop: %v %q", err, out)
	}
	if _, err := runCLI(t, dataDir, "contraction", "start"); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err = runCLI(t, dataDir, "contraction", "stop")
	if err != nil || !strings.Contains(out, "interval=--:--") {
		t.Fatalf("stop: %v %q", err, out)
	}

	out, err = runCLI(t, dataDir, "history", "list")
	if err != nil || !strings.Contains(out, "contractions=1") {
		t.Fatalf("history list: %v %q", err, out)
	}
	if _, err := runCLI(t, dataDir, "history", "list", "--kind", "naps"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}

	out, err = runCLI(t, dataDir, "history", "export")
	if err != nil || !strings.HasPrefix(out, "created ") {
		t.Fatalf("export: %v %q", err, out)
	}
	path := strings.TrimSpace(strings.TrimPrefix(out, "created "))
	if !strings.HasPrefix(path, filepath.Join(dataDir, "history")) {
		t.Fatalf("note written outside the data dir: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("note missing: %v", err)
	}
	out, err = runCLI(t, dataDir, "history", "export")
	if err != nil || !strings.HasPrefix(out, "updated ") {
		t.Fatalf("second export: %v %q", err, out)
	}
}

func TestTodayRejectsBadDate(t *testing.T) {
	dataDir := t.TempDir()
	if _, err := runCLI(t, dataDir, "fetal", "today", "--date", "18/10/2026"); err == nil {
		t.Fatalf("expected bad date to fail")
	}
}

func TestTapAfterSessionFinishedPrintsSummary(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := bootstrap.New(cfg, bootstrap.Options{Store: kv.NewMemoryStore()})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = app.Close() }()
	ctx := context.Background()

	if _, err := app.FetalCLI.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	var out bytes.Buffer
	if done, err := tapFetal(ctx, app, &out); err != nil || done {
		t.Fatalf("tap during session: done=%v err=%v", done, err)
	}
	if _, err := app.FetalCLI.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}

	out.Reset()
	done, err := tapFetal(ctx, app, &out)
	if err != nil || !done {
		t.Fatalf("tap after finish: done=%v err=%v", done, err)
	}
	if !strings.Contains(out.String(), "sessions=1 valid=1 clicks=1") {
		t.Fatalf("expected day summary, got %q", out.String())
	}
}
