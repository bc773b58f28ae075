package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"strategy-gate/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func samplesCSV(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("start,t1,return\n")
	for i := 0; i < n; i++ {
		r := 0.02
		if i%2 == 1 {
			r = -0.01
		}
		fmt.Fprintf(&b, "%d,%d.5,%g\n", i, i, r)
	}
	return writeFile(t, "samples.csv", b.String())
}

func TestWFO_Table(t *testing.T) {
	path := samplesCSV(t, 24)
	out, err := execute(t, "wfo", path, "--splits", "4", "--embargo", "0", "--periods-per-year", "0")
	if err != nil {
		t.Fatalf("wfo: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d: %q", len(lines), out)
	}
	if lines[0] != "fold     sharpe     maxdd  variance" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1        0.3333") {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestWFO_JSON(t *testing.T) {
	path := samplesCSV(t, 24)
	out, err := execute(t, "wfo", path, "--splits", "3", "--format", "json")
	if err != nil {
		t.Fatalf("wfo: %v", err)
	}

	var resp struct {
		Folds   []domain.FoldMetrics `json:"folds"`
		Summary domain.FoldSummary   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(resp.Folds) != 3 || resp.Summary.Folds != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestWFO_Errors(t *testing.T) {
	if _, err := execute(t, "wfo", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeFile(t, "bad.csv", "start,t1,return\n1,2,0.1\n2,x,0.1\n")
	_, err := execute(t, "wfo", bad)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected line-numbered error, got %v", err)
	}

	if _, err := execute(t, "wfo", samplesCSV(t, 10), "--splits", "1"); err == nil {
		t.Error("expected error for one split")
	}
	if _, err := execute(t, "wfo", samplesCSV(t, 10), "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestGate(t *testing.T) {
	out, err := execute(t, "gate", "--estimate", "1.5", "--std", "0.2", "--threshold", "1.0")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if !strings.Contains(out, "Policy passed the gate: LCB 1.171029") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = execute(t, "gate", "--estimate", "0.8", "--std", "0.6", "--strict")
	if !errors.Is(err, errRejected) {
		t.Errorf("expected errRejected, got %v", err)
	}
	if !strings.Contains(out, "Policy failed the gate") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = execute(t, "gate", "--estimate", "1.5", "--std", "0.4", "--format", "markdown")
	if err != nil {
		t.Fatalf("gate markdown: %v", err)
	}
	if !strings.Contains(out, "## Decision: DEPLOY") {
		t.Errorf("unexpected markdown: %q", out)
	}

	if _, err := execute(t, "gate", "--estimate", "1.5"); err == nil {
		t.Error("expected error for missing --std")
	}
	if _, err := execute(t, "gate", "--estimate", "1", "--std", "0.1", "--confidence", "1"); err == nil {
		t.Error("expected error for confidence 1")
	}
}

func TestHCOPE(t *testing.T) {
	path := writeFile(t, "rewards.json", `[
		{"reward": 0.9, "behavior_prob": 0.5, "target_prob": 0.5},
		{"reward": 0.9, "behavior_prob": 0.5, "target_prob": 0.5},
		{"reward": 0.9, "behavior_prob": 0.5, "target_prob": 0.5},
		{"reward": 0.9, "behavior_prob": 0.5, "target_prob": 0.5}
	]`)

	out, err := execute(t, "hcope", path, "--estimator", "hoeffding", "--delta", "0.05", "--format", "json")
	if err != nil {
		t.Fatalf("hcope: %v", err)
	}
	var d domain.GateDecision
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if d.Estimator != "hoeffding" || d.SampleCount != 4 {
		t.Errorf("unexpected decision: %+v", d)
	}

	if _, err := execute(t, "hcope", path, "--estimator", "bootstrap"); err == nil {
		t.Error("expected error for unknown estimator")
	}
}

func TestTCA(t *testing.T) {
	out, err := execute(t, "tca", "simulate", "--side", "buy", "--qty", "1", "--limit", "101", "--mid", "100")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if strings.TrimSpace(out) != "filled_qty=1.000000 avg_price=100.000000 implementation_shortfall=0.000000" {
		t.Errorf("unexpected output: %q", out)
	}

	log := writeFile(t, "log.csv", "latency_ms,depth,arrival_mid,post_fill_mid,filled\n100,50,100,100.5,1\n100,50,100,100.5,yes\n")
	out, err = execute(t, "tca", "calibrate", log)
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	if !strings.Contains(out, `"fill_prob": 1`) || !strings.Contains(out, `"rows_used": 2`) {
		t.Errorf("unexpected calibration: %q", out)
	}

	out, err = execute(t, "tca", "simulate", "--side", "sell", "--qty", "10", "--limit", "99", "--mid", "100", "--calibration", log, "--format", "csv")
	if err != nil {
		t.Fatalf("simulate calibrated: %v", err)
	}
	if !strings.HasPrefix(out, "leg,side,quantity") {
		t.Errorf("unexpected csv: %q", out)
	}

	if _, err := execute(t, "tca", "simulate", "--side", "hold", "--qty", "1", "--limit", "1", "--mid", "1"); err == nil {
		t.Error("expected error for unknown side")
	}
	if _, err := execute(t, "tca", "calibrate", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing log")
	}
}

func TestRun_Memory(t *testing.T) {
	path := samplesCSV(t, 24)
	out, err := execute(t, "run", path, "--strategy-id", "mr", "--splits", "4", "--embargo", "0", "--periods-per-year", "0")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "# Validation Report") || !strings.Contains(out, "| Strategy | mr |") {
		t.Errorf("unexpected report: %q", out)
	}
	if !strings.Contains(out, "Decision: **PASS**") {
		t.Errorf("expected passing decision: %q", out)
	}

	if _, err := execute(t, "run", path); err == nil {
		t.Error("expected error for missing --strategy-id")
	}
}

func TestRun_EmbargoMode(t *testing.T) {
	path := samplesCSV(t, 24)
	out, err := execute(t, "run", path, "--strategy-id", "mr", "--splits", "4",
		"--embargo", "0.1", "--embargo-mode", "count", "--format", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var run domain.ValidationRun
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.EmbargoMode != "count" {
		t.Errorf("embargo mode = %q, want count", run.EmbargoMode)
	}

	_, err = execute(t, "run", path, "--strategy-id", "mr", "--embargo-mode", "bogus", "--format", "json")
	if err == nil || !strings.Contains(err.Error(), "unknown embargo mode") {
		t.Errorf("expected unknown embargo mode error, got %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "validation:\n  splits: 3\n  embargo_pct: 0\n  periods_per_year: 0\n")
	out, err := execute(t, "--config", cfg, "wfo", samplesCSV(t, 12), "--format", "csv")
	if err != nil {
		t.Fatalf("wfo: %v", err)
	}
	if n := strings.Count(out, "\n"); n != 4 {
		t.Errorf("expected header + 3 rows from config splits, got %d lines", n)
	}

	bad := writeFile(t, "bad.yaml", "validation:\n  splits: 1\n")
	if _, err := execute(t, "--config", bad, "wfo", samplesCSV(t, 12)); err == nil {
		t.Error("expected config validation error")
	}
}

func TestFunding(t *testing.T) {
	out, err := execute(t, "funding", "edge", "--rate", "0.01", "--premium", "0.02", "--floor", "-0.0075", "--cap", "0.0075")
	if err != nil {
		t.Fatalf("edge: %v", err)
	}
	if strings.TrimSpace(out) != "25.0000" {
		t.Errorf("edge = %q", out)
	}

	path := writeFile(t, "funding.csv", "timestamp,rate,position,price\n"+
		"2024-01-01T00:00:00Z,0.0001,2,100\n"+
		"2024-01-01T16:00:00Z,0.0001,2,100\n")

	out, err = execute(t, "funding", "pnl", path, "--window", "8h")
	if err != nil {
		t.Fatalf("pnl: %v", err)
	}
	want := "start,end,pnl\n" +
		"2024-01-01T00:00:00Z,2024-01-01T08:00:00Z,0.020000\n" +
		"2024-01-01T08:00:00Z,2024-01-01T16:00:00Z,0.000000\n" +
		"2024-01-01T16:00:00Z,2024-01-02T00:00:00Z,0.020000\n"
	if out != want {
		t.Errorf("pnl output:\n%s\nwant:\n%s", out, want)
	}

	out, err = execute(t, "funding", "pnl", path, "--daily")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if out != "date,pnl\n2024-01-01,0.040000\n" {
		t.Errorf("daily output: %q", out)
	}
}
