package main

import (
	"bytes"
	"flag"
	"math"
	"strings"
	"testing"
)

func TestParseConfigRejectsFullClearance(t *testing.T) {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := parseConfig(fs, []string{"-mines", "24", "-reveals", "1"}); err == nil {
		t.Error("expected full clearance to be rejected")
	}
}

func TestExpectedRTP(t *testing.T) {
	got := expectedRTP(simConfig{MinesCount: 3, Reveals: 2})
	want := []float64{
		36.0 / 37.0,
		36.0 / 37.0,
		(22.0 / 25.0) * (21.0 / 24.0) * math.Pow(22.0/20.0, 1.1),
		15.0 / 30.0,
		20.0 / 30.0,
		20.0 / 30.0,
		10.0 / 30.0,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d values", len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("expected[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSimulateBatchDeterministic(t *testing.T) {
	cfg := simConfig{Rounds: 200, MinesCount: 3, Reveals: 2}
	a := simulateBatch(cfg, "abc", "def")
	b := simulateBatch(cfg, "abc", "def")
	for i := range a {
		if a[i].paid != b[i].paid || a[i].rounds != 200 {
			t.Errorf("%s: not deterministic or wrong round count", a[i].name)
		}
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	if err := run(simConfig{Batches: 2, Rounds: 100, MinesCount: 3, Reveals: 2}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "roulette red") || !strings.Contains(out.String(), "Batch 2:") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
