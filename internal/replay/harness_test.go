package replay

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/evopyramid/evonexus/internal/config"
)

// #region harness-tests

// TestRun_LiveSession loads the live_session fixture, replays every
// interaction through a freshly wired engine, and compares each turn's
// path, decision, and tier against the recorded expectations. This is the
// primary regression net: if thresholds, voice heuristics, or keyword
// tables drift, this catches it.
func TestRun_LiveSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "live_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, summary, err := Run(context.Background(), f, config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.TotalTurns != len(f.Interactions) {
		t.Fatalf("expected %d turns, got %d", len(f.Interactions), summary.TotalTurns)
	}
	for i, r := range results {
		if !r.Passed {
			t.Errorf("turn %d (%q): %s", i, r.Input, r.Mismatch)
		}
	}
	if summary.Failed != 0 {
		t.Errorf("expected zero failed turns, got %d", summary.Failed)
	}
	if summary.Passed != summary.TotalTurns {
		t.Errorf("expected all %d turns passed, got %d", summary.TotalTurns, summary.Passed)
	}
}

// TestRun_Deterministic replays the same fixture twice and requires
// identical scores per turn.
func TestRun_Deterministic(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "live_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	first, _, err := Run(context.Background(), f, config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, _, err := Run(context.Background(), f, config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range first {
		if first[i].Score != second[i].Score {
			t.Errorf("turn %d: score drifted between runs: %f vs %f", i, first[i].Score, second[i].Score)
		}
		if first[i].Path != second[i].Path {
			t.Errorf("turn %d: path drifted between runs: %s vs %s", i, first[i].Path, second[i].Path)
		}
	}
}

// TestRun_MismatchReported verifies a wrong expectation is surfaced, not
// swallowed.
func TestRun_MismatchReported(t *testing.T) {
	f := &Fixture{
		Interactions: []FixtureInteraction{
			{Input: "spam spam spam spam spam spam spam spam spam spam", ExpectedPath: "AGI"},
		},
	}

	results, summary, err := Run(context.Background(), f, config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected 1 failed turn, got %d", summary.Failed)
	}
	if results[0].Passed || results[0].Mismatch == "" {
		t.Errorf("expected mismatch description, got %+v", results[0])
	}
}

// TestRun_EmptyExpectationsAlwaysPass checks that unset expectation fields
// are not compared.
func TestRun_EmptyExpectationsAlwaysPass(t *testing.T) {
	f := &Fixture{
		Interactions: []FixtureInteraction{{Input: "anything goes here"}},
	}

	_, summary, err := Run(context.Background(), f, config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Passed != 1 {
		t.Errorf("expected unconstrained turn to pass, got %+v", summary)
	}
}

// TestRun_BadFragmentRejected verifies fixture fragments go through the
// same validation as live ingestion.
func TestRun_BadFragmentRejected(t *testing.T) {
	f := &Fixture{
		Fragments: []FixtureFragment{{ID: "bad", Name: "n", Content: "c", Layer: "nether"}},
	}

	if _, _, err := Run(context.Background(), f, config.Default(), zap.NewNop()); err == nil {
		t.Fatal("expected validation error for unknown layer")
	}
}

// #endregion harness-tests
