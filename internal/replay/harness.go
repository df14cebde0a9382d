package replay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/evopyramid/evonexus/internal/config"
	"github.com/evopyramid/evonexus/internal/consensus"
	"github.com/evopyramid/evonexus/internal/engine"
	"github.com/evopyramid/evonexus/internal/memory"
	"github.com/evopyramid/evonexus/internal/router"
)

// #region types

// Result captures the outcome of replaying one interaction.
type Result struct {
	Input    string
	Path     router.Path
	Decision consensus.Decision
	Tier     consensus.Tier
	Score    float64
	Passed   bool
	Mismatch string // empty when Passed
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns int
	Passed     int
	Failed     int
}

// #endregion types

// #region replay

// Run replays every interaction of the fixture through a freshly wired
// engine backed by an in-memory store. The store boots with the standard
// seed ledger; fixture fragments are ingested on top before the first
// interaction. Operates entirely in-memory and leaves no files behind.
func Run(ctx context.Context, fixture *Fixture, cfg config.Config, log *zap.Logger) ([]Result, Summary, error) {
	store := memory.Open(":memory:", log)
	defer store.Close()

	eng, err := engine.New(cfg, store, nil, log)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("wire replay engine: %w", err)
	}

	for _, ff := range fixture.Fragments {
		if _, err := eng.AddToMemory(ff.ToFragmentData()); err != nil {
			return nil, Summary{}, fmt.Errorf("ingest fixture fragment %q: %w", ff.ID, err)
		}
	}

	results := make([]Result, 0, len(fixture.Interactions))
	for _, inter := range fixture.Interactions {
		cycle, err := eng.ProcessQuery(ctx, inter.Input, nil)
		if err != nil {
			return results, Summarize(results), fmt.Errorf("replay %q: %w", inter.Input, err)
		}

		r := Result{
			Input:    inter.Input,
			Path:     cycle.Snapshot.Priority,
			Decision: cycle.Decision.Decision,
			Tier:     cycle.Decision.Tier,
			Score:    cycle.Decision.Score,
			Passed:   true,
		}
		r.Mismatch = diff(inter, r)
		r.Passed = r.Mismatch == ""
		results = append(results, r)
	}

	return results, Summarize(results), nil
}

// diff returns a description of the first expectation the result misses.
// Empty expectation fields are skipped.
func diff(inter FixtureInteraction, r Result) string {
	if inter.ExpectedPath != "" && string(r.Path) != inter.ExpectedPath {
		return fmt.Sprintf("path: expected %s, got %s", inter.ExpectedPath, r.Path)
	}
	if inter.ExpectedDecision != "" && string(r.Decision) != inter.ExpectedDecision {
		return fmt.Sprintf("decision: expected %s, got %s", inter.ExpectedDecision, r.Decision)
	}
	if inter.ExpectedTier != "" && string(r.Tier) != inter.ExpectedTier {
		return fmt.Sprintf("tier: expected %s, got %s", inter.ExpectedTier, r.Tier)
	}
	return ""
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalTurns: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay
