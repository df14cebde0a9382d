package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evopyramid/evonexus/internal/memory"
	"github.com/evopyramid/evonexus/internal/provenance"
	"github.com/evopyramid/evonexus/internal/replay"
)

// #region replay

func newReplayCmd() *cobra.Command {
	var (
		fixturePath string
		jsonOut     bool
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded fixture and verify expected outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}

			results, summary, err := replay.Run(cmd.Context(), f, cfg, logger)
			if err != nil {
				return err
			}

			if jsonOut {
				if err := printJSON(struct {
					Summary replay.Summary  `json:"summary"`
					Results []replay.Result `json:"results"`
				}{summary, results}); err != nil {
					return err
				}
			} else {
				for i, r := range results {
					status := "ok"
					if !r.Passed {
						status = "MISMATCH " + r.Mismatch
					}
					fmt.Printf("turn %d: path=%s decision=%s tier=%s score=%.4f  %s\n",
						i, r.Path, r.Decision, r.Tier, r.Score, status)
				}
				fmt.Printf("%d/%d turns matched\n", summary.Passed, summary.TotalTurns)
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d turns mismatched", summary.Failed, summary.TotalTurns)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to replay fixture JSON")
	_ = cmd.MarkFlagRequired("fixture")
	cmd.AddCommand(newReplayExportCmd())
	return cmd
}

// #endregion replay

// #region replay-export

// newReplayExportCmd turns the most recent recorded cycles into a fixture
// file, so a live session becomes tomorrow's regression baseline.
func newReplayExportCmd() *cobra.Command {
	var (
		last    int
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recent cycles from the decision log as a replay fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			log, err := provenance.NewLog(store.DB())
			if err != nil {
				return fmt.Errorf("open cycle log: %w", err)
			}
			entries, err := log.Recent(last)
			if err != nil {
				return fmt.Errorf("read cycle log: %w", err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("no cycles recorded in %s", cfg.MemoryDBPath)
			}

			// Recent returns newest first; fixtures run chronologically.
			f := replay.Fixture{
				Description: fmt.Sprintf("exported from %s", cfg.MemoryDBPath),
			}
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				f.Interactions = append(f.Interactions, replay.FixtureInteraction{
					Input:            e.Input,
					ExpectedPath:     e.PriorityPath,
					ExpectedDecision: e.Decision,
					ExpectedTier:     e.Tier,
				})
			}

			data, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write fixture %s: %w", outPath, err)
			}
			fmt.Printf("exported %d interactions to %s\n", len(f.Interactions), outPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 10, "number of most recent cycles to export")
	cmd.Flags().StringVar(&outPath, "out", "", "output fixture JSON path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// #endregion replay-export
