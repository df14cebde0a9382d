package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evopyramid/evonexus/internal/flowmon"
	"github.com/evopyramid/evonexus/internal/memory"
	"github.com/evopyramid/evonexus/internal/provenance"
)

// #region metrics

func newMetricsCmd() *cobra.Command {
	var (
		last    int
		jsonOut bool
		cycles  bool
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Summarize the flow log and recent cycle decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cycles {
				return runCycleLog(last, jsonOut)
			}
			return runFlowSummary(last, jsonOut)
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent entries")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	cmd.Flags().BoolVar(&cycles, "cycles", false, "show the cycle decision log instead of flow metrics")
	return cmd
}

// #endregion metrics

// #region flow-summary

type flowSummary struct {
	Entries      int     `json:"entries"`
	AvgCoherence float64 `json:"avg_coherence"`
	AvgNovelty   float64 `json:"avg_novelty"`
	AvgResonance float64 `json:"avg_resonance"`
	AvgDensity   float64 `json:"avg_density"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

func runFlowSummary(last int, jsonOut bool) error {
	events, err := flowmon.ReadLog(cfg.FlowLogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("no flow entries recorded")
			return nil
		}
		return fmt.Errorf("read flow log %s: %w", cfg.FlowLogPath, err)
	}
	if len(events) == 0 {
		fmt.Println("no flow entries recorded")
		return nil
	}

	summary := summarize(events)
	recent := events
	if last > 0 && len(recent) > last {
		recent = recent[len(recent)-last:]
	}

	if jsonOut {
		return printJSON(struct {
			Summary flowSummary     `json:"summary"`
			Recent  []flowmon.Event `json:"recent"`
		}{summary, recent})
	}

	fmt.Printf("flow entries: %d  coherence=%.3f novelty=%.3f resonance=%.3f density=%.3f latency=%.1fms\n",
		summary.Entries, summary.AvgCoherence, summary.AvgNovelty,
		summary.AvgResonance, summary.AvgDensity, summary.AvgLatencyMS)
	fmt.Printf("%-22s  %9s  %7s  %9s  %7s  %9s\n",
		"Time", "Coherence", "Novelty", "Resonance", "Density", "Latency")
	for _, ev := range recent {
		fmt.Printf("%-22s  %9.3f  %7.3f  %9.3f  %7.3f  %7.1fms\n",
			ev.Timestamp.Format("2006-01-02T15:04:05Z"),
			ev.Coherence, ev.Novelty, ev.Resonance, ev.Density, ev.LatencyMS)
	}
	return nil
}

func summarize(events []flowmon.Event) flowSummary {
	s := flowSummary{Entries: len(events)}
	for _, ev := range events {
		s.AvgCoherence += ev.Coherence
		s.AvgNovelty += ev.Novelty
		s.AvgResonance += ev.Resonance
		s.AvgDensity += ev.Density
		s.AvgLatencyMS += ev.LatencyMS
	}
	n := float64(len(events))
	s.AvgCoherence /= n
	s.AvgNovelty /= n
	s.AvgResonance /= n
	s.AvgDensity /= n
	s.AvgLatencyMS /= n
	return s
}

// #endregion flow-summary

// #region cycle-log

func runCycleLog(last int, jsonOut bool) error {
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
		fmt.Println("no cycles recorded")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}
	fmt.Printf("%-36s  %-7s  %-8s  %-8s  %6s  %s\n",
		"Cycle", "Path", "Decision", "Tier", "Score", "Input")
	for _, e := range entries {
		fmt.Printf("%-36s  %-7s  %-8s  %-8s  %6.3f  %s\n",
			e.CycleID, e.PriorityPath, e.Decision, e.Tier, e.Score, e.Input)
	}
	return nil
}

// #endregion cycle-log
