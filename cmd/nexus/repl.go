package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// #region repl

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive query loop",
		RunE:  runRepl,
	}
}

func runRepl(cmd *cobra.Command, args []string) error {
	eng, cleanup, err := wireEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("nexus ready.")
	fmt.Printf("  db: %s | flow log: %s\n", cfg.MemoryDBPath, cfg.FlowLogPath)
	fmt.Println("Type a query (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		res, err := eng.ProcessQuery(cmd.Context(), input, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cycle error: %v\n", err)
			continue
		}

		fmt.Printf("[%s] path=%s intent=%s tone=%s hits=%d\n",
			res.Snapshot.CycleID, res.Snapshot.Priority,
			res.Snapshot.Intent.Category, res.Snapshot.Affect.Tone,
			len(res.Snapshot.Memory.Fragments))
		fmt.Printf("  decision=%s tier=%s score=%.4f coherence=%.3f latency=%.1fms\n",
			res.Decision.Decision, res.Decision.Tier, res.Decision.Score,
			res.Metrics.Coherence, res.Metrics.LatencyMS)
	}

	stats := eng.Stats()
	fmt.Printf("session: %d queries, avg latency %.1fms\n", stats.TotalQueries, stats.AvgLatencyMS)
	return scanner.Err()
}

// #endregion repl
