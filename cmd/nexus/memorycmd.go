package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evopyramid/evonexus/internal/linkage"
	"github.com/evopyramid/evonexus/internal/memory"
	"github.com/evopyramid/evonexus/internal/replay"
)

// #region memory-root

func newMemoryCmd() *cobra.Command {
	memCmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and grow the fragment store",
	}
	memCmd.AddCommand(newMemoryAddCmd(), newMemoryImportCmd(), newMemoryListCmd(),
		newMemoryRemoveCmd(), newMemoryLinksCmd(), newMemoryDecayCmd())
	return memCmd
}

// #endregion memory-root

// #region memory-add

func newMemoryAddCmd() *cobra.Command {
	var (
		id     string
		name   string
		layer  string
		tone   string
		weight float64
	)
	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add one fragment to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			data := memory.FragmentData{
				ID:            id,
				Name:          name,
				Content:       args[0],
				Layer:         memory.Layer(layer),
				EmotionalTone: tone,
			}
			if cmd.Flags().Changed("weight") {
				data.Weight = &weight
			}
			f, err := store.AddFragment(data)
			if err != nil {
				return err
			}
			fmt.Printf("added %s (layer=%s weight=%.2f)\n", f.ID, f.Layer, f.Weight)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "fragment id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "fragment name")
	cmd.Flags().StringVar(&layer, "layer", string(memory.LayerFunctional), "layer: core|functional|emotional|meta")
	cmd.Flags().StringVar(&tone, "tone", "", "emotional tone tag")
	cmd.Flags().Float64Var(&weight, "weight", 0, "explicit weight in [0,1]; layer default when unset")
	return cmd
}

// #endregion memory-add

// #region memory-import

// newMemoryImportCmd bulk-loads fragments from a JSON file. The file holds
// an array of fragment objects in the same shape replay fixtures use.
func newMemoryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.json]",
		Short: "Bulk-load fragments from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read fragments %s: %w", args[0], err)
			}
			var fragments []replay.FixtureFragment
			if err := json.Unmarshal(raw, &fragments); err != nil {
				return fmt.Errorf("parse fragments %s: %w", args[0], err)
			}

			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			for _, ff := range fragments {
				if _, err := store.AddFragment(ff.ToFragmentData()); err != nil {
					return fmt.Errorf("import fragment %q: %w", ff.ID, err)
				}
			}
			fmt.Printf("imported %d fragments, store now holds %d\n", len(fragments), store.Len())
			return nil
		},
	}
}

// #endregion memory-import

// #region memory-list

func newMemoryListCmd() *cobra.Command {
	var (
		layer   string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored fragments",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			var rows []memory.Fragment
			for _, f := range store.All() {
				if layer != "" && f.Layer != memory.Layer(layer) {
					continue
				}
				rows = append(rows, f)
			}

			if jsonOut {
				return printJSON(rows)
			}
			fmt.Printf("%-14s  %-10s  %6s  %-12s  %s\n", "ID", "Layer", "Weight", "Tone", "Name")
			for _, f := range rows {
				fmt.Printf("%-14s  %-10s  %6.2f  %-12s  %s\n",
					f.ID, f.Layer, f.Weight, f.EmotionalTone, f.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layer, "layer", "", "filter to one layer")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion memory-list

// #region memory-remove

// newMemoryRemoveCmd deletes one fragment and severs its association links.
func newMemoryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [fragment-id]",
		Short: "Delete a fragment and sever its links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			graph, err := linkage.NewGraph(store.DB())
			if err != nil {
				return err
			}
			if err := store.RemoveFragment(args[0]); err != nil {
				return err
			}
			if err := graph.Sever(args[0]); err != nil {
				return fmt.Errorf("sever links for %s: %w", args[0], err)
			}
			fmt.Printf("removed %s, store now holds %d\n", args[0], store.Len())
			return nil
		},
	}
}

// #endregion memory-remove

// #region memory-links

// newMemoryLinksCmd walks the association graph from one fragment.
func newMemoryLinksCmd() *cobra.Command {
	var (
		depth     int
		minWeight float64
		maxNodes  int
	)
	cmd := &cobra.Command{
		Use:   "links [fragment-id]",
		Short: "Walk the co-retrieval association graph from a fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			graph, err := linkage.NewGraph(store.DB())
			if err != nil {
				return err
			}
			result, err := graph.Walk(args[0], depth, minWeight, maxNodes)
			if err != nil {
				return err
			}
			if len(result.IDs) == 1 {
				fmt.Printf("%s has no associations above weight %.2f\n", args[0], minWeight)
				return nil
			}
			for i, id := range result.IDs {
				name := ""
				if f, ok := store.Get(id); ok {
					name = f.Name
				}
				fmt.Printf("%-14s  %6.3f  %s\n", id, result.Scores[i], name)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 3, "max hops from the entry fragment")
	cmd.Flags().Float64Var(&minWeight, "min-weight", 0.1, "minimum link weight to follow")
	cmd.Flags().IntVar(&maxNodes, "max", 10, "max fragments in the walk")
	return cmd
}

// #endregion memory-links

// #region memory-decay

// newMemoryDecayCmd ages the association graph. Links halve in weight every
// half-life and are dropped once they fall below 0.01.
func newMemoryDecayCmd() *cobra.Command {
	var halfLife float64
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Apply time decay to association link weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.Open(cfg.MemoryDBPath, logger)
			defer store.Close()

			graph, err := linkage.NewGraph(store.DB())
			if err != nil {
				return err
			}
			dropped, err := graph.Decay(halfLife)
			if err != nil {
				return fmt.Errorf("decay links: %w", err)
			}
			fmt.Printf("decayed link weights (half-life %.0fh), dropped %d stale links\n", halfLife, dropped)
			return nil
		},
	}
	cmd.Flags().Float64Var(&halfLife, "half-life", 168, "half-life in hours")
	return cmd
}

// #endregion memory-decay
