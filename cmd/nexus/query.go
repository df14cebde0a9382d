package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// #region query

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [text]",
		Short: "Run one query through the pipeline and print the cycle as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := wireEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := eng.ProcessQuery(cmd.Context(), strings.Join(args, " "), nil)
			if err != nil {
				return err
			}
			return printJSON(toCycleView(res))
		},
	}
}

// #endregion query
