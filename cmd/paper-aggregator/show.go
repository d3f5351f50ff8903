// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-aggregator/internal/search"
)

var showCmd = &cobra.Command{
	Use:   "show <query-file>",
	Short: "Print or replay a saved query file",
	Long: `Show prints the results stored in a query file written by --save. With
--replay the stored request is run again against the live sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("format", formatTable, "output format: table, json, csl")
	showCmd.Flags().Bool("replay", false, "rerun the stored query instead of printing stored results")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	qf, err := search.ReadQueryFile(args[0])
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	replay, _ := cmd.Flags().GetBool("replay")

	res := qf.Result()
	if replay {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if res, err = qf.Query.Replay(cmd.Context(), a.orchestrator); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(os.Stderr, "%s query saved %s\n", qf.Query.Operation, qf.Summary.Timestamp.Format("2006-01-02 15:04"))
	}
	return writeOutput(cmd.OutOrStdout(), format, res, res)
}
