// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-aggregator/internal/search"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List papers from the last N months",
	Long: `Recent lists papers submitted to arXiv or approved on SSRN within the last
--months months (30 days each), across every subject area.`,
	RunE: runRecent,
}

func init() {
	addOutputFlags(recentCmd)
	recentCmd.Flags().Int("months", 0, "number of months to look back (required)")
	_ = recentCmd.MarkFlagRequired("months")

	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	months, _ := cmd.Flags().GetInt("months")
	source, _ := cmd.Flags().GetString("source")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	format, _ := cmd.Flags().GetString("format")
	savePath, _ := cmd.Flags().GetString("save")

	req := search.RecentRequest{MonthsBack: months, Source: source, MaxResults: maxResults}
	resp, err := a.orchestrator.Recent(cmd.Context(), req)
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := search.WriteQueryFile(savePath, search.RecentParams(req), resp.Result, time.Now()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved query file:", savePath)
	}
	return writeOutput(cmd.OutOrStdout(), format, resp, resp.Result)
}
