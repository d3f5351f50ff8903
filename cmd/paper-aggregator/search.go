// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-aggregator/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search arXiv and SSRN for papers",
	Long: `Search queries arXiv and SSRN for papers matching the query. Papers found
in both sources are merged by title and the list is sorted newest first.
A failing source is reported as a warning; the other sources still answer.
With --author the query may be omitted.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	addOutputFlags(searchCmd)
	searchCmd.Flags().String("author", "", "restrict results to papers by this author")
	searchCmd.Flags().Duration("timeout", 0, "overall time limit for the sources (default none)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	source, _ := cmd.Flags().GetString("source")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	format, _ := cmd.Flags().GetString("format")
	savePath, _ := cmd.Flags().GetString("save")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	author, _ := cmd.Flags().GetString("author")

	req := search.SearchRequest{
		Query:      strings.Join(args, " "),
		Author:     author,
		Source:     source,
		MaxResults: maxResults,
		Timeout:    timeout,
	}
	resp, err := a.orchestrator.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := search.WriteQueryFile(savePath, search.SearchParams(req), resp.Result, time.Now()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved query file:", savePath)
	}
	return writeOutput(cmd.OutOrStdout(), format, resp, resp.Result)
}
