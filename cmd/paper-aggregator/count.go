// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-aggregator/internal/search"
)

var countCmd = &cobra.Command{
	Use:   "count [query...]",
	Short: "Report how many papers each source holds for a query",
	Long: `Count asks every source that can report a total (currently arXiv) how
many papers match the query, without downloading them.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCount,
}

func init() {
	countCmd.Flags().String("source", "all", "sources to query: all, arxiv, ssrn")
	countCmd.Flags().String("author", "", "restrict the count to papers by this author")
	countCmd.Flags().String("format", formatTable, "output format: table, json")

	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	source, _ := cmd.Flags().GetString("source")
	author, _ := cmd.Flags().GetString("author")
	format, _ := cmd.Flags().GetString("format")

	resp, err := a.orchestrator.Count(cmd.Context(), search.SearchRequest{
		Query:  strings.Join(args, " "),
		Author: author,
		Source: source,
	})
	if err != nil {
		return err
	}
	return writeCount(cmd.OutOrStdout(), format, resp)
}

func writeCount(w io.Writer, format string, resp *search.CountResponse) error {
	switch format {
	case formatJSON:
		return search.FormatJSON(resp, w)
	case formatTable, "":
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tTOTAL")
	for _, name := range slices.Sorted(maps.Keys(resp.Totals)) {
		fmt.Fprintf(tw, "%s\t%d\n", name, resp.Totals[name])
	}
	tw.Flush()

	for _, name := range slices.Sorted(maps.Keys(resp.SourceErrors)) {
		fmt.Fprintf(w, "warning: %s failed: %s\n", name, resp.SourceErrors[name])
	}
	return nil
}

