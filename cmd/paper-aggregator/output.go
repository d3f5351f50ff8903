// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-aggregator/internal/search"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSL   = "csl"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "all", "sources to query: all, arxiv, ssrn")
	cmd.Flags().Int("max-results", 0, "maximum number of papers to return (default from config)")
	cmd.Flags().String("format", formatTable, "output format: table, json, csl")
	cmd.Flags().String("save", "", "save the query and results to a YAML query file")
}

// writeOutput renders resp in format. JSON emits the full response; table
// and csl render the paper list.
func writeOutput(w io.Writer, format string, resp any, res search.Result) error {
	switch format {
	case formatTable, "":
		search.FormatTable(res, w)
		return nil
	case formatJSON:
		return search.FormatJSON(resp, w)
	case formatCSL:
		return search.FormatCSL(res.Papers, w)
	}
	return fmt.Errorf("unknown format %q (want table, json, or csl)", format)
}
