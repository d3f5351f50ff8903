// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// FormatTable writes results as a human-readable table to w, followed by
// a summary line and any per-source errors.
func FormatTable(res Result, w io.Writer) {
	if len(res.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
	} else {
		fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-10s  %s\n",
			"Rank", "Title", "Authors", "Date", "Source")
		fmt.Fprintln(w, strings.Repeat("-", 110))

		for i, p := range res.Papers {
			date := ""
			if p.PublicationDate != nil {
				date = p.PublicationDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-10s  %s\n",
				i+1, truncate(p.Title, 60), formatAuthors(p.Authors), date, p.Source)
		}

		fmt.Fprintf(w, "\n%d results", res.TotalFound)
		if res.TotalBeforeLimit > res.TotalFound {
			fmt.Fprintf(w, " of %d", res.TotalBeforeLimit)
		}
		if res.DuplicatesRemoved > 0 {
			fmt.Fprintf(w, " (%d duplicates removed)", res.DuplicatesRemoved)
		}
		fmt.Fprintln(w)
	}

	names := make([]string, 0, len(res.SourceErrors))
	for name := range res.SourceErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "warning: %s failed: %s\n", name, res.SourceErrors[name])
	}
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
