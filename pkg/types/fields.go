// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// FieldDescription documents one serialized Paper field.
type FieldDescription struct {
	Name        string
	Description string
}

var fieldDescriptions = []FieldDescription{
	{"id", "Source-native identifier (arXiv ID or SSRN abstract ID)"},
	{"title", "Paper title with HTML removed and whitespace collapsed"},
	{"authors", "Author names in source order"},
	{"source", "Source name, or a list of source names when the paper was found in several sources"},
	{"source_urls", "Map of source name to URL, present only for papers merged from several sources"},
	{"url", "Abstract page URL of the primary record"},
	{"publication_date", "Primary date used for sorting (arXiv submission date, SSRN approval date)"},
	{"submitted_date", "Date the paper was first submitted (arXiv)"},
	{"published_date", "Date the paper was published or approved (SSRN)"},
	{"updated_date", "Date of the latest revision (arXiv)"},
	{"effective_date", "Latest of submitted_date, published_date and updated_date, falling back to publication_date"},
	{"abstract", "Paper abstract (arXiv)"},
	{"categories", "Subject categories (arXiv)"},
	{"pdf_url", "Direct PDF link (arXiv)"},
	{"journal_ref", "Journal reference (arXiv journal_ref, SSRN reference)"},
	{"doi", "Digital Object Identifier (arXiv)"},
	{"download_count", "Number of downloads (SSRN)"},
	{"affiliations", "Author institutional affiliations (SSRN)"},
	{"page_count", "Number of pages (SSRN)"},
	{"comments", "Author comments such as page counts or venue notes (arXiv)"},
	{"abstract_type", "Abstract type label (SSRN)"},
	{"publication_status", "Publication status label (SSRN)"},
	{"is_paid", "Whether the paper requires payment (SSRN)"},
	{"is_approved", "Whether the paper is approved for distribution (SSRN)"},
}

// FieldDescriptions returns the documented Paper fields in serialization order.
func FieldDescriptions() []FieldDescription {
	return append([]FieldDescription(nil), fieldDescriptions...)
}

// FieldDescriptionsMarkdown renders the field descriptions as a Markdown list,
// suitable for tool descriptions.
func FieldDescriptionsMarkdown() string {
	var b strings.Builder
	for _, f := range fieldDescriptions {
		fmt.Fprintf(&b, "- `%s`: %s\n", f.Name, f.Description)
	}
	return b.String()
}
