// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches and parses results from the arXiv Atom API.
package arxiv

import "time"

// Paper is one arXiv entry as returned by the API, with text fields
// cleaned. Optional fields are empty strings when arXiv omits them.
type Paper struct {
	ID         string
	Title      string
	Authors    []string
	Abstract   string
	Submitted  time.Time
	Updated    time.Time
	Categories []string
	PDFURL     string
	AbsURL     string
	JournalRef string
	DOI        string
	Comment    string
}
