// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil cleans the free text returned by source APIs.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	numericRe = regexp.MustCompile(`&#(x[0-9a-fA-F]+|[0-9]+);`)
)

// entities is the set of named entities the sources are known to emit.
var entities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&mdash;", "—",
	"&ndash;", "–",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&lsquo;", "‘",
	"&rsquo;", "’",
)

// CleanHTML strips tags, decodes entities and collapses whitespace.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, "")
	s = entities.Replace(s)
	s = numericRe.ReplaceAllStringFunc(s, decodeNumeric)
	return CollapseSpace(s)
}

func decodeNumeric(ref string) string {
	body := ref[2 : len(ref)-1]
	base := 10
	if body[0] == 'x' {
		body, base = body[1:], 16
	}
	n, err := strconv.ParseInt(body, base, 32)
	if err != nil || n <= 0 {
		return ref
	}
	return string(rune(n))
}

// CollapseSpace replaces whitespace runs with one space and trims the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanList collapses whitespace in every entry and drops empty entries.
// It returns nil when nothing survives.
func CleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if c := CollapseSpace(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Optional returns nil for blank strings and a pointer to the trimmed
// value otherwise.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
