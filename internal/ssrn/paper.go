// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ssrn fetches, filters, and parses papers from the SSRN content API.
package ssrn

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format of SSRN approval dates (e.g. "11 Jun 2025").
const DateLayout = "2 Jan 2006"

// Paper is one SSRN paper with text fields cleaned. Approved is nil when
// SSRN sent no parseable approval date.
type Paper struct {
	ID                string
	Title             string
	Authors           []string
	Approved          *time.Time
	Downloads         int
	URL               string
	Affiliations      []string
	AbstractType      string
	PublicationStatus string
	IsPaid            bool
	PageCount         int
	IsApproved        bool
	Reference         string
}

// rawPaper mirrors one element of the "papers" array.
type rawPaper struct {
	ID                flexString      `json:"id"`
	Title             string          `json:"title"`
	Authors           json.RawMessage `json:"authors"`
	ApprovedDate      string          `json:"approved_date"`
	Downloads         flexInt         `json:"downloads"`
	URL               string          `json:"url"`
	Affiliations      json.RawMessage `json:"affiliations"`
	AbstractType      string          `json:"abstract_type"`
	PublicationStatus string          `json:"publication_status"`
	IsPaid            bool            `json:"is_paid"`
	PageCount         flexInt         `json:"page_count"`
	IsApproved        *bool           `json:"is_approved"`
	Reference         string          `json:"reference"`
}

type rawAuthor struct {
	ID        flexString `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
}

type envelope struct {
	Papers []json.RawMessage `json:"papers"`
}

// approved parses the approval date, reporting false when it is absent or
// malformed.
func (r rawPaper) approved() (time.Time, bool) {
	s := strings.TrimSpace(r.ApprovedDate)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// authorNames returns display names for the authors field, which SSRN
// sends as a list of objects, a list of strings, or a single string.
func (r rawPaper) authorNames() ([]string, error) {
	data := bytes.TrimSpace(r.Authors)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, err
			}
			names = append(names, s)
			continue
		}
		var a rawAuthor
		if err := json.Unmarshal(item, &a); err != nil {
			return nil, err
		}
		names = append(names, a.displayName())
	}
	return names, nil
}

func (a rawAuthor) displayName() string {
	first, last := strings.TrimSpace(a.FirstName), strings.TrimSpace(a.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case last != "":
		return last
	case first != "":
		return first
	}
	return string(a.ID)
}

// affiliationNames accepts a string, a list of strings, or a list of
// objects naming an institution.
func (r rawPaper) affiliationNames() []string {
	data := bytes.TrimSpace(r.Affiliations)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		return []string{one}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	var names []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			names = append(names, s)
			continue
		}
		var obj struct {
			Institution string `json:"institution"`
			University  string `json:"university"`
			Name        string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			for _, n := range []string{obj.Institution, obj.University, obj.Name} {
				if n != "" {
					names = append(names, n)
					break
				}
			}
		}
	}
	return names
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}
