// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// CategoryCount is one category and the number of papers carrying it.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryCounts is ordered by count, highest first, then by name. It
// encodes as a JSON object or YAML mapping whose keys keep that order.
type CategoryCounts []CategoryCount

// CategoryBreakdown counts how many papers carry each category.
func CategoryBreakdown(papers []types.Paper) CategoryCounts {
	index := make(map[string]int)
	out := CategoryCounts{}
	for _, p := range papers {
		for _, c := range p.Categories {
			if i, ok := index[c]; ok {
				out[i].Count++
				continue
			}
			index[c] = len(out)
			out = append(out, CategoryCount{Category: c, Count: 1})
		}
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

func (c CategoryCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cc.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(cc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c CategoryCounts) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, cc := range c {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cc.Category},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(cc.Count)})
	}
	return n, nil
}
