// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-aggregator/pkg/types"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

func arxivPaper(id, title string, date *time.Time) types.Paper {
	return types.Paper{
		ID:              id,
		Title:           title,
		Authors:         []string{"Jane Doe"},
		Source:          types.NewSourceSet(types.SourceArxiv),
		URL:             "http://arxiv.org/abs/" + id,
		PublicationDate: date,
		SubmittedDate:   date,
	}
}

func ssrnPaper(id, title string, date *time.Time) types.Paper {
	return types.Paper{
		ID:              id,
		Title:           title,
		Authors:         []string{"Jane Doe"},
		Source:          types.NewSourceSet(types.SourceSSRN),
		URL:             "https://ssrn.com/abstract=" + id,
		PublicationDate: date,
		PublishedDate:   date,
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Machine Learning in Finance", "machine learning in finance"},
		{"  Machine   Learning: in Finance!  ", "machine learning in finance"},
		{"Deep-Learning (v2)", "deeplearning v2"},
		{"snake_case title", "snake_case title"},
		{"Café Économie", "café économie"},
		{"?!...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleKey(tt.title))
		})
	}
}

func TestTitleKeyIdempotent(t *testing.T) {
	for _, title := range []string{"A  Study: of *Things*", "Économie & Finance", "x_y 42"} {
		once := TitleKey(title)
		assert.Equal(t, once, TitleKey(once))
	}
}

func TestAggregateMergesCaseAndPunctuation(t *testing.T) {
	papers := []types.Paper{
		arxivPaper("2401.00001", "Machine Learning in Finance", day(2024, 1, 10)),
		ssrnPaper("4567890", "machine learning in finance.", day(2024, 1, 5)),
		arxivPaper("2401.00002", "Something Else", day(2023, 6, 1)),
	}

	out, stats := Aggregate(papers, 0)
	require.Len(t, out, 2)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, Method, stats.Method)
	assert.Equal(t, 2, stats.TotalBeforeLimit)

	merged := out[0]
	assert.Equal(t, types.SourceSet{types.SourceArxiv, types.SourceSSRN}, merged.Source)
	assert.Equal(t, map[string]string{
		types.SourceArxiv: "http://arxiv.org/abs/2401.00001",
		types.SourceSSRN:  "https://ssrn.com/abstract=4567890",
	}, merged.SourceURLs)
	assert.Equal(t, "2401.00001", merged.ID)
	assert.Equal(t, types.SourceSet{types.SourceArxiv}, out[1].Source)
	assert.Nil(t, out[1].SourceURLs)
}

func TestAggregateDoesNotModifyInput(t *testing.T) {
	papers := []types.Paper{
		ssrnPaper("1", "Same Title", day(2022, 1, 1)),
		arxivPaper("2", "Same Title", day(2023, 1, 1)),
	}
	_, _ = Aggregate(papers, 0)
	assert.Equal(t, types.SourceSet{types.SourceSSRN}, papers[0].Source)
	assert.Equal(t, types.SourceSet{types.SourceArxiv}, papers[1].Source)
	assert.Nil(t, papers[1].SourceURLs)
}

func TestAggregateMergedMetadata(t *testing.T) {
	a := arxivPaper("2401.00001", "Machine Learning in Finance", day(2024, 1, 10))
	a.DOI = str("10.1234/mlf")
	a.Abstract = str("We apply ML to finance.")
	a.Categories = []string{"q-fin.CP", "cs.LG"}

	s := ssrnPaper("4567890", "Machine Learning in Finance", day(2024, 2, 1))
	downloads := 120
	s.DownloadCount = &downloads
	s.Affiliations = []string{"MIT", "Stanford"}
	s.AbstractType = str("Working Paper")

	out, stats := Aggregate([]types.Paper{a, s}, 20)
	require.Len(t, out, 1)
	assert.Equal(t, 1, stats.DuplicatesRemoved)

	m := out[0]
	// SSRN has the later date so it is the primary.
	assert.Equal(t, "4567890", m.ID)
	assert.Equal(t, "https://ssrn.com/abstract=4567890", m.URL)
	assert.True(t, day(2024, 2, 1).Equal(*m.PublicationDate))
	assert.Equal(t, types.SourceSet{types.SourceArxiv, types.SourceSSRN}, m.Source)
	require.NotNil(t, m.DOI)
	assert.Equal(t, "10.1234/mlf", *m.DOI)
	require.NotNil(t, m.Abstract)
	assert.Equal(t, "We apply ML to finance.", *m.Abstract)
	assert.Equal(t, []string{"q-fin.CP", "cs.LG"}, m.Categories)
	assert.Equal(t, []string{"MIT", "Stanford"}, m.Affiliations)
	require.NotNil(t, m.DownloadCount)
	assert.Equal(t, 120, *m.DownloadCount)
	require.NotNil(t, m.AbstractType)
	assert.Equal(t, "Working Paper", *m.AbstractType)
}

func TestAggregateSortsAndTruncates(t *testing.T) {
	var papers []types.Paper
	for i, year := range []int{2020, 2021, 2022, 2023, 2024} {
		papers = append(papers, arxivPaper(fmt.Sprintf("p%d", i), fmt.Sprintf("Paper %d", year), day(year, 3, 1)))
	}

	out, stats := Aggregate(papers, 3)
	require.Len(t, out, 3)
	assert.Equal(t, 5, stats.TotalBeforeLimit)
	assert.Equal(t, 0, stats.DuplicatesRemoved)
	assert.Equal(t, "Paper 2024", out[0].Title)
	assert.Equal(t, "Paper 2023", out[1].Title)
	assert.Equal(t, "Paper 2022", out[2].Title)
}

func TestAggregateUndatedSortLast(t *testing.T) {
	papers := []types.Paper{
		arxivPaper("a", "Undated One", nil),
		arxivPaper("b", "Dated", day(2020, 1, 1)),
		arxivPaper("c", "Undated Two", nil),
	}
	out, _ := Aggregate(papers, 0)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestAggregateLengthProperty(t *testing.T) {
	papers := []types.Paper{
		arxivPaper("1", "Alpha", day(2024, 1, 1)),
		ssrnPaper("2", "alpha", day(2023, 1, 1)),
		arxivPaper("3", "Beta", day(2022, 1, 1)),
		ssrnPaper("4", "Gamma", day(2021, 1, 1)),
		ssrnPaper("5", "GAMMA!", day(2021, 2, 1)),
		arxivPaper("6", "Delta", day(2020, 1, 1)),
	}
	for _, limit := range []int{0, 1, 2, 4, 10} {
		out, stats := Aggregate(papers, limit)
		assert.Equal(t, len(papers)-stats.DuplicatesRemoved, stats.TotalBeforeLimit)
		want := stats.TotalBeforeLimit
		if limit > 0 && limit < want {
			want = limit
		}
		assert.Len(t, out, want, "limit %d", limit)
	}
}

func TestAggregateGroupsEmptyTitleKeys(t *testing.T) {
	papers := []types.Paper{
		arxivPaper("1", "???", day(2024, 1, 1)),
		ssrnPaper("2", "!!!", day(2024, 1, 1)),
	}
	out, stats := Aggregate(papers, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.True(t, out[0].Source.IsMulti())
}

func TestAggregateOwnOutputIsStable(t *testing.T) {
	papers := []types.Paper{
		arxivPaper("2401.00001", "Machine Learning in Finance", day(2024, 1, 10)),
		ssrnPaper("4567890", "Machine learning in finance", day(2024, 2, 1)),
		arxivPaper("2401.00002", "Volatility Surfaces", day(2023, 6, 1)),
		ssrnPaper("4567891", "Bond Liquidity", nil),
		arxivPaper("2401.00003", "Bond liquidity!", day(2022, 3, 3)),
	}
	first, stats := Aggregate(papers, 0)
	require.Len(t, first, 3)
	require.Equal(t, 2, stats.DuplicatesRemoved)

	second, stats := Aggregate(first, 1000)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, stats.DuplicatesRemoved)
	assert.Equal(t, len(first), stats.TotalBeforeLimit)
}

func TestAggregateEmpty(t *testing.T) {
	out, stats := Aggregate(nil, 10)
	assert.Empty(t, out)
	assert.Equal(t, Stats{Method: Method}, stats)
}

func TestMergeSingleton(t *testing.T) {
	p := arxivPaper("1", "Alone", day(2024, 1, 1))
	assert.Equal(t, p, Merge([]types.Paper{p}))
}

func TestMergeEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { Merge(nil) })
}

func TestMergeSameSourceStaysSingle(t *testing.T) {
	m := Merge([]types.Paper{
		arxivPaper("1", "Twin", day(2024, 1, 1)),
		arxivPaper("2", "Twin", day(2024, 1, 1)),
	})
	assert.Equal(t, types.SourceSet{types.SourceArxiv}, m.Source)
	assert.Nil(t, m.SourceURLs)
	// Ties keep the first member as primary.
	assert.Equal(t, "1", m.ID)
}

func TestMergeThreeSources(t *testing.T) {
	repec := arxivPaper("r1", "Shared Title", day(2023, 1, 1))
	repec.Source = types.NewSourceSet("RePEc")
	repec.URL = "https://ideas.repec.org/r1"

	m := Merge([]types.Paper{
		arxivPaper("a1", "Shared Title", day(2023, 1, 1)),
		ssrnPaper("s1", "Shared Title", day(2022, 1, 1)),
		repec,
	})
	assert.Equal(t, types.SourceSet{types.SourceArxiv, types.SourceSSRN, "RePEc"}, m.Source)
	assert.Len(t, m.SourceURLs, 3)
	assert.Equal(t, "https://ideas.repec.org/r1", m.SourceURLs["RePEc"])
}

func TestMergeKeepsExistingSourceURLs(t *testing.T) {
	premerged := Merge([]types.Paper{
		arxivPaper("a1", "Shared", day(2023, 1, 1)),
		ssrnPaper("s1", "Shared", day(2022, 1, 1)),
	})
	again := Merge([]types.Paper{premerged, arxivPaper("a2", "Shared", day(2021, 1, 1))})
	assert.Equal(t, "http://arxiv.org/abs/a1", again.SourceURLs[types.SourceArxiv])
	assert.Equal(t, "https://ssrn.com/abstract=s1", again.SourceURLs[types.SourceSSRN])
}
