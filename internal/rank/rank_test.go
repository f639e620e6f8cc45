package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexhulp/lookup-cli/internal/model"
)

func testRanker() *Ranker {
	return New([]model.ProviderConfig{
		{Name: "wetten", Weight: 1.2, MinScore: 0.2},
		{Name: "wikipedia", Weight: 0.85, MinScore: 0.15},
		{Name: "eurlex", Weight: 1.0, MinScore: 0.2},
		{Name: "websearch", Weight: 0.7, MinScore: 0.25},
	})
}

func boosted(provider string, confidence float64, sourceURL string) model.BoostedResult {
	return model.BoostedResult{
		LookupResult: model.LookupResult{
			Provider:  provider,
			Snippet:   "snippet for " + sourceURL,
			SourceURL: sourceURL,
		},
		Boosted: model.NewBoostedConfidence(confidence),
	}
}

func TestRank_WeightAppliedExactlyOnce(t *testing.T) {
	t.Parallel()

	r := testRanker()
	got := r.Rank([]model.BoostedResult{
		boosted("wikipedia", 0.80, "https://nl.wikipedia.org/wiki/Dwaling"),
	}, model.LookupRequest{MaxResults: 5})

	require.Len(t, got, 1)
	// 0.80 × 0.85, not 0.80 × 0.85².
	assert.InDelta(t, 0.68, float64(got[0].Final), 1e-9)
	assert.InDelta(t, 0.85, got[0].Weight, 1e-9)
}

func TestRank_SortsDescendingAndTruncates(t *testing.T) {
	t.Parallel()

	r := testRanker()
	got := r.Rank([]model.BoostedResult{
		boosted("websearch", 0.9, "https://a.example"),
		boosted("wetten", 0.8, "https://wetten.overheid.nl/b"),
		boosted("wikipedia", 0.9, "https://nl.wikipedia.org/wiki/c"),
	}, model.LookupRequest{MaxResults: 2})

	require.Len(t, got, 2)
	assert.Equal(t, "wetten", got[0].Provider)    // 0.96
	assert.Equal(t, "wikipedia", got[1].Provider) // 0.765
}

func TestRank_MinScoreFilter(t *testing.T) {
	t.Parallel()

	r := testRanker()
	got := r.Rank([]model.BoostedResult{
		boosted("websearch", 0.3, "https://a.example"), // 0.21 < 0.25
		boosted("websearch", 0.5, "https://b.example"), // 0.35 passes
	}, model.LookupRequest{MaxResults: 5})

	require.Len(t, got, 1)
	assert.Equal(t, "https://b.example", got[0].SourceURL)
}

func TestRank_JurisdictionExclusion(t *testing.T) {
	t.Parallel()

	eu := boosted("eurlex", 0.9, "https://eur-lex.europa.eu/x")
	eu.Metadata.Jurisdiction = "eu"
	nl := boosted("wetten", 0.9, "https://wetten.overheid.nl/y")
	nl.Metadata.Jurisdiction = "nl"

	r := testRanker()
	got := r.Rank([]model.BoostedResult{eu, nl}, model.LookupRequest{
		MaxResults:           5,
		ExcludeJurisdictions: []string{"EU"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "wetten", got[0].Provider)
}

func TestDeduplicate_SameURLKeepsHigherConfidence(t *testing.T) {
	t.Parallel()

	low := boosted("wikipedia", 0.6, "https://www.example.org/dwaling/")
	low.Metadata.References = []string{"artikel 6:228 BW"}
	high := boosted("websearch", 0.8, "https://example.org/dwaling?utm=x")
	high.Metadata.References = []string{"artikel 3:44 BW"}

	r := testRanker()
	got := r.Rank([]model.BoostedResult{low, high}, model.LookupRequest{MaxResults: 5})

	require.Len(t, got, 1)
	assert.Equal(t, "websearch", got[0].Provider)
	assert.InDelta(t, 0.8*0.7, float64(got[0].Final), 1e-9)
	// References from both variants survive the merge.
	assert.ElementsMatch(t, []string{"artikel 3:44 BW", "artikel 6:228 BW"}, got[0].Metadata.References)
}

func TestDeduplicate_ContentHashFallback(t *testing.T) {
	t.Parallel()

	a := model.BoostedResult{
		LookupResult: model.LookupResult{Provider: "wetten", Snippet: "Dwaling  is één  wilsgebrek."},
		Boosted:      model.NewBoostedConfidence(0.7),
	}
	// Same text modulo case, accents, and spacing: one canonical key.
	b := model.BoostedResult{
		LookupResult: model.LookupResult{Provider: "eurlex", Snippet: "DWALING is een wilsgebrek."},
		Boosted:      model.NewBoostedConfidence(0.6),
	}
	other := model.BoostedResult{
		LookupResult: model.LookupResult{Provider: "eurlex", Snippet: "Bedrog is een ander wilsgebrek."},
		Boosted:      model.NewBoostedConfidence(0.6),
	}

	deduped := deduplicate([]model.BoostedResult{a, b, other})
	require.Len(t, deduped, 2)
	assert.Equal(t, "wetten", deduped[0].Provider) // higher-confidence variant kept
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Example.org/Pad/?q=1#frag", "example.org/Pad"},
		{"http://example.org/pad/", "example.org/pad"},
		{"", ""},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeURL(tt.in), tt.in)
	}
}
