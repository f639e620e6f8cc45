package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/pkg/jina"
	"github.com/lexhulp/lookup-cli/pkg/mediawiki"
	"github.com/lexhulp/lookup-cli/pkg/rechtspraak"
	"github.com/lexhulp/lookup-cli/pkg/sru"
)

type fakeProvider struct{ name string }

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Lookup(context.Context, Query) ([]model.LookupResult, error) {
	return nil, nil
}

func TestRegistry_ClosedSet(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeProvider{name: "a"}, &fakeProvider{name: "b"})

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.NotNil(t, r.Get("a"))
	assert.Nil(t, r.Get("unknown"))
}

func TestBaseConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		term    string
		title   string
		snippet string
		want    float64
	}{
		{"exact title", "dwaling", "Dwaling", "iets", 0.95},
		{"title contains", "dwaling", "Dwaling (recht)", "iets", 0.80},
		{"snippet contains", "dwaling", "Wilsgebreken", "over dwaling gaat dit", 0.65},
		{"no match", "dwaling", "Bedrog", "iets anders", 0.45},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, baseConfidence(tt.term, tt.title, tt.snippet), 1e-9)
		})
	}
}

func TestRawFor_RankDecayAndDiscount(t *testing.T) {
	t.Parallel()

	q := Query{Term: "dwaling"}
	first := rawFor(q, 0, "Dwaling", "")
	third := rawFor(q, 2, "Dwaling", "")
	assert.InDelta(t, 0.95, float64(first), 1e-9)
	assert.InDelta(t, 0.85, float64(third), 1e-9)

	// A synonym stage applies its weight as an intrinsic discount.
	discounted := rawFor(Query{Term: "dwaling", Discount: 0.8}, 0, "Dwaling", "")
	assert.InDelta(t, 0.76, float64(discounted), 1e-9)
}

type fakeMediaWiki struct {
	pages []mediawiki.Page
	err   error
}

func (f *fakeMediaWiki) SearchExtracts(context.Context, string, int) ([]mediawiki.Page, error) {
	return f.pages, f.err
}

func TestWikipedia_Lookup(t *testing.T) {
	t.Parallel()

	client := &fakeMediaWiki{pages: []mediawiki.Page{
		{PageID: 1, Title: "Dwaling", Extract: "Dwaling is een wilsgebrek in de zin van artikel 6:228 BW.", Index: 1},
		{PageID: 2, Title: "Leeg", Extract: "", Index: 2},
	}}

	p := NewWikipedia(client, "nl", nil)
	results, err := p.Lookup(context.Background(), Query{
		Term: "dwaling", QueryString: "dwaling", Stage: "term_only", MaxResults: 5,
	})

	require.NoError(t, err)
	require.Len(t, results, 1) // empty extract skipped

	r := results[0]
	assert.Equal(t, "wikipedia", r.Provider)
	assert.Equal(t, "term_only", r.Stage)
	assert.InDelta(t, 0.95, float64(r.Raw), 1e-9)
	assert.Equal(t, "https://nl.wikipedia.org/wiki/Dwaling", r.SourceURL)
	assert.Equal(t, []string{"artikel 6:228 BW"}, r.Metadata.References)
	assert.Equal(t, "nl", r.Metadata.Jurisdiction)
}

type fakeSRU struct {
	resp *sru.Response
	err  error
	last sru.Query
}

func (f *fakeSRU) SearchRetrieve(_ context.Context, q sru.Query) (*sru.Response, error) {
	f.last = q
	return f.resp, f.err
}

func sruRecord(inner string) sru.Record {
	return sru.Record{Data: sru.RecordData{Inner: []byte(inner)}}
}

func TestSRU_Lookup(t *testing.T) {
	t.Parallel()

	client := &fakeSRU{resp: &sru.Response{
		NumberOfRecords: 1,
		Records: []sru.Record{sruRecord(`
			<data>
				<title>Burgerlijk Wetboek Boek 6</title>
				<identifier>BWBR0005289</identifier>
				<abstract>Verbintenissenrecht; zie artikel 6:162 BW.</abstract>
				<preferredUrl>https://wetten.overheid.nl/BWBR0005289</preferredUrl>
			</data>`)},
	}}

	p := NewWetten(client, nil)
	results, err := p.Lookup(context.Background(), Query{
		Term: "onrechtmatige daad", QueryString: "onrechtmatige daad", Stage: "term_only", MaxResults: 10,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wetten", results[0].Provider)
	assert.Equal(t, "BWBR0005289", results[0].Metadata.Identifier)
	assert.Equal(t, "https://wetten.overheid.nl/BWBR0005289", results[0].SourceURL)
	assert.Equal(t, "nl", results[0].Metadata.Jurisdiction)
	assert.Contains(t, client.last.CQL, `cql.serverChoice any "onrechtmatige daad"`)
}

func TestSRU_DiagnosticIsEmptyNotError(t *testing.T) {
	t.Parallel()

	client := &fakeSRU{resp: &sru.Response{
		Diagnostics: []sru.Diagnostic{{URI: "info:srw/diagnostic/1/10", Message: "syntax"}},
	}}

	p := NewTuchtrecht(client, nil)
	results, err := p.Lookup(context.Background(), Query{Term: "x", QueryString: "x"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

type fakeRechtspraak struct {
	decisions []rechtspraak.Decision
	err       error
}

func (f *fakeRechtspraak) Search(context.Context, string, int) ([]rechtspraak.Decision, error) {
	return f.decisions, f.err
}

func TestRechtspraak_Lookup(t *testing.T) {
	t.Parallel()

	client := &fakeRechtspraak{decisions: []rechtspraak.Decision{
		{
			ECLI:    "ECLI:NL:HR:2019:1278",
			Title:   "ECLI:NL:HR:2019:1278, Hoge Raad",
			Summary: "Onrechtmatige daad. Relativiteit, artikel 6:163 BW.",
			Link:    "https://deeplink.rechtspraak.nl/uitspraak?id=ECLI:NL:HR:2019:1278",
		},
		{ECLI: "ECLI:NL:HR:2020:1", Title: "zonder samenvatting"},
	}}

	p := NewRechtspraak(client, nil)
	results, err := p.Lookup(context.Background(), Query{
		Term: "onrechtmatige daad", QueryString: "onrechtmatige daad", MaxResults: 5,
	})

	require.NoError(t, err)
	require.Len(t, results, 1) // summary-less decision skipped
	assert.Equal(t, "ECLI:NL:HR:2019:1278", results[0].Metadata.Identifier)
	assert.Equal(t, []string{"ECLI:NL:HR:2019:1278"}, results[0].Metadata.ECLIs)
	assert.Equal(t, []string{"artikel 6:163 BW"}, results[0].Metadata.References)
}

type fakeJina struct {
	resp *jina.SearchResponse
	err  error
}

func (f *fakeJina) Search(context.Context, string, ...jina.SearchOption) (*jina.SearchResponse, error) {
	return f.resp, f.err
}

func TestWebSearch_Lookup_CapsConfidence(t *testing.T) {
	t.Parallel()

	client := &fakeJina{resp: &jina.SearchResponse{Code: 200, Data: []jina.SearchResult{
		{Title: "Dwaling", URL: "https://www.judex.nl/dwaling", Content: "Dwaling is een wilsgebrek."},
	}}}

	p := NewWebSearch(client, nil)
	results, err := p.Lookup(context.Background(), Query{
		Term: "dwaling", QueryString: "dwaling betekenis", MaxResults: 3,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	// Exact title match would be 0.95, but web hits are capped.
	assert.InDelta(t, webSearchCeiling, float64(results[0].Raw), 1e-9)
}
