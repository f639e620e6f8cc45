package provider

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexhulp/lookup-cli/internal/legalref"
	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/pkg/jina"
)

// WebSearch looks up terms via general web search. Hits are capped below the
// curated sources' confidence: the open web matches well but verifies
// nothing.
type WebSearch struct {
	client  jina.Client
	limiter *rate.Limiter
}

// webSearchCeiling bounds raw confidence for uncurated web hits.
const webSearchCeiling = 0.85

// NewWebSearch creates the web-search adapter.
func NewWebSearch(client jina.Client, limiter *rate.Limiter) *WebSearch {
	return &WebSearch{client: client, limiter: limiter}
}

// Name implements Provider.
func (w *WebSearch) Name() string { return "websearch" }

// Lookup implements Provider.
func (w *WebSearch) Lookup(ctx context.Context, q Query) ([]model.LookupResult, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := w.client.Search(ctx, q.QueryString)
	if err != nil {
		return nil, err
	}

	max := q.MaxResults
	if max <= 0 || max > len(resp.Data) {
		max = len(resp.Data)
	}

	results := make([]model.LookupResult, 0, max)
	for i, hit := range resp.Data[:max] {
		snippet := hit.Content
		if snippet == "" {
			snippet = hit.Description
		}
		if snippet == "" {
			continue
		}
		snippet = truncateSnippet(snippet, snippetMax)

		raw := rawFor(q, i, hit.Title, snippet)
		if float64(raw) > webSearchCeiling {
			raw = model.RawConfidence(webSearchCeiling)
		}

		results = append(results, model.LookupResult{
			Provider:  w.Name(),
			Raw:       raw,
			Title:     hit.Title,
			Snippet:   snippet,
			SourceURL: hit.URL,
			Stage:     q.Stage,
			Metadata: model.Metadata{
				References: legalref.Articles(snippet),
				ECLIs:      legalref.ECLIs(snippet),
			},
		})
	}

	zap.L().Debug("websearch: lookup complete",
		zap.String("query", q.QueryString),
		zap.Int("results", len(results)),
	)
	return results, nil
}
