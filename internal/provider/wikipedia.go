package provider

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexhulp/lookup-cli/internal/legalref"
	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/pkg/mediawiki"
)

const snippetMax = 600

// Wikipedia looks up terms on a MediaWiki encyclopedia.
type Wikipedia struct {
	client   mediawiki.Client
	language string
	limiter  *rate.Limiter
}

// NewWikipedia creates the wikipedia adapter.
func NewWikipedia(client mediawiki.Client, language string, limiter *rate.Limiter) *Wikipedia {
	return &Wikipedia{client: client, language: language, limiter: limiter}
}

// Name implements Provider.
func (w *Wikipedia) Name() string { return "wikipedia" }

// Lookup implements Provider.
func (w *Wikipedia) Lookup(ctx context.Context, q Query) ([]model.LookupResult, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	pages, err := w.client.SearchExtracts(ctx, q.QueryString, q.MaxResults)
	if err != nil {
		return nil, err
	}

	results := make([]model.LookupResult, 0, len(pages))
	for i, p := range pages {
		if p.Extract == "" {
			continue
		}
		snippet := truncateSnippet(p.Extract, snippetMax)
		results = append(results, model.LookupResult{
			Provider:  w.Name(),
			Raw:       rawFor(q, i, p.Title, p.Extract),
			Title:     p.Title,
			Snippet:   snippet,
			SourceURL: mediawiki.PageURL(w.language, p.Title),
			Stage:     q.Stage,
			Metadata: model.Metadata{
				Identifier:   p.Title,
				References:   legalref.Articles(snippet),
				ECLIs:        legalref.ECLIs(snippet),
				Jurisdiction: "nl",
			},
		})
	}

	zap.L().Debug("wikipedia: lookup complete",
		zap.String("query", q.QueryString),
		zap.Int("results", len(results)),
	)
	return results, nil
}
