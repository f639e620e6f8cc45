package provider

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexhulp/lookup-cli/internal/legalref"
	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/pkg/rechtspraak"
)

// Rechtspraak looks up terms in published Dutch case law.
type Rechtspraak struct {
	client  rechtspraak.Client
	limiter *rate.Limiter
}

// NewRechtspraak creates the case-law adapter.
func NewRechtspraak(client rechtspraak.Client, limiter *rate.Limiter) *Rechtspraak {
	return &Rechtspraak{client: client, limiter: limiter}
}

// Name implements Provider.
func (r *Rechtspraak) Name() string { return "rechtspraak" }

// Lookup implements Provider.
func (r *Rechtspraak) Lookup(ctx context.Context, q Query) ([]model.LookupResult, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	decisions, err := r.client.Search(ctx, q.QueryString, q.MaxResults)
	if err != nil {
		return nil, err
	}

	results := make([]model.LookupResult, 0, len(decisions))
	for i, d := range decisions {
		if d.Summary == "" {
			// Decisions without a summary give the prompt layer
			// nothing to quote.
			continue
		}
		snippet := truncateSnippet(d.Summary, snippetMax)
		eclis := legalref.ECLIs(snippet)
		if d.ECLI != "" {
			eclis = append([]string{d.ECLI}, eclis...)
		}
		results = append(results, model.LookupResult{
			Provider:  r.Name(),
			Raw:       rawFor(q, i, d.Title, snippet),
			Title:     d.Title,
			Snippet:   snippet,
			SourceURL: d.Link,
			Stage:     q.Stage,
			Metadata: model.Metadata{
				Identifier:   d.ECLI,
				References:   legalref.Articles(snippet),
				ECLIs:        dedupeStrings(eclis),
				Jurisdiction: "nl",
			},
		})
	}

	zap.L().Debug("rechtspraak: lookup complete",
		zap.String("query", q.QueryString),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
