package provider

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexhulp/lookup-cli/internal/legalref"
	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/pkg/sru"
)

// SRU adapts one SRU repository (statutes, EU law, disciplinary law) to the
// Provider interface. The three SRU sources share this adapter and differ
// only in endpoint, query index, and jurisdiction tag.
type SRU struct {
	name         string
	client       sru.Client
	queryIndex   string
	recordSchema string
	jurisdiction string
	limiter      *rate.Limiter
}

// NewWetten creates the adapter for the Basiswettenbestand statute
// repository.
func NewWetten(client sru.Client, limiter *rate.Limiter) *SRU {
	return &SRU{
		name:         "wetten",
		client:       client,
		queryIndex:   "cql.serverChoice",
		recordSchema: "gzd",
		jurisdiction: "nl",
		limiter:      limiter,
	}
}

// NewEURLex creates the adapter for the EUR-Lex web service.
func NewEURLex(client sru.Client, limiter *rate.Limiter) *SRU {
	return &SRU{
		name:         "eurlex",
		client:       client,
		queryIndex:   "text",
		jurisdiction: "eu",
		limiter:      limiter,
	}
}

// NewTuchtrecht creates the adapter for the disciplinary-law repository.
func NewTuchtrecht(client sru.Client, limiter *rate.Limiter) *SRU {
	return &SRU{
		name:         "tuchtrecht",
		client:       client,
		queryIndex:   "cql.serverChoice",
		recordSchema: "gzd",
		jurisdiction: "nl",
		limiter:      limiter,
	}
}

// Name implements Provider.
func (s *SRU) Name() string { return s.name }

// Lookup implements Provider. Server diagnostics (rejected queries) are
// treated as an empty result so the cascade advances to the next stage.
func (s *SRU) Lookup(ctx context.Context, q Query) ([]model.LookupResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := s.client.SearchRetrieve(ctx, sru.Query{
		CQL:          sru.Index(s.queryIndex, "any", sru.QuotePhrase(q.QueryString)),
		MaxRecords:   q.MaxResults,
		RecordSchema: s.recordSchema,
	})
	if err != nil {
		return nil, err
	}
	if resp.HasDiagnostics() {
		zap.L().Debug("sru: server diagnostic, treating as empty",
			zap.String("provider", s.name),
			zap.String("query", q.QueryString),
			zap.String("diagnostic", resp.Diagnostics[0].String()),
		)
		return nil, nil
	}

	results := make([]model.LookupResult, 0, len(resp.Records))
	for i, rec := range resp.Records {
		fields := rec.ExtractFields()
		snippet := fields.Abstract
		if snippet == "" {
			snippet = fields.Title
		}
		if snippet == "" {
			continue
		}
		snippet = truncateSnippet(snippet, snippetMax)
		results = append(results, model.LookupResult{
			Provider:  s.name,
			Raw:       rawFor(q, i, fields.Title, snippet),
			Title:     fields.Title,
			Snippet:   snippet,
			SourceURL: fields.PreferredURL,
			Stage:     q.Stage,
			Metadata: model.Metadata{
				Identifier:   fields.Identifier,
				References:   legalref.Articles(snippet),
				ECLIs:        legalref.ECLIs(snippet),
				Jurisdiction: s.jurisdiction,
			},
		})
	}

	zap.L().Debug("sru: lookup complete",
		zap.String("provider", s.name),
		zap.String("query", q.QueryString),
		zap.Int("records", resp.NumberOfRecords),
		zap.Int("results", len(results)),
	)
	return results, nil
}
