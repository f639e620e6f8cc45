// Package provider defines the adapter interface to the external content
// sources and the closed registry of the six adapters. Adapters perform one
// network call per Lookup, assign raw unweighted confidence, and are
// stateless across calls.
package provider

import (
	"context"
	"strings"

	"github.com/lexhulp/lookup-cli/internal/model"
)

// Query is one cascade stage's request to an adapter: the term, the caller's
// context tokens, and the stage-constructed query string.
type Query struct {
	Term        string
	Context     []string
	QueryString string
	Stage       string
	// Discount scales raw confidence down for an intrinsically
	// lower-quality strategy (e.g. a weighted synonym). Zero means none.
	Discount   float64
	MaxResults int
}

// Provider is the single capability interface all adapters implement.
// Lookup returns raw-confidence results; an empty slice with a nil error
// means "no result". Returned errors are recovered by the cascade and are
// never surfaced to the engine's caller.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, q Query) ([]model.LookupResult, error)
}

// Registry is the closed provider set, populated once at startup. No dynamic
// discovery: lookups are by explicit name against a fixed list.
type Registry struct {
	ordered []Provider
	byName  map[string]Provider
}

// NewRegistry builds a registry from the given adapters, preserving order.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		ordered: providers,
		byName:  make(map[string]Provider, len(providers)),
	}
	for _, p := range providers {
		r.byName[p.Name()] = p
	}
	return r
}

// Get returns the adapter with the given name, or nil.
func (r *Registry) Get(name string) Provider {
	return r.byName[name]
}

// Names returns the adapter names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		names[i] = p.Name()
	}
	return names
}

// baseConfidence estimates how well a single hit matches the queried term,
// from title and snippet text alone. The scale is intentionally coarse: the
// boost pipeline refines it with content signals later.
func baseConfidence(term, title, snippet string) float64 {
	t := strings.ToLower(strings.TrimSpace(term))
	lowTitle := strings.ToLower(title)
	lowSnippet := strings.ToLower(snippet)

	switch {
	case t == "":
		return 0.5
	case lowTitle == t:
		return 0.95
	case strings.Contains(lowTitle, t):
		return 0.80
	case strings.Contains(lowSnippet, t):
		return 0.65
	default:
		return 0.45
	}
}

// rankDecay lowers confidence for lower-ranked hits from the same call.
func rankDecay(confidence float64, rank int) float64 {
	decayed := confidence - 0.05*float64(rank)
	if decayed < 0.05 {
		decayed = 0.05
	}
	return decayed
}

// rawFor combines the base estimate, the hit's rank, and the stage discount
// into the adapter's final raw confidence.
func rawFor(q Query, rank int, title, snippet string) model.RawConfidence {
	raw := model.NewRawConfidence(rankDecay(baseConfidence(q.Term, title, snippet), rank))
	if q.Discount > 0 {
		raw = raw.Discount(q.Discount)
	}
	return raw
}

// truncateSnippet bounds snippet length on a rune boundary.
func truncateSnippet(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
