// Package rank deduplicates boosted results across providers and computes
// final scores. This is the only place the provider authority weight is
// applied, exactly once per result, via model.Finalize.
package rank

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lexhulp/lookup-cli/internal/model"
)

// Ranker holds the immutable provider registry entries it needs: authority
// weights and per-provider minimum scores.
type Ranker struct {
	weights   map[string]float64
	minScores map[string]float64
}

// New builds a Ranker from the provider registry entries.
func New(providers []model.ProviderConfig) *Ranker {
	r := &Ranker{
		weights:   make(map[string]float64, len(providers)),
		minScores: make(map[string]float64, len(providers)),
	}
	for _, p := range providers {
		r.weights[p.Name] = p.Weight
		r.minScores[p.Name] = p.MinScore
	}
	return r
}

// Rank deduplicates, weights, filters, sorts, and truncates the boosted
// results for one request.
func (r *Ranker) Rank(results []model.BoostedResult, req model.LookupRequest) []model.RankedResult {
	deduped := deduplicate(results)

	excluded := make(map[string]struct{}, len(req.ExcludeJurisdictions))
	for _, j := range req.ExcludeJurisdictions {
		excluded[strings.ToLower(j)] = struct{}{}
	}

	ranked := make([]model.RankedResult, 0, len(deduped))
	for _, b := range deduped {
		if _, skip := excluded[strings.ToLower(b.Metadata.Jurisdiction)]; skip {
			continue
		}
		weight := r.weights[b.Provider]
		final := model.Finalize(weight, b.Boosted)
		if float64(final) < r.minScores[b.Provider] {
			continue
		}
		ranked = append(ranked, model.RankedResult{
			BoostedResult: b,
			Weight:        weight,
			Final:         final,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Final != ranked[j].Final {
			return ranked[i].Final > ranked[j].Final
		}
		if ranked[i].Provider != ranked[j].Provider {
			return ranked[i].Provider < ranked[j].Provider
		}
		return ranked[i].SourceURL < ranked[j].SourceURL
	})

	if req.MaxResults > 0 && len(ranked) > req.MaxResults {
		ranked = ranked[:req.MaxResults]
	}

	zap.L().Debug("rank: complete",
		zap.Int("in", len(results)),
		zap.Int("deduped", len(deduped)),
		zap.Int("out", len(ranked)),
	)
	return ranked
}

// deduplicate collapses results sharing a canonical key, keeping the variant
// with the higher boosted confidence and merging reference metadata.
func deduplicate(results []model.BoostedResult) []model.BoostedResult {
	seen := make(map[string]int, len(results))
	var out []model.BoostedResult

	for _, b := range results {
		key := canonicalKey(b.LookupResult)
		idx, dup := seen[key]
		if !dup {
			seen[key] = len(out)
			out = append(out, b)
			continue
		}
		if b.Boosted > out[idx].Boosted {
			merged := b
			merged.Metadata.References = unionStrings(b.Metadata.References, out[idx].Metadata.References)
			merged.Metadata.ECLIs = unionStrings(b.Metadata.ECLIs, out[idx].Metadata.ECLIs)
			out[idx] = merged
		} else {
			out[idx].Metadata.References = unionStrings(out[idx].Metadata.References, b.Metadata.References)
			out[idx].Metadata.ECLIs = unionStrings(out[idx].Metadata.ECLIs, b.Metadata.ECLIs)
		}
	}
	return out
}

// canonicalKey identifies equivalent results: the normalized source URL, or
// a content hash of the canonicalized snippet when no URL is present.
func canonicalKey(r model.LookupResult) string {
	if u := normalizeURL(r.SourceURL); u != "" {
		return "url:" + u
	}
	return "hash:" + contentHash(r.Snippet)
}

// normalizeURL lowercases host, strips scheme, "www.", query, fragment, and
// trailing slashes.
func normalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// contentHash canonicalizes text (case fold, diacritic strip, whitespace
// collapse) and hashes it, so equivalent snippets from different stages
// collapse to one key.
func contentHash(text string) string {
	folded, _, err := transform.String(foldMarks, text)
	if err != nil {
		folded = text
	}
	canonical := strings.Join(strings.Fields(strings.ToLower(folded)), " ")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
