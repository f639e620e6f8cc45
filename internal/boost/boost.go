// Package boost applies content-based and source-based confidence
// multipliers to raw lookup results. It never touches the provider authority
// weight: that belongs to the ranker alone.
package boost

import (
	"strings"

	"go.uber.org/zap"

	"github.com/lexhulp/lookup-cli/internal/config"
	"github.com/lexhulp/lookup-cli/internal/legalref"
	"github.com/lexhulp/lookup-cli/internal/model"
)

// Pipeline computes boosted confidences. Safe for concurrent use: all state
// is immutable after construction.
type Pipeline struct {
	cfg           config.BoostConfig
	gate          config.QualityGateConfig
	keywords      []string
	authoritative map[string]bool
}

// New builds a pipeline from the boost table, the quality-gate settings, the
// flattened domain keyword list, and the provider registry entries (for the
// is-authoritative flags).
func New(cfg config.BoostConfig, gate config.QualityGateConfig, keywords []string, providers []model.ProviderConfig) *Pipeline {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	auth := make(map[string]bool, len(providers))
	for _, p := range providers {
		auth[p.Name] = p.Authoritative
	}
	return &Pipeline{cfg: cfg, gate: gate, keywords: lowered, authoritative: auth}
}

// Apply boosts a single result. Every applied multiplier is recorded on the
// BoostedResult.
func (p *Pipeline) Apply(r model.LookupResult, contextTokens []string) model.BoostedResult {
	lowSnippet := strings.ToLower(r.Snippet)

	var factors []model.BoostFactor
	multiplier := 1.0

	if m := p.keywordBoost(lowSnippet); m > 1 {
		factors = append(factors, model.BoostFactor{Name: "keywords", Multiplier: m})
		multiplier *= m
	}
	if m := p.articleRefBoost(r.Snippet); m > 1 {
		factors = append(factors, model.BoostFactor{Name: "article_refs", Multiplier: m})
		multiplier *= m
	}
	if m := p.contextBoost(lowSnippet, contextTokens); m > 1 {
		factors = append(factors, model.BoostFactor{Name: "context", Multiplier: m})
		multiplier *= m
	}
	if name, m := p.authorityBoost(r.Provider, r.Raw); m > 1 {
		factors = append(factors, model.BoostFactor{Name: name, Multiplier: m})
		multiplier *= m
	}

	boosted := model.NewBoostedConfidence(float64(r.Raw) * multiplier)
	if len(factors) > 0 {
		zap.L().Debug("boost: applied factors",
			zap.String("provider", r.Provider),
			zap.Float64("raw", float64(r.Raw)),
			zap.Float64("boosted", float64(boosted)),
			zap.Int("factors", len(factors)),
		)
	}

	return model.BoostedResult{
		LookupResult: r,
		Boosted:      boosted,
		Factors:      factors,
	}
}

// ApplyAll boosts a batch of results.
func (p *Pipeline) ApplyAll(results []model.LookupResult, contextTokens []string) []model.BoostedResult {
	out := make([]model.BoostedResult, len(results))
	for i, r := range results {
		out[i] = p.Apply(r, contextTokens)
	}
	return out
}

// keywordBoost rewards distinct domain keywords in the snippet, capped.
func (p *Pipeline) keywordBoost(lowSnippet string) float64 {
	var hits int
	for _, k := range p.keywords {
		if strings.Contains(lowSnippet, k) {
			hits++
		}
	}
	if hits == 0 {
		return 1
	}
	m := 1 + float64(hits)*p.cfg.KeywordIncrement
	if m > p.cfg.KeywordCap {
		m = p.cfg.KeywordCap
	}
	return m
}

// articleRefBoost rewards statute-article and ECLI references, per distinct
// match. Not capped: structural references are the strongest relevance
// signal a snippet can carry.
func (p *Pipeline) articleRefBoost(snippet string) float64 {
	n := legalref.Count(snippet)
	if n == 0 {
		return 1
	}
	return 1 + float64(n)*p.cfg.ArticleRefIncrement
}

// contextBoost rewards overlap with the caller's context tokens, capped.
func (p *Pipeline) contextBoost(lowSnippet string, contextTokens []string) float64 {
	var hits int
	for _, tok := range contextTokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" && strings.Contains(lowSnippet, tok) {
			hits++
		}
	}
	if hits == 0 {
		return 1
	}
	m := 1 + float64(hits)*p.cfg.ContextIncrement
	if m > p.cfg.ContextCap {
		m = p.cfg.ContextCap
	}
	return m
}

// authorityBoost applies the source-type boost for authoritative providers.
// When the quality gate is enabled and the raw confidence falls below the
// minimum base score, the nominal factor is interpolated toward 1.0 so that
// authority cannot substitute for relevance.
func (p *Pipeline) authorityBoost(providerName string, raw model.RawConfidence) (string, float64) {
	if !p.authoritative[providerName] {
		return "", 1
	}
	nominal := p.cfg.AuthorityBoost
	if p.gate.Enabled && float64(raw) < p.gate.MinBaseScore {
		return "authority_gated", 1 + (nominal-1)*p.gate.ReductionFactor
	}
	return "authority", nominal
}
