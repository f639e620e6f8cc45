// Package model defines the request and result types that flow through the
// lookup engine. Results move forward only: adapters produce LookupResults,
// the boost pipeline wraps them into BoostedResults, and the ranker emits
// RankedResults. Nothing mutates an earlier stage's data.
package model

import "time"

// LookupStatus reports how a lookup request concluded.
type LookupStatus string

const (
	// StatusOK means at least one ranked result was returned.
	StatusOK LookupStatus = "ok"
	// StatusNoResults means providers answered but nothing survived the
	// minimum-score and exclusion filters.
	StatusNoResults LookupStatus = "no_results"
	// StatusUnavailable means every enabled provider failed or returned
	// empty across all cascade stages.
	StatusUnavailable LookupStatus = "unavailable"
)

// LookupRequest describes one term lookup.
type LookupRequest struct {
	ID                   string        `json:"id"`
	Term                 string        `json:"term"`
	Context              []string      `json:"context,omitempty"` // ordered domain hints, e.g. "arbeidsrecht"
	MaxResults           int           `json:"max_results"`
	Timeout              time.Duration `json:"timeout"` // aggregate backstop; zero means config default
	ExcludeJurisdictions []string      `json:"exclude_jurisdictions,omitempty"`
}

// Metadata holds structured facts extracted from a result.
type Metadata struct {
	Identifier   string   `json:"identifier,omitempty"` // canonical id, e.g. BWB number or ECLI
	References   []string `json:"references,omitempty"` // statute/article references found in the snippet
	ECLIs        []string `json:"eclis,omitempty"`
	Jurisdiction string   `json:"jurisdiction,omitempty"` // "nl", "eu"
}

// LookupResult is one raw hit from a provider adapter. Raw confidence is set
// once by the adapter; no later component touches it.
type LookupResult struct {
	Provider  string        `json:"provider"`
	Raw       RawConfidence `json:"raw_confidence"`
	Title     string        `json:"title,omitempty"`
	Snippet   string        `json:"snippet"`
	SourceURL string        `json:"source_url,omitempty"`
	Stage     string        `json:"stage,omitempty"` // cascade stage that produced the hit
	Metadata  Metadata      `json:"metadata"`
}

// BoostFactor records one multiplier applied by the boost pipeline.
type BoostFactor struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// BoostedResult is a LookupResult after the boost pipeline, with the full
// record of which factors were applied.
type BoostedResult struct {
	LookupResult
	Boosted BoostedConfidence `json:"boosted_confidence"`
	Factors []BoostFactor     `json:"factors,omitempty"`
}

// RankedResult is the final form returned to callers. Weight is the provider
// authority weight that Finalize consumed, kept for observability.
type RankedResult struct {
	BoostedResult
	Weight float64    `json:"weight"`
	Final  FinalScore `json:"final_score"`
}

// Outcome is the engine's answer to one LookupRequest: an always-present
// (possibly empty) ranked list plus a status, never an error for
// provider-level failures.
type Outcome struct {
	Status  LookupStatus   `json:"status"`
	Results []RankedResult `json:"results"`
	// ProviderErrors lists providers that failed or timed out, for
	// observability only; partial failure is not an error.
	ProviderErrors []string `json:"provider_errors,omitempty"`
}
