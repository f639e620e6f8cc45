package model

// Confidence values move through three one-way stages: an adapter assigns a
// RawConfidence, the boost pipeline produces a BoostedConfidence, and the
// ranker turns that into a FinalScore. Each stage is a distinct type so the
// provider authority weight cannot be applied twice: only Finalize consumes
// a weight, and nothing accepts a FinalScore as input.

// RawConfidence is the [0,1] match confidence assigned once by a provider
// adapter, before any boosting or weighting.
type RawConfidence float64

// NewRawConfidence clamps v to [0,1].
func NewRawConfidence(v float64) RawConfidence {
	return RawConfidence(clamp01(v))
}

// Discount scales the confidence down for an intrinsically lower-quality
// query strategy (wildcard fallback, weighted synonym). It is the only
// permitted mutation of a raw confidence, and only its own adapter may
// apply it.
func (r RawConfidence) Discount(factor float64) RawConfidence {
	if factor >= 1 || factor < 0 {
		return r
	}
	return RawConfidence(clamp01(float64(r) * factor))
}

// BoostedConfidence is a raw confidence after the content and source boost
// multipliers, clamped to [0,1]. Produced only by the boost pipeline.
type BoostedConfidence float64

// NewBoostedConfidence clamps v to [0,1].
func NewBoostedConfidence(v float64) BoostedConfidence {
	return BoostedConfidence(clamp01(v))
}

// FinalScore is provider authority weight times boosted confidence. It is
// computed exactly once per result, by the ranker, through Finalize.
type FinalScore float64

// Finalize applies the provider authority weight to a boosted confidence.
// This is the sole constructor of FinalScore.
func Finalize(weight float64, c BoostedConfidence) FinalScore {
	if weight < 0 {
		weight = 0
	}
	return FinalScore(weight * float64(c))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
