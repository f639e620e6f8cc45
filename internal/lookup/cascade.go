package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/internal/provider"
)

// cascadeOutcome is what one provider's cascade contributes to the request.
type cascadeOutcome struct {
	results []model.LookupResult
	// errors recovered locally (timeouts, network failures). Observability
	// only: they never fail the request.
	errors []string
	stages int
}

// runCascade executes the stage cascade for one provider: stages strictly in
// order, stopping at the first non-empty stage, a breaker trip, expiry of the
// provider's timeout, or exhaustion. The provider timeout is a single budget
// covering the whole cascade; when it fires, the in-flight call is cancelled
// and the remaining stages are abandoned. Non-timeout adapter errors advance
// the cascade exactly like empty results and are never propagated.
func runCascade(ctx context.Context, p provider.Provider, cfg model.ProviderConfig, stages []Stage, req model.LookupRequest) cascadeOutcome {
	var out cascadeOutcome
	breaker := newStageBreaker(cfg.BreakerThreshold)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			out.errors = append(out.errors, fmt.Sprintf("%s: %v", cfg.Name, err))
			return out
		}
		if !breaker.allow() {
			zap.L().Debug("lookup: circuit breaker tripped, skipping remaining stages",
				zap.String("request_id", req.ID),
				zap.String("provider", cfg.Name),
				zap.Int("stages_run", out.stages),
			)
			return out
		}

		out.stages++
		results, err := p.Lookup(ctx, provider.Query{
			Term:        req.Term,
			Context:     req.Context,
			QueryString: stage.Query,
			Stage:       stage.Name,
			Discount:    stage.Discount,
			MaxResults:  req.MaxResults,
		})
		switch {
		case err != nil && isTimeout(ctx, err):
			out.errors = append(out.errors, fmt.Sprintf("%s/%s: %v", cfg.Name, stage.Name, err))
			zap.L().Warn("lookup: provider timed out, abandoning cascade",
				zap.String("request_id", req.ID),
				zap.String("provider", cfg.Name),
				zap.String("stage", stage.Name),
				zap.Int("stages_run", out.stages),
			)
			return out
		case err != nil:
			// Network failures and source diagnostics recover locally
			// and count as an empty stage.
			out.errors = append(out.errors, fmt.Sprintf("%s/%s: %v", cfg.Name, stage.Name, err))
			zap.L().Warn("lookup: provider stage failed",
				zap.String("request_id", req.ID),
				zap.String("provider", cfg.Name),
				zap.String("stage", stage.Name),
				zap.Error(err),
			)
			breaker.recordEmpty()
		case len(results) == 0:
			zap.L().Debug("lookup: stage empty, relaxing query",
				zap.String("request_id", req.ID),
				zap.String("provider", cfg.Name),
				zap.String("stage", stage.Name),
				zap.String("query", stage.Query),
			)
			breaker.recordEmpty()
		default:
			breaker.recordHit()
			out.results = results
			zap.L().Debug("lookup: stage hit",
				zap.String("request_id", req.ID),
				zap.String("provider", cfg.Name),
				zap.String("stage", stage.Name),
				zap.Int("results", len(results)),
			)
			return out
		}
	}
	return out
}

// isTimeout classifies an adapter error as the provider's budget expiring
// rather than a per-call transient failure.
func isTimeout(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
