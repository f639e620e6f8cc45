// Package lookup orchestrates the multi-provider lookup: it fans one request
// out to every enabled provider, runs the stage cascade per provider, and
// feeds the collected raw results through boosting and ranking.
package lookup

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexhulp/lookup-cli/internal/boost"
	"github.com/lexhulp/lookup-cli/internal/dict"
	"github.com/lexhulp/lookup-cli/internal/model"
	"github.com/lexhulp/lookup-cli/internal/provider"
	"github.com/lexhulp/lookup-cli/internal/rank"
)

const (
	defaultMaxResults       = 10
	defaultAggregateTimeout = 20 * time.Second
)

// Engine ties the provider registry, dictionary tables, boost pipeline and
// ranker together into a single Lookup entry point. An Engine is safe for
// concurrent use.
type Engine struct {
	registry  *provider.Registry
	providers []model.ProviderConfig
	tables    *dict.Tables
	booster   *boost.Pipeline
	ranker    *rank.Ranker

	maxResults       int
	aggregateTimeout time.Duration
	legalTokens      map[string]struct{}
}

// Options tunes request-level defaults for an Engine.
type Options struct {
	MaxResults       int
	AggregateTimeout time.Duration
}

// NewEngine wires an engine over an already-built registry. Providers absent
// from the registry or disabled in their config are skipped at request time.
func NewEngine(registry *provider.Registry, providers []model.ProviderConfig, tables *dict.Tables, booster *boost.Pipeline, ranker *rank.Ranker, opts Options) (*Engine, error) {
	if registry == nil {
		return nil, eris.New("lookup: nil registry")
	}
	if tables == nil {
		tables = dict.Empty()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.AggregateTimeout <= 0 {
		opts.AggregateTimeout = defaultAggregateTimeout
	}

	// Category names count as legal tokens alongside their keywords, so a
	// context hint like "arbeidsrecht" survives into the legal stage even
	// when it only names a category.
	legal := make(map[string]struct{})
	for _, cat := range tables.Categories() {
		legal[strings.ToLower(cat)] = struct{}{}
		for _, kw := range tables.Keywords(cat) {
			legal[strings.ToLower(kw)] = struct{}{}
		}
	}

	return &Engine{
		registry:         registry,
		providers:        providers,
		tables:           tables,
		booster:          booster,
		ranker:           ranker,
		maxResults:       opts.MaxResults,
		aggregateTimeout: opts.AggregateTimeout,
		legalTokens:      legal,
	}, nil
}

// Lookup runs the full pipeline for one term. It never fails on provider
// errors: those are recovered per provider and surfaced in the outcome. The
// returned error covers caller mistakes (empty term) and context
// cancellation before any provider answered.
func (e *Engine) Lookup(ctx context.Context, req model.LookupRequest) (model.Outcome, error) {
	if strings.TrimSpace(req.Term) == "" {
		return model.Outcome{}, eris.New("lookup: empty term")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.MaxResults <= 0 {
		req.MaxResults = e.maxResults
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.aggregateTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stages := BuildStages(req.Term, req.Context, e.legalTokens, e.tables.Synonyms(req.Term))

	start := time.Now()
	zap.L().Info("lookup: dispatching",
		zap.String("request_id", req.ID),
		zap.String("term", req.Term),
		zap.Int("stages", len(stages)),
	)

	var (
		mu       sync.Mutex
		raw      []model.LookupResult
		provErrs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, cfg := range e.providers {
		cfg := cfg
		if !cfg.Enabled {
			continue
		}
		p := e.registry.Get(cfg.Name)
		if p == nil {
			zap.L().Warn("lookup: provider enabled but not registered",
				zap.String("provider", cfg.Name))
			continue
		}
		g.Go(func() error {
			out := runCascade(gctx, p, cfg, stages, req)
			mu.Lock()
			raw = append(raw, out.results...)
			provErrs = append(provErrs, out.errors...)
			mu.Unlock()
			return nil
		})
	}
	// Cascades recover their own errors, so Wait only trips on a
	// programming mistake.
	if err := g.Wait(); err != nil {
		return model.Outcome{}, eris.Wrap(err, "lookup: provider fan-out")
	}
	sort.Strings(provErrs)

	if len(raw) == 0 {
		if err := ctx.Err(); err != nil && len(provErrs) == 0 {
			return model.Outcome{}, eris.Wrap(err, "lookup: aggregate deadline")
		}
		zap.L().Info("lookup: no provider produced results",
			zap.String("request_id", req.ID),
			zap.Duration("elapsed", time.Since(start)),
		)
		return model.Outcome{Status: model.StatusUnavailable, ProviderErrors: provErrs}, nil
	}

	boosted := e.booster.ApplyAll(raw, req.Context)
	ranked := e.ranker.Rank(boosted, req)

	status := model.StatusOK
	if len(ranked) == 0 {
		status = model.StatusNoResults
	}

	zap.L().Info("lookup: complete",
		zap.String("request_id", req.ID),
		zap.String("status", string(status)),
		zap.Int("raw", len(raw)),
		zap.Int("ranked", len(ranked)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return model.Outcome{Status: status, Results: ranked, ProviderErrors: provErrs}, nil
}
