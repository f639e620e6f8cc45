package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexhulp/lookup-cli/internal/boost"
	"github.com/lexhulp/lookup-cli/internal/cache"
	"github.com/lexhulp/lookup-cli/internal/dict"
	"github.com/lexhulp/lookup-cli/internal/lookup"
	"github.com/lexhulp/lookup-cli/internal/provider"
	"github.com/lexhulp/lookup-cli/internal/rank"
	"github.com/lexhulp/lookup-cli/pkg/jina"
	"github.com/lexhulp/lookup-cli/pkg/mediawiki"
	"github.com/lexhulp/lookup-cli/pkg/rechtspraak"
	"github.com/lexhulp/lookup-cli/pkg/sru"
)

const userAgent = "lookup-cli/1.0 (+https://github.com/lexhulp/lookup-cli)"

// Env bundles the engine with the resources it owns.
type Env struct {
	Engine *lookup.Engine
	Store  *cache.Store
}

// Close releases the response cache, if one was opened.
func (e *Env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("cache close failed", zap.Error(err))
		}
	}
}

// initEngine builds the full lookup stack from config: the shared HTTP
// client (optionally backed by the sqlite response cache), one source client
// and rate limiter per provider, the dictionary tables, and the boost and
// rank stages.
func initEngine() (*Env, error) {
	env := &Env{}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour)
		if err != nil {
			return nil, eris.Wrap(err, "open response cache")
		}
		env.Store = store
		httpClient.Transport = cache.NewTransport(store, nil)
	}

	tables, err := dict.Load(cfg.Dict.SynonymsPath, cfg.Dict.KeywordsPath)
	if err != nil {
		return nil, eris.Wrap(err, "load dictionary tables")
	}

	limiter := func(name string) *rate.Limiter {
		p, ok := cfg.Providers[name]
		if !ok || p.RateLimit <= 0 {
			return nil
		}
		return rate.NewLimiter(rate.Limit(p.RateLimit), 1)
	}

	wikiClient := mediawiki.NewClient(cfg.Sources.Wikipedia.BaseURL,
		mediawiki.WithHTTPClient(httpClient),
		mediawiki.WithUserAgent(userAgent),
	)
	wettenClient := sru.NewClient(cfg.Sources.Wetten.BaseURL,
		sru.WithHTTPClient(httpClient),
		sru.WithVersion(cfg.Sources.Wetten.Version),
		sru.WithUserAgent(userAgent),
	)
	eurlexClient := sru.NewClient(cfg.Sources.EURLex.BaseURL,
		sru.WithHTTPClient(httpClient),
		sru.WithVersion(cfg.Sources.EURLex.Version),
		sru.WithUserAgent(userAgent),
	)
	tuchtClient := sru.NewClient(cfg.Sources.Tuchtrecht.BaseURL,
		sru.WithHTTPClient(httpClient),
		sru.WithVersion(cfg.Sources.Tuchtrecht.Version),
		sru.WithUserAgent(userAgent),
	)
	rsprClient := rechtspraak.NewClient(cfg.Sources.Rechtspraak.BaseURL,
		rechtspraak.WithHTTPClient(httpClient),
		rechtspraak.WithUserAgent(userAgent),
	)
	jinaClient := jina.NewClient(cfg.Sources.Jina.Key,
		jina.WithSearchBaseURL(cfg.Sources.Jina.SearchBaseURL),
		jina.WithHTTPClient(httpClient),
	)

	registry := provider.NewRegistry(
		provider.NewWikipedia(wikiClient, cfg.Sources.Wikipedia.Language, limiter("wikipedia")),
		provider.NewWetten(wettenClient, limiter("wetten")),
		provider.NewRechtspraak(rsprClient, limiter("rechtspraak")),
		provider.NewEURLex(eurlexClient, limiter("eurlex")),
		provider.NewTuchtrecht(tuchtClient, limiter("tuchtrecht")),
		provider.NewWebSearch(jinaClient, limiter("websearch")),
	)

	providers := cfg.ProviderConfigs()
	booster := boost.New(cfg.Boost, cfg.QualityGate, tables.AllKeywords(), providers)
	ranker := rank.New(providers)

	engine, err := lookup.NewEngine(registry, providers, tables, booster, ranker, lookup.Options{
		MaxResults:       cfg.Lookup.MaxResults,
		AggregateTimeout: time.Duration(cfg.Lookup.AggregateTimeoutSecs) * time.Second,
	})
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "build engine")
	}
	env.Engine = engine
	return env, nil
}
