package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lexhulp/lookup-cli/internal/model"
)

// ProviderOrder is the fixed registration order of the provider set. The
// registry is closed: adapters exist for exactly these names.
var ProviderOrder = []string{
	"wikipedia", "wetten", "rechtspraak", "eurlex", "tuchtrecht", "websearch",
}

// Config holds the full application configuration.
type Config struct {
	Providers   map[string]ProviderEntry `yaml:"providers" mapstructure:"providers"`
	Boost       BoostConfig              `yaml:"boost" mapstructure:"boost"`
	QualityGate QualityGateConfig        `yaml:"quality_gate" mapstructure:"quality_gate"`
	Lookup      LookupConfig             `yaml:"lookup" mapstructure:"lookup"`
	Dict        DictConfig               `yaml:"dict" mapstructure:"dict"`
	Cache       CacheConfig              `yaml:"cache" mapstructure:"cache"`
	Sources     SourcesConfig            `yaml:"sources" mapstructure:"sources"`
	Server      ServerConfig             `yaml:"server" mapstructure:"server"`
	Log         LogConfig                `yaml:"log" mapstructure:"log"`
}

// ProviderEntry configures one provider adapter.
type ProviderEntry struct {
	Enabled          bool    `yaml:"enabled" mapstructure:"enabled"`
	Weight           float64 `yaml:"weight" mapstructure:"weight"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinScore         float64 `yaml:"min_score" mapstructure:"min_score"`
	Authoritative    bool    `yaml:"authoritative" mapstructure:"authoritative"`
	BreakerThreshold int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// BoostConfig is the global boost-factor table consumed by the boost pipeline.
type BoostConfig struct {
	KeywordIncrement    float64 `yaml:"keyword_increment" mapstructure:"keyword_increment"`
	KeywordCap          float64 `yaml:"keyword_cap" mapstructure:"keyword_cap"`
	ArticleRefIncrement float64 `yaml:"article_ref_increment" mapstructure:"article_ref_increment"`
	ContextIncrement    float64 `yaml:"context_increment" mapstructure:"context_increment"`
	ContextCap          float64 `yaml:"context_cap" mapstructure:"context_cap"`
	AuthorityBoost      float64 `yaml:"authority_boost" mapstructure:"authority_boost"`
}

// QualityGateConfig reduces the authority boost for low-relevance results.
type QualityGateConfig struct {
	Enabled         bool    `yaml:"enabled" mapstructure:"enabled"`
	MinBaseScore    float64 `yaml:"min_base_score" mapstructure:"min_base_score"`
	ReductionFactor float64 `yaml:"reduction_factor" mapstructure:"reduction_factor"`
}

// LookupConfig holds request-level defaults.
type LookupConfig struct {
	MaxResults           int `yaml:"max_results" mapstructure:"max_results"`
	AggregateTimeoutSecs int `yaml:"aggregate_timeout_secs" mapstructure:"aggregate_timeout_secs"`
}

// DictConfig points at the static synonym and keyword tables.
type DictConfig struct {
	SynonymsPath string `yaml:"synonyms_path" mapstructure:"synonyms_path"`
	KeywordsPath string `yaml:"keywords_path" mapstructure:"keywords_path"`
}

// CacheConfig configures the provider HTTP response cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// SourcesConfig holds endpoint settings per external source.
type SourcesConfig struct {
	Wikipedia   WikipediaConfig   `yaml:"wikipedia" mapstructure:"wikipedia"`
	Wetten      SRUSourceConfig   `yaml:"wetten" mapstructure:"wetten"`
	EURLex      SRUSourceConfig   `yaml:"eurlex" mapstructure:"eurlex"`
	Tuchtrecht  SRUSourceConfig   `yaml:"tuchtrecht" mapstructure:"tuchtrecht"`
	Rechtspraak RechtspraakConfig `yaml:"rechtspraak" mapstructure:"rechtspraak"`
	Jina        JinaConfig        `yaml:"jina" mapstructure:"jina"`
}

// WikipediaConfig holds MediaWiki API settings.
type WikipediaConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Language string `yaml:"language" mapstructure:"language"`
}

// SRUSourceConfig holds settings for one SRU endpoint.
type SRUSourceConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Version string `yaml:"version" mapstructure:"version"`
}

// RechtspraakConfig holds Rechtspraak.nl open-data settings.
type RechtspraakConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ServerConfig configures the lookup HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOOKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	v.SetDefault("lookup.max_results", 5)
	v.SetDefault("lookup.aggregate_timeout_secs", 20)

	v.SetDefault("dict.synonyms_path", "synonyms.yaml")
	v.SetDefault("dict.keywords_path", "keywords.yaml")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "lookup-cache.db")
	v.SetDefault("cache.ttl_hours", 24)

	v.SetDefault("boost.keyword_increment", 0.05)
	v.SetDefault("boost.keyword_cap", 1.25)
	v.SetDefault("boost.article_ref_increment", 0.10)
	v.SetDefault("boost.context_increment", 0.05)
	v.SetDefault("boost.context_cap", 1.15)
	v.SetDefault("boost.authority_boost", 1.2)

	// Operationally tuned values; config-level on purpose, the engine
	// never hardcodes them.
	v.SetDefault("quality_gate.enabled", true)
	v.SetDefault("quality_gate.min_base_score", 0.65)
	v.SetDefault("quality_gate.reduction_factor", 0.5)

	v.SetDefault("sources.wikipedia.base_url", "https://nl.wikipedia.org/w/api.php")
	v.SetDefault("sources.wikipedia.language", "nl")
	v.SetDefault("sources.wetten.base_url", "https://repository.overheid.nl/sru")
	v.SetDefault("sources.wetten.version", "2.0")
	v.SetDefault("sources.eurlex.base_url", "https://eur-lex.europa.eu/EURLexWebService/sru")
	v.SetDefault("sources.eurlex.version", "1.2")
	v.SetDefault("sources.tuchtrecht.base_url", "https://tuchtrecht.overheid.nl/sru")
	v.SetDefault("sources.tuchtrecht.version", "2.0")
	v.SetDefault("sources.rechtspraak.base_url", "https://data.rechtspraak.nl")
	v.SetDefault("sources.jina.search_base_url", "https://s.jina.ai")

	defaults := map[string]ProviderEntry{
		"wikipedia":   {Enabled: true, Weight: 0.85, TimeoutSecs: 8, MinScore: 0.15},
		"wetten":      {Enabled: true, Weight: 1.20, TimeoutSecs: 8, MinScore: 0.20, Authoritative: true},
		"rechtspraak": {Enabled: true, Weight: 1.10, TimeoutSecs: 8, MinScore: 0.20, Authoritative: true},
		"eurlex":      {Enabled: true, Weight: 1.00, TimeoutSecs: 10, MinScore: 0.20, Authoritative: true},
		"tuchtrecht":  {Enabled: true, Weight: 0.90, TimeoutSecs: 8, MinScore: 0.20, Authoritative: true},
		"websearch":   {Enabled: true, Weight: 0.70, TimeoutSecs: 10, MinScore: 0.25},
	}
	for name, d := range defaults {
		prefix := "providers." + name + "."
		v.SetDefault(prefix+"enabled", d.Enabled)
		v.SetDefault(prefix+"weight", d.Weight)
		v.SetDefault(prefix+"timeout_secs", d.TimeoutSecs)
		v.SetDefault(prefix+"min_score", d.MinScore)
		v.SetDefault(prefix+"authoritative", d.Authoritative)
		v.SetDefault(prefix+"breaker_threshold", 4)
		v.SetDefault(prefix+"rate_limit", 2.0)
	}
}

// Validate checks that the configuration is internally consistent.
func Validate(cfg *Config) error {
	var errs []string

	for _, name := range ProviderOrder {
		p, ok := cfg.Providers[name]
		if !ok {
			continue
		}
		if p.Weight < 0 {
			errs = append(errs, fmt.Sprintf("providers.%s.weight must be >= 0", name))
		}
		if p.MinScore < 0 {
			errs = append(errs, fmt.Sprintf("providers.%s.min_score must be >= 0", name))
		}
		if p.BreakerThreshold < 1 {
			errs = append(errs, fmt.Sprintf("providers.%s.breaker_threshold must be >= 1", name))
		}
	}

	b := cfg.Boost
	for name, mul := range map[string]float64{
		"boost.keyword_cap":     b.KeywordCap,
		"boost.context_cap":     b.ContextCap,
		"boost.authority_boost": b.AuthorityBoost,
	} {
		if mul < 1 {
			errs = append(errs, fmt.Sprintf("%s must be >= 1", name))
		}
	}
	for name, inc := range map[string]float64{
		"boost.keyword_increment":     b.KeywordIncrement,
		"boost.article_ref_increment": b.ArticleRefIncrement,
		"boost.context_increment":     b.ContextIncrement,
	} {
		if inc < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	g := cfg.QualityGate
	if g.MinBaseScore < 0 || g.MinBaseScore > 1 {
		errs = append(errs, "quality_gate.min_base_score must be in [0,1]")
	}
	if g.ReductionFactor < 0 || g.ReductionFactor > 1 {
		errs = append(errs, "quality_gate.reduction_factor must be in [0,1]")
	}

	if cfg.Lookup.MaxResults < 1 {
		errs = append(errs, "lookup.max_results must be >= 1")
	}
	if cfg.Lookup.AggregateTimeoutSecs < 1 {
		errs = append(errs, "lookup.aggregate_timeout_secs must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ProviderConfigs converts the provider entries into the immutable registry
// set, in fixed registration order.
func (c *Config) ProviderConfigs() []model.ProviderConfig {
	out := make([]model.ProviderConfig, 0, len(ProviderOrder))
	for _, name := range ProviderOrder {
		p, ok := c.Providers[name]
		if !ok {
			continue
		}
		out = append(out, model.ProviderConfig{
			Name:             name,
			Enabled:          p.Enabled,
			Weight:           p.Weight,
			Timeout:          time.Duration(p.TimeoutSecs) * time.Second,
			MinScore:         p.MinScore,
			Authoritative:    p.Authoritative,
			BreakerThreshold: p.BreakerThreshold,
			RateLimit:        p.RateLimit,
		})
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
