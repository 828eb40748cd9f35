package config

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/sandrolain/goexpr/pkg/evaluator"
)

// Config keys understood by Engine.
const (
	KeyLocale         = "locale"
	KeyCacheSize      = "cache_size"
	KeyRegexCacheSize = "regex_cache_size"
	KeyDebug          = "debug"
	KeyMetrics        = "metrics"
	KeyTracing        = "tracing"
)

// EngineConfig holds the evaluator settings read from a Config.
type EngineConfig struct {
	// Locale is the default BCP 47 tag; empty keeps culture-invariant output.
	Locale string
	// CacheSize enables the parsed expression cache when positive.
	CacheSize int
	// RegexCacheSize resizes the process-wide regex cache when positive.
	RegexCacheSize int
	Debug          bool
	Metrics        bool
	Tracing        bool
}

// Engine extracts and validates an EngineConfig.
func Engine(c Config) (EngineConfig, error) {
	ec := EngineConfig{
		Locale:         c.String(KeyLocale, ""),
		CacheSize:      c.Int(KeyCacheSize, 0),
		RegexCacheSize: c.Int(KeyRegexCacheSize, 0),
		Debug:          c.Bool(KeyDebug, false),
		Metrics:        c.Bool(KeyMetrics, false),
		Tracing:        c.Bool(KeyTracing, false),
	}
	if ec.Locale != "" {
		if _, err := language.Parse(ec.Locale); err != nil {
			return EngineConfig{}, fmt.Errorf("config: invalid %s %q: %w", KeyLocale, ec.Locale, err)
		}
	}
	if ec.CacheSize < 0 {
		return EngineConfig{}, fmt.Errorf("config: %s must not be negative", KeyCacheSize)
	}
	if ec.RegexCacheSize < 0 {
		return EngineConfig{}, fmt.Errorf("config: %s must not be negative", KeyRegexCacheSize)
	}
	return ec, nil
}

// Load reads path and extracts its EngineConfig.
func Load(path string) (EngineConfig, error) {
	c, err := FromFile(path)
	if err != nil {
		return EngineConfig{}, err
	}
	return Engine(c)
}

// Options converts the settings into evaluator options. A positive
// RegexCacheSize is applied immediately since the regex cache is shared
// by every evaluator in the process.
func (ec EngineConfig) Options() []evaluator.EvalOption {
	if ec.RegexCacheSize > 0 {
		evaluator.SetRegexCacheSize(ec.RegexCacheSize)
	}
	opts := []evaluator.EvalOption{
		evaluator.WithDebug(ec.Debug),
		evaluator.WithMetrics(ec.Metrics),
		evaluator.WithTracing(ec.Tracing),
	}
	if ec.Locale != "" {
		opts = append(opts, evaluator.WithLocale(ec.Locale))
	}
	if ec.CacheSize > 0 {
		opts = append(opts, evaluator.WithCaching(true), evaluator.WithCacheSize(ec.CacheSize))
	}
	return opts
}
