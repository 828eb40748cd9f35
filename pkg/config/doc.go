// Package config loads evaluator settings from YAML or JSON files.
//
// A file is read into a Config, a map wrapper with defaulting accessors,
// and then narrowed into an EngineConfig:
//
//	cfg, err := config.FromFile("goexpr.yaml")
//	engine, err := config.Engine(cfg)
//	ev := evaluator.New(engine.Options()...)
//
// Recognized keys: locale, cache_size, regex_cache_size, debug, metrics
// and tracing.
package config
