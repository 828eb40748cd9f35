package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goexpr/pkg/config"
	"github.com/sandrolain/goexpr/pkg/evaluator"
)

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":  "goexpr",
		"n":     int64(7),
		"whole": 4.0,
		"frac":  4.5,
		"on":    true,
	})

	assert.Equal(t, "goexpr", cfg.String("name", "x"))
	assert.Equal(t, "x", cfg.String("n", "x"))
	assert.Equal(t, 7, cfg.Int("n", 0))
	assert.Equal(t, 4, cfg.Int("whole", 0))
	assert.Equal(t, -1, cfg.Int("frac", -1))
	assert.True(t, cfg.Bool("on", false))
	assert.True(t, cfg.Bool("missing", true))
	assert.True(t, cfg.Has("frac"))
	assert.False(t, cfg.Has("missing"))
	assert.NotNil(t, config.New(nil).Raw())
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "goexpr.yaml", "locale: de-DE\ncache_size: 32\ndebug: true\n"},
		{"yml", "goexpr.yml", "locale: de-DE\ncache_size: 32\ndebug: true\n"},
		{"json", "goexpr.json", `{"locale": "de-DE", "cache_size": 32, "debug": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			ec, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, config.EngineConfig{Locale: "de-DE", CacheSize: 32, Debug: true}, ec)
		})
	}
}

func TestFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	toml := filepath.Join(dir, "goexpr.toml")
	require.NoError(t, os.WriteFile(toml, []byte("locale = 'en'"), 0o600))
	_, err = config.FromFile(toml)
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = config.FromYAML([]byte("locale: [unterminated"))
	assert.Error(t, err)
	_, err = config.FromJSON([]byte("{"))
	assert.Error(t, err)
}

func TestEngineValidation(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"bad locale", map[string]any{"locale": "not a locale"}},
		{"negative cache", map[string]any{"cache_size": -1}},
		{"negative regex cache", map[string]any{"regex_cache_size": -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Engine(config.New(tt.data))
			assert.Error(t, err)
		})
	}

	ec, err := config.Engine(config.New(nil))
	require.NoError(t, err)
	assert.Equal(t, config.EngineConfig{}, ec)
}

func TestOptions(t *testing.T) {
	cfg, err := config.FromYAML([]byte("locale: de-DE\ncache_size: 8\nregex_cache_size: 64\n"))
	require.NoError(t, err)
	ec, err := config.Engine(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { evaluator.SetRegexCacheSize(evaluator.DefaultRegexCacheSize) })

	ev := evaluator.New(ec.Options()...)
	require.NotNil(t, ev.Cache())

	got, err := ev.Eval(context.Background(), "string(1.5)", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1,5", got)

	got, err = ev.Eval(context.Background(), "isMatch('abc', '^a')", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	assert.Nil(t, evaluator.New(config.EngineConfig{}.Options()...).Cache())
}
