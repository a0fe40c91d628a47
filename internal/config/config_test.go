package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10000, cfg.Editor.MaxHistory)
	assert.True(t, cfg.Editor.MergeEdits)
	assert.True(t, cfg.Wrap.Enabled)
	assert.Equal(t, 800.0, cfg.Wrap.ViewportWidth)
	assert.Equal(t, 10.0, cfg.Wrap.CharWidth)
	assert.Equal(t, 500, cfg.Wrap.CacheSize)
	assert.Equal(t, "auto", cfg.File.LineEnding)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "textcore.toml", `
[editor]
maxHistory = 50

[wrap]
enabled = false
charWidth = 8.5

[file]
lineEnding = "crlf"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Editor.MaxHistory)
	assert.True(t, cfg.Editor.MergeEdits, "unset keys keep defaults")
	assert.False(t, cfg.Wrap.Enabled)
	assert.Equal(t, 8.5, cfg.Wrap.CharWidth)
	assert.Equal(t, 800.0, cfg.Wrap.ViewportWidth)

	le, auto, err := cfg.LineEnding()
	require.NoError(t, err)
	assert.False(t, auto)
	assert.Equal(t, buffer.LineEndingCRLF, le)
}

func TestLoadYAML(t *testing.T) {
	for _, name := range []string{"textcore.yaml", "textcore.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, "wrap:\n  viewportWidth: 320\n  cacheSize: 64\nlogging:\n  level: debug\n")

			cfg, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, 320.0, cfg.Wrap.ViewportWidth)
			assert.Equal(t, 64, cfg.Wrap.CacheSize)
			assert.Equal(t, logging.LevelDebug, cfg.LogLevel())
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "invalid toml",
			file:    "bad.toml",
			content: "[editor\nmaxHistory = 1\n",
			check: func(t *testing.T, err error) {
				var perr *ParseError
				require.ErrorAs(t, err, &perr)
				assert.Positive(t, perr.Line)
			},
		},
		{
			name:    "unknown toml key",
			file:    "unknown.toml",
			content: "[editor]\ntabSize = 2\n",
			check: func(t *testing.T, err error) {
				var perr *ParseError
				assert.ErrorAs(t, err, &perr)
			},
		},
		{
			name:    "invalid yaml",
			file:    "bad.yaml",
			content: "wrap: [\n",
			check: func(t *testing.T, err error) {
				var perr *ParseError
				assert.ErrorAs(t, err, &perr)
			},
		},
		{
			name:    "unsupported extension",
			file:    "config.json",
			content: "{}",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TEXTCORE_MAX_HISTORY", "42")
	t.Setenv("TEXTCORE_WORD_WRAP", "off")
	t.Setenv("TEXTCORE_VIEWPORT_WIDTH", "640.5")
	t.Setenv("TEXTCORE_CHAR_WIDTH", "7")
	t.Setenv("TEXTCORE_CACHE_SIZE", "10")
	t.Setenv("TEXTCORE_LINE_ENDING", "CR")
	t.Setenv("TEXTCORE_LOG_LEVEL", "WARN")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(""))

	assert.Equal(t, 42, cfg.Editor.MaxHistory)
	assert.False(t, cfg.Wrap.Enabled)
	assert.Equal(t, 640.5, cfg.Wrap.ViewportWidth)
	assert.Equal(t, 7.0, cfg.Wrap.CharWidth)
	assert.Equal(t, 10, cfg.Wrap.CacheSize)
	assert.Equal(t, "cr", cfg.File.LineEnding)
	assert.Equal(t, logging.LevelWarn, cfg.LogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvCustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_CACHE_SIZE", "3")
	t.Setenv("TEXTCORE_CACHE_SIZE", "99")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv("MYAPP_"))
	assert.Equal(t, 3, cfg.Wrap.CacheSize)
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"int", "TEXTCORE_MAX_HISTORY", "many"},
		{"float", "TEXTCORE_CHAR_WIDTH", "wide"},
		{"bool", "TEXTCORE_WORD_WRAP", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)

			err := Default().ApplyEnv("TEXTCORE")
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.env, perr.Path)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"max history", func(c *Config) { c.Editor.MaxHistory = 0 }, "editor.maxHistory"},
		{"viewport width", func(c *Config) { c.Wrap.ViewportWidth = -1 }, "wrap.viewportWidth"},
		{"char width", func(c *Config) { c.Wrap.CharWidth = 0 }, "wrap.charWidth"},
		{"cache size", func(c *Config) { c.Wrap.CacheSize = 0 }, "wrap.cacheSize"},
		{"tab width", func(c *Config) { c.Wrap.TabWidth = 0 }, "wrap.tabWidth"},
		{"debounce", func(c *Config) { c.File.WatchDebounce = -5 }, "file.watchDebounce"},
		{"line ending", func(c *Config) { c.File.LineEnding = "nel" }, "file.lineEnding"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
			assert.True(t, errors.Is(err, ErrValidationFailed))
		})
	}
}

func TestLineEndingAuto(t *testing.T) {
	cfg := Default()

	_, auto, err := cfg.LineEnding()
	require.NoError(t, err)
	assert.True(t, auto)

	cfg.File.LineEnding = ""
	_, auto, err = cfg.LineEnding()
	require.NoError(t, err)
	assert.True(t, auto)
}
