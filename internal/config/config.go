package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/logging"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "TEXTCORE"

// Config holds every textcore setting.
type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Wrap    WrapConfig    `toml:"wrap" yaml:"wrap"`
	File    FileConfig    `toml:"file" yaml:"file"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// EditorConfig holds undo history settings.
type EditorConfig struct {
	// MaxHistory bounds the undo stack.
	MaxHistory int `toml:"maxHistory" yaml:"maxHistory"`
	// MergeEdits coalesces consecutive typing into one undo step.
	MergeEdits bool `toml:"mergeEdits" yaml:"mergeEdits"`
}

// WrapConfig holds soft wrap settings.
type WrapConfig struct {
	Enabled       bool    `toml:"enabled" yaml:"enabled"`
	ViewportWidth float64 `toml:"viewportWidth" yaml:"viewportWidth"` // pixels
	CharWidth     float64 `toml:"charWidth" yaml:"charWidth"`         // pixels per cell
	CacheSize     int     `toml:"cacheSize" yaml:"cacheSize"`
	TabWidth      int     `toml:"tabWidth" yaml:"tabWidth"`
}

// FileConfig holds file handling settings.
type FileConfig struct {
	// LineEnding is "auto" (keep what the file uses), "lf", "crlf" or "cr".
	LineEnding string `toml:"lineEnding" yaml:"lineEnding"`
	// WatchDebounce is the file watcher debounce window in milliseconds.
	WatchDebounce int `toml:"watchDebounce" yaml:"watchDebounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			MaxHistory: 10000,
			MergeEdits: true,
		},
		Wrap: WrapConfig{
			Enabled:       true,
			ViewportWidth: 800,
			CharWidth:     10,
			CacheSize:     500,
			TabWidth:      4,
		},
		File: FileConfig{
			LineEnding:    "auto",
			WatchDebounce: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overlaid with the file at path.
// The format is chosen by extension: .toml, .yaml or .yml.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := cfg.Decode(path, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays data onto c. The format is taken from the extension of
// source. Unknown keys are rejected.
func (c *Config) Decode(source string, data []byte) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			perr := &ParseError{Path: source, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	return nil
}

// envSetter applies one environment value to a Config.
type envSetter func(c *Config, name, value string) error

// envMapping maps variable suffixes to setters.
var envMapping = map[string]envSetter{
	"MAX_HISTORY": func(c *Config, name, v string) error {
		return setInt(&c.Editor.MaxHistory, name, v)
	},
	"MERGE_EDITS": func(c *Config, name, v string) error {
		return setBool(&c.Editor.MergeEdits, name, v)
	},
	"WORD_WRAP": func(c *Config, name, v string) error {
		return setBool(&c.Wrap.Enabled, name, v)
	},
	"VIEWPORT_WIDTH": func(c *Config, name, v string) error {
		return setFloat(&c.Wrap.ViewportWidth, name, v)
	},
	"CHAR_WIDTH": func(c *Config, name, v string) error {
		return setFloat(&c.Wrap.CharWidth, name, v)
	},
	"CACHE_SIZE": func(c *Config, name, v string) error {
		return setInt(&c.Wrap.CacheSize, name, v)
	},
	"TAB_WIDTH": func(c *Config, name, v string) error {
		return setInt(&c.Wrap.TabWidth, name, v)
	},
	"LINE_ENDING": func(c *Config, _, v string) error {
		c.File.LineEnding = strings.ToLower(v)
		return nil
	},
	"WATCH_DEBOUNCE": func(c *Config, name, v string) error {
		return setInt(&c.File.WatchDebounce, name, v)
	},
	"LOG_LEVEL": func(c *Config, _, v string) error {
		c.Logging.Level = strings.ToLower(v)
		return nil
	},
}

// ApplyEnv overrides settings from environment variables named
// PREFIX_SETTING, e.g. TEXTCORE_CACHE_SIZE. An empty prefix uses
// DefaultEnvPrefix.
func (c *Config) ApplyEnv(prefix string) error {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	prefix = strings.TrimSuffix(prefix, "_") + "_"

	for suffix, set := range envMapping {
		name := prefix + suffix
		val, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := set(c, name, strings.TrimSpace(val)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every setting and returns the first failure as a
// *ValidationError.
func (c *Config) Validate() error {
	switch {
	case c.Editor.MaxHistory < 1:
		return &ValidationError{Path: "editor.maxHistory", Message: "must be at least 1", Value: c.Editor.MaxHistory}
	case c.Wrap.ViewportWidth < 0:
		return &ValidationError{Path: "wrap.viewportWidth", Message: "must not be negative", Value: c.Wrap.ViewportWidth}
	case c.Wrap.CharWidth <= 0:
		return &ValidationError{Path: "wrap.charWidth", Message: "must be positive", Value: c.Wrap.CharWidth}
	case c.Wrap.CacheSize < 1:
		return &ValidationError{Path: "wrap.cacheSize", Message: "must be at least 1", Value: c.Wrap.CacheSize}
	case c.Wrap.TabWidth < 1:
		return &ValidationError{Path: "wrap.tabWidth", Message: "must be at least 1", Value: c.Wrap.TabWidth}
	case c.File.WatchDebounce < 0:
		return &ValidationError{Path: "file.watchDebounce", Message: "must not be negative", Value: c.File.WatchDebounce}
	}

	if _, _, err := c.LineEnding(); err != nil {
		return err
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}
	return nil
}

// LineEnding returns the configured line ending. auto reports that the
// line ending should be detected from the file instead.
func (c *Config) LineEnding() (le buffer.LineEnding, auto bool, err error) {
	if c.File.LineEnding == "" || strings.EqualFold(c.File.LineEnding, "auto") {
		return buffer.LineEndingLF, true, nil
	}
	le, ok := buffer.ParseLineEnding(strings.ToLower(c.File.LineEnding))
	if !ok {
		return buffer.LineEndingLF, false, &ValidationError{
			Path:    "file.lineEnding",
			Message: "must be auto, lf, crlf or cr",
			Value:   c.File.LineEnding,
		}
	}
	return le, false, nil
}

// LogLevel returns the configured log level, or info if it is invalid.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}

func setInt(dst *int, name, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return &ParseError{Path: name, Message: "expected an integer", Err: err}
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, name, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return &ParseError{Path: name, Message: "expected a number", Err: err}
	}
	*dst = f
	return nil
}

// setBool accepts true/yes/on/1 and false/no/off/0.
func setBool(dst *bool, name, v string) error {
	switch strings.ToLower(v) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0":
		*dst = false
	default:
		return &ParseError{Path: name, Message: "expected a boolean"}
	}
	return nil
}
