package engine

import (
	"time"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/renderer/layout"
	"github.com/dshills/textcore/internal/watcher"
)

// Default configuration values.
const (
	DefaultMaxHistory    = history.DefaultMaxHistory
	DefaultViewportWidth = layout.DefaultViewportWidth
	DefaultCharWidth     = layout.DefaultCharWidth
	DefaultCacheSize     = layout.DefaultCacheSize
	DefaultTabWidth      = layout.DefaultTabWidth
	DefaultWatchDebounce = watcher.DefaultDebounce
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithMaxHistory sets the maximum number of undo entries.
func WithMaxHistory(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxHistory = max
		}
	}
}

// WithMerge sets whether consecutive typing merges into one undo step.
func WithMerge(enabled bool) Option {
	return func(e *Engine) {
		e.mergeEdits = enabled
	}
}

// WithWrap turns soft wrapping on or off.
func WithWrap(enabled bool) Option {
	return func(e *Engine) {
		e.wrap = enabled
	}
}

// WithViewport sets the viewport width and cell width in pixels.
func WithViewport(width, charWidth float64) Option {
	return func(e *Engine) {
		e.viewportWidth = width
		e.charWidth = charWidth
	}
}

// WithCacheSize sets how many lines keep their wrap segments cached.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

// WithTabWidth sets the tab stop interval used for wrapping.
func WithTabWidth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.tabWidth = n
		}
	}
}

// WithLineEnding forces the line ending used when saving, overriding the
// one detected on load.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = ending
		e.forceLineEnding = true
	}
}

// WithWatchDebounce sets the debounce window used by Watch.
func WithWatchDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.watchDebounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConfig applies every engine setting from cfg. Options after it
// override individual settings.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg == nil {
			return
		}
		WithMaxHistory(cfg.Editor.MaxHistory)(e)
		WithMerge(cfg.Editor.MergeEdits)(e)
		WithWrap(cfg.Wrap.Enabled)(e)
		WithViewport(cfg.Wrap.ViewportWidth, cfg.Wrap.CharWidth)(e)
		WithCacheSize(cfg.Wrap.CacheSize)(e)
		WithTabWidth(cfg.Wrap.TabWidth)(e)
		WithWatchDebounce(time.Duration(cfg.File.WatchDebounce) * time.Millisecond)(e)
		if le, auto, err := cfg.LineEnding(); err == nil && !auto {
			WithLineEnding(le)(e)
		}
	}
}
