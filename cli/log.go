package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bangunx/ghup/fsutil"
)

// logOptions configures the CLI logger.
type logOptions struct {
	// Verbose lowers the stderr level from warn to debug.
	Verbose bool
	// JSON uses JSON output format for stderr.
	JSON bool
	// File receives every record as JSON when set.
	File string
	// Stderr is the writer for stderr output.
	Stderr io.Writer
}

// newLogger builds the logger and returns a func that releases the log
// file. The release func is safe to call more than once.
func newLogger(opts logOptions) (*slog.Logger, func(), error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	stderrOpts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if opts.JSON {
		handlers = append(handlers, slog.NewJSONHandler(stderr, stderrOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(stderr, stderrOpts))
	}

	closeFn := func() {}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), fsutil.DirPerm); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // user-provided path expected
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		var once sync.Once
		closeFn = func() { once.Do(func() { _ = f.Close() }) }
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return slog.New(&multiHandler{handlers: handlers}), closeFn, nil
}

// multiHandler fans out log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
