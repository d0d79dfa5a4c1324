// Package cli implements the regalloc command-line interface.
//
// Commands load a problem file (TOML or JSON), run the allocation pipeline
// and present the outcome with lipgloss tables. The CLI is built using cobra
// and logs through charmbracelet/log.
//
// # Commands
//
//   - alloc: Color a problem, spilling until it fits, and write artifacts
//   - geometry: Print each class's p value and the q matrix
//   - render: Draw the interference graph as DOT, SVG, PDF or PNG
//   - trace: Show the simplify/select event sequence, optionally in a TUI
//   - serve: Run the HTTP API
//   - cache: Inspect or clear the rendered artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so the pipeline logs with the CLI's level.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered tri.svg (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger set by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
