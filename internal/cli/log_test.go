package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		log   func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("colored") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("simplified", "node", "a") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("simplified", "node", "a") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("spilling", "node", "a") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("colored", "nodes", 3)

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("output should start with a 15:04:05.00 timestamp: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "nodes=3") {
		t.Errorf("output should carry structured fields: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered tri.svg")

	if !regexp.MustCompile(`Rendered tri\.svg \(\d+m?s\)`).MatchString(buf.String()) {
		t.Errorf("done() output = %q, want message with elapsed time", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext() should return the logger set by withLogger")
	}
}
