package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"", "json", "console", "JSON"} {
		l, err := NewLogger(Config{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_RejectsUnknownSettings(t *testing.T) {
	_, err := NewLogger(Config{Format: "xml"})
	assert.Error(t, err)

	_, err = NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestLogger_FieldsAndNames(t *testing.T) {
	// GIVEN: an observed logger with a name and a persistent field
	l, logs := newObservedLogger()
	child := l.Named("api").With(String("request_id", "abc"))

	// WHEN: logging with typed fields
	child.Info("schedule generated",
		Int("periods", 3),
		Bool("single_dose", false),
		Duration("took", 2*time.Millisecond),
		Any("mode", "coverage"),
	)
	child.Error("failed", Err(assert.AnError))

	// THEN: both entries carry the name and every field
	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "api", entry.LoggerName)
	assert.Equal(t, "schedule generated", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["request_id"])
	assert.EqualValues(t, 3, ctx["periods"])
	assert.Equal(t, false, ctx["single_dose"])
	assert.Equal(t, "coverage", ctx["mode"])

	errEntry := logs.All()[1]
	assert.Equal(t, zapcore.ErrorLevel, errEntry.Level)
	assert.Equal(t, assert.AnError.Error(), errEntry.ContextMap()["error"])
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Warn("discarded", String("k", "v"))
	assert.NoError(t, l.Sync())
}
