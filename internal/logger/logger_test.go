package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetAndNamed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := current()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Named("analysis").Info("started", zap.String("id", "abc"))
	Warn("careful")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "analysis", entries[0].LoggerName)
	assert.Equal(t, "abc", entries[0].ContextMap()["id"])
	assert.Equal(t, "careful", entries[1].Message)
}

func TestBuild(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l, err := build(debug)
		assert.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestLevelHelpers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := current()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	With(zap.String("id", "abc")).Debug("Analysis complete")
	Info("Configuration loaded", zap.Int("port", 8080))
	Error("Command execution failed")

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "abc", entries[0].ContextMap()["id"])
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
	assert.Equal(t, int64(8080), entries[1].ContextMap()["port"])
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}
