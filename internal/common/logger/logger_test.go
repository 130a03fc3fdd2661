// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"requestId": "r-1"}).
		Info("stage started", map[string]interface{}{"stage": "identify", "step": 1})
	log.WithError(errors.New("boom")).Error("stage failed", nil)
	log.Debug("debug line", map[string]interface{}{"cause": errors.New("inner")})

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "r-1", first["requestId"])
	assert.Equal(t, "identify", first["stage"])
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "inner", entries[2].ContextMap()["cause"])
}

func TestMapToZapFields_SortedKeys(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{"b": 1, "a": 2, "c": 3})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "c", fields[2].Key)
	assert.Nil(t, mapToZapFields(nil))
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	l := New("verbose", "json", "stdout")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	NewNoOpLogger().Info("ignored", nil)
	NewTestLogger(t).Info("visible in -v", map[string]interface{}{"k": "v"})
}

func TestNew_WritesToConfiguredOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greenguide.log")

	l := New("info", "json", path)
	l.Info("classification finished", zap.String("category", "recyclable"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"classification finished"`)
	assert.Contains(t, string(data), `"category":"recyclable"`)
}
