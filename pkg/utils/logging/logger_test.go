package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_Levels(t *testing.T) {
	var console, file bytes.Buffer
	logger := newLogger(&console, &file)

	logger.Debug("snapshot loaded", zap.Int("families", 12))
	logger.Info("plan generated", zap.String("year_id", "y-1"))
	require.NoError(t, logger.Sync())

	assert.NotContains(t, console.String(), "snapshot loaded")
	assert.Contains(t, console.String(), "plan generated")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "snapshot loaded", entry["msg"])
	assert.EqualValues(t, 12, entry["families"])
	assert.Contains(t, entry, "timestamp")
}

func TestInitLogger_CreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := InitLogger("test", dir)
	require.NoError(t, err)
	logger.Debug("hello")
	_ = logger.Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "test_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".log"))
}
