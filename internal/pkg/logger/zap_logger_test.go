package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZapLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := NewZapLogger(Options{FilePath: path, Production: true, Level: "info"})

	log.Debug("cache", "dropped", nil)
	log.Info("indexing", "Document indexed", map[string]interface{}{"chunks": 3})
	log.Error("retrieval", "Retrieval failed", map[string]interface{}{"error": "boom"})
	_ = log.Sync()

	entries := readLines(t, path)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "indexing", entries[0]["module"])
	assert.Equal(t, "Document indexed", entries[0]["message"])
	assert.NotContains(t, entries[0], "error_ref")

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error_ref"])
}

func TestZapLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := NewZapLogger(Options{FilePath: path, Production: true, Level: "chatty"})

	log.Debug("cache", "hidden", nil)
	log.Warn("cache", "shown", nil)
	_ = log.Sync()

	entries := readLines(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Error("any", "nothing happens", nil)
	assert.NoError(t, log.Sync())
}
