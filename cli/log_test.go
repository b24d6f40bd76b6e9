package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_StderrLevel(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeFn, err := newLogger(logOptions{Stderr: &stderr})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Warn("shown", "key", "value")

	out := stderr.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}

func TestNewLogger_VerboseJSON(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeFn, err := newLogger(logOptions{Verbose: true, JSON: true, Stderr: &stderr})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("probing", "profile", "work")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &rec))
	assert.Equal(t, "probing", rec["msg"])
	assert.Equal(t, "work", rec["profile"])
}

func TestNewLogger_File(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "ghup.log")

	logger, closeFn, err := newLogger(logOptions{File: path, Stderr: &stderr})
	require.NoError(t, err)

	logger.With("component", "switcher").Debug("applied identity")
	logger.Warn("ssh config untouched")
	closeFn()
	closeFn()

	assert.NotContains(t, stderr.String(), "applied identity", "stderr stays at warn")
	assert.Contains(t, stderr.String(), "ssh config untouched")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "applied identity", first["msg"])
	assert.Equal(t, "switcher", first["component"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewLogger_FileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, _, err := newLogger(logOptions{File: filepath.Join(blocker, "ghup.log"), Stderr: &bytes.Buffer{}})
	assert.Error(t, err)
}
