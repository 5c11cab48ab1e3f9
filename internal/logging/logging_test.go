package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	closeLog, err := Setup(dir, false, "info")
	require.NoError(t, err)

	log.Info("summarize failed", "err", "quota")
	log.Debug("hidden at info level")
	closeLog()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "summarize failed")
	assert.Contains(t, string(data), "err=quota")
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	dir := t.TempDir()

	closeLog, err := Setup(dir, false, "verbose")
	require.NoError(t, err)
	defer closeLog()

	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestSetupDebugUsesStderr(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "unused")

	closeLog, err := Setup(dir, true, "info")
	require.NoError(t, err)
	defer closeLog()

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
	install(os.Stderr, log.InfoLevel)
}
