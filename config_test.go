package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile points the config loader at a file that does not exist.
func noEnvFile(t *testing.T) {
	t.Setenv("CROSSWORD_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadConfigDefaults(t *testing.T) {
	noEnvFile(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultGridSize, cfg.GridSize)
	assert.Equal(t, defaultModel, cfg.GeminiModel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	noEnvFile(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CROSSWORD_GRID_SIZE", "15")
	t.Setenv("CROSSWORD_LOG_FORMAT", "json")
	t.Setenv("GCP_PROJECT_ID", "demo-project")
	t.Setenv("CROSSWORD_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15, cfg.GridSize)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "demo-project", cfg.GCPProjectID)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigPrefixedWins(t *testing.T) {
	noEnvFile(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CROSSWORD_PORT", "7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoadConfigEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CROSSWORD_WORDS_FILE=words/animaux.hcl\n"), 0o644))
	t.Setenv("CROSSWORD_ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("CROSSWORD_WORDS_FILE") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "words/animaux.hcl", cfg.WordsFile)
}

func TestLoadConfigInvalidGridSize(t *testing.T) {
	noEnvFile(t)
	t.Setenv("CROSSWORD_GRID_SIZE", "2")

	_, err := LoadConfig()
	assert.Error(t, err)
}
