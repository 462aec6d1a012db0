package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err) // an explicit path must exist

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", cfg.ModelName)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, "Europe/Kyiv", cfg.Timezone)
	assert.Equal(t, 5, cfg.MaxSlots)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
google_api_key: test-key
calendar_id: team@example.com
model_name: gemini-1.5-pro
max_slots: 3
development: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.GoogleAPIKey)
	assert.Equal(t, "team@example.com", cfg.CalendarID)
	assert.Equal(t, "gemini-1.5-pro", cfg.ModelName)
	assert.Equal(t, 3, cfg.MaxSlots)
	assert.True(t, cfg.Development)
	// Untouched keys keep their defaults.
	assert.Equal(t, "Europe/Kyiv", cfg.Timezone)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("COSTCARE_MODEL_NAME", "gemini-env")
	t.Setenv("COSTCARE_TOP_K", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-env", cfg.ModelName)
	assert.Equal(t, 7, cfg.TopK)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google_api_key is required")
	assert.Contains(t, err.Error(), "calendar_id is required")

	cfg.GoogleAPIKey = "key"
	cfg.CalendarID = "team@example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Temperature = 3
	cfg.ChunkOverlap = cfg.ChunkSize
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
	assert.Contains(t, err.Error(), "chunk_overlap")
}
