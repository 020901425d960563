package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchflow/backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "http", cfg.WeaviateScheme)
	assert.Equal(t, "gemini-1.5-flash", cfg.ChatModel)
	assert.Equal(t, 5, cfg.SearchTopK)
	assert.True(t, cfg.EnableEmbedWorker)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SEARCH_TOP_K", "12")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 12, cfg.SearchTopK)
	assert.Equal(t, 9000, cfg.ServerPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(c *config.Config) {}, false},
		{"missing db host", func(c *config.Config) { c.DBHost = "" }, true},
		{"missing db user", func(c *config.Config) { c.DBUser = "" }, true},
		{"missing db name", func(c *config.Config) { c.DBName = "" }, true},
		{"non-positive top k", func(c *config.Config) { c.SearchTopK = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DBHost: "h", DBUser: "u", DBName: "n", SearchTopK: 5}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrMissingRequired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
