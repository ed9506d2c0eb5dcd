package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "UPLOAD_DIR", "MAX_UPLOAD_MB", "CORS_ALLOW_ORIGIN", "KEYWORD_LIMIT", "LOG_FILE", "VERBOSE"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"upload_dir": "/tmp/cvs",
		"max_upload_mb": 5,
		"cors_allow_origin": "https://cv.example.com",
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/cvs", cfg.UploadDir)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, "https://cv.example.com", cfg.AllowOrigin)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"empty path", "", "config path is empty"},
		{"missing file", "/nonexistent/path/config.json", "failed to read config file"},
		{"invalid json", writeConfig(t, `{ invalid json }`), "failed to parse config JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultKeywordLimit, cfg.KeywordLimit)
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port too high", func(c *Config) { c.Port = 70000 }, "Port"},
		{"port zero", func(c *Config) { c.Port = 0 }, "Port"},
		{"upload limit", func(c *Config) { c.MaxUploadMB = 500 }, "MaxUploadMB"},
		{"keyword limit", func(c *Config) { c.KeywordLimit = 0 }, "KeywordLimit"},
		{"origin", func(c *Config) { c.AllowOrigin = "" }, "AllowOrigin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{Port: 3000, LogFile: "server.log"}
	merged := partial.MergeWithDefaults(Default())

	assert.Equal(t, 3000, merged.Port)
	assert.Equal(t, "server.log", merged.LogFile)
	assert.Equal(t, DefaultUploadDir, merged.UploadDir)
	assert.Equal(t, DefaultMaxUploadMB, merged.MaxUploadMB)
	assert.Equal(t, DefaultAllowOrigin, merged.AllowOrigin)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("UPLOAD_DIR", "/data/uploads")
	t.Setenv("VERBOSE", "true")

	cfg, err := FromEnv(Default())
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "/data/uploads", cfg.UploadDir)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, DefaultMaxUploadMB, cfg.MaxUploadMB)
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "ten")

	_, err := FromEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_UPLOAD_MB")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"port": 9090, "keyword_limit": 12}`)
	t.Setenv("PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, 12, cfg.KeywordLimit)
	assert.Equal(t, DefaultUploadDir, cfg.UploadDir)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("KEYWORD_LIMIT", "1000")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KeywordLimit")
}
