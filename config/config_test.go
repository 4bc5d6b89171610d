package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, env+".yaml"), []byte(content), 0o600))
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LLM_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY", "LLM_API_KEY",
		"LLM_MODEL", "GOOGLE_CREDENTIALS_FILE", "SPREADSHEET_ID", "PORT", "GIN_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, "test", `
llm:
  api_key: file-key
sheets:
  spreadsheet_id: sheet-123
`)

	cfg, err := Load(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, int64(16), cfg.Server.MaxUploadMB)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "credentials.json", cfg.Sheets.CredentialsFile)
	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "Sheet1", cfg.Sheets.SheetName)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Run("OPENAI_API_KEY applies to openai provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("SPREADSHEET_ID", "env-sheet")
		t.Setenv("PORT", "8080")
		dir := writeConfig(t, "test", "server:\n  mode: release\n")

		cfg, err := Load(dir, "test")
		require.NoError(t, err)
		assert.Equal(t, "oa-key", cfg.LLM.APIKey)
		assert.Equal(t, "env-sheet", cfg.Sheets.SpreadsheetID)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "release", cfg.Server.Mode)
	})

	t.Run("gemini provider uses GEMINI_API_KEY and its default model", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "gm-key")
		dir := writeConfig(t, "test", "log:\n  level: warn\n")

		cfg, err := Load(dir, "test")
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.Equal(t, "gm-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
		assert.Empty(t, cfg.LLM.BaseURL)
	})

	t.Run("LLM_API_KEY wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("LLM_API_KEY", "generic-key")
		dir := writeConfig(t, "test", "{}\n")

		cfg, err := Load(dir, "test")
		require.NoError(t, err)
		assert.Equal(t, "generic-key", cfg.LLM.APIKey)
	})

	t.Run("APP_ENV selects the file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "staging")
		dir := writeConfig(t, "staging", "llm:\n  api_key: staging-key\n")

		cfg, err := Load(dir, "")
		require.NoError(t, err)
		assert.Equal(t, "staging-key", cfg.LLM.APIKey)
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing api key is fatal", func(t *testing.T) {
		clearEnv(t)
		dir := writeConfig(t, "test", "server:\n  port: 5001\n")
		_, err := Load(dir, "test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key")
	})

	t.Run("unknown provider", func(t *testing.T) {
		clearEnv(t)
		dir := writeConfig(t, "test", "llm:\n  provider: parrot\n  api_key: k\n")
		_, err := Load(dir, "test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parrot")
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(t.TempDir(), "nope")
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		clearEnv(t)
		dir := writeConfig(t, "test", "server: [unclosed\n")
		_, err := Load(dir, "test")
		require.Error(t, err)
	})
}

func TestLoad_ShippedFiles(t *testing.T) {
	for _, env := range []string{"local", "dev", "prod"} {
		t.Run(env+" openai", func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OPENAI_API_KEY", "oa-key")

			cfg, err := Load(".", env)
			require.NoError(t, err)
			assert.Equal(t, env, cfg.Env)
			assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
			assert.Equal(t, "gpt-4o", cfg.LLM.Model)
			assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
		})

		t.Run(env+" switched to gemini", func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LLM_PROVIDER", "gemini")
			t.Setenv("GEMINI_API_KEY", "gm-key")

			cfg, err := Load(".", env)
			require.NoError(t, err)
			assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
			assert.Equal(t, "gm-key", cfg.LLM.APIKey)
			assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
			assert.Empty(t, cfg.LLM.BaseURL)
		})
	}
}

func TestLoad_ProviderSwitchDropsFileValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	dir := writeConfig(t, "test", `
llm:
  provider: openai
  api_key: openai-file-key
  base_url: https://api.openai.com/v1
  model: gpt-4o
`)

	_, err := Load(dir, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")

	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("LLM_MODEL", "gemini-2.5-pro")
	cfg, err := Load(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, "gm-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.BaseURL)
}
