package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(200<<20), cfg.Upload.MaxFileSize)
	assert.Equal(t, 10000, cfg.Upload.LargeFileRowLimit)
	assert.Equal(t, []string{"xlsx", "xls", "csv", "pdf"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "yandexgpt-lite", cfg.AI.Yandex.Model)
	assert.Equal(t, "GIGACHAT_API_PERS", cfg.AI.GigaChat.Scope)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tempDir := t.TempDir()

	os.Setenv("DATASIGHT_SERVER_PORT", "9999")
	os.Setenv("DATASIGHT_PATHS_EXECUTABLE_DIR", tempDir)
	os.Setenv("DATASIGHT_AI_YANDEX_API_KEY", "test-key")
	defer func() {
		os.Unsetenv("DATASIGHT_SERVER_PORT")
		os.Unsetenv("DATASIGHT_PATHS_EXECUTABLE_DIR")
		os.Unsetenv("DATASIGHT_AI_YANDEX_API_KEY")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.AI.Yandex.APIKey)
	assert.Equal(t, filepath.Join(tempDir, "uploads"), cfg.GetUploadsDir())
	assert.Equal(t, filepath.Join(tempDir, "reports"), cfg.GetReportsDir())
}

func TestLoad_InvalidPort(t *testing.T) {
	os.Setenv("DATASIGHT_SERVER_PORT", "-1")
	os.Setenv("DATASIGHT_PATHS_EXECUTABLE_DIR", t.TempDir())
	defer func() {
		os.Unsetenv("DATASIGHT_SERVER_PORT")
		os.Unsetenv("DATASIGHT_PATHS_EXECUTABLE_DIR")
	}()

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestAllowedExtension(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name string
		ext  string
		want bool
	}{
		{name: "xlsx with dot", ext: ".xlsx", want: true},
		{name: "csv without dot", ext: "csv", want: true},
		{name: "uppercase", ext: ".PDF", want: true},
		{name: "rejected", ext: ".exe", want: false},
		{name: "empty", ext: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.AllowedExtension(tt.ext))
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	tempDir := t.TempDir()

	cfg := Default()
	cfg.Paths.ExecutableDir = tempDir
	require.NoError(t, cfg.resolvePaths())
	require.NoError(t, cfg.EnsureDirectories())

	for _, dir := range []string{cfg.GetUploadsDir(), cfg.GetReportsDir(), cfg.GetLogsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
}
