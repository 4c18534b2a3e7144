package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	tmpConfigPath := filepath.Join(tmpDir, "config.yaml")
	setEnv(t, configPathVar, tmpConfigPath)
	// Point at a file that doesn't exist so a stray .env in the working directory can't leak in
	setEnv(t, envFileVar, filepath.Join(tmpDir, "missing.env"))

	t.Cleanup(func() {
		cleanupEnvVars(t)
	})

	return tmpConfigPath
}

// TestConfigIntegration tests the config package with actual file operations
// This test uses a temporary directory to avoid interfering with real user configs
func TestConfigIntegration(t *testing.T) {
	// Test loading when no config exists (should create default)
	t.Run("LoadDefaultConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		config := loadConfig(t)

		// Verify default values
		assert.Equal(t, "mpv", config.Player.Type)
		assert.Equal(t, "mpv", config.Player.Path)
		assert.False(t, config.Player.Autoplay)
		assert.False(t, config.Media.SkipProbe)
		assert.Empty(t, config.Status.Listen)
		assert.Equal(t, "info", config.Logging.Level)
		assert.NotEmpty(t, config.Logging.FilePath)

		// Verify file was created
		_, err := os.Stat(tmpConfigPath)
		require.NoError(t, err, "config file was not created at %s", tmpConfigPath)

		// Load the file from disk to assert that the 'dynamic' configurations were not saved when the default config was written
		savedConfig, _ := loadFromDisk(tmpConfigPath)
		assert.Empty(t, savedConfig.Logging.FilePath)
	})

	// Test saving and loading custom values
	t.Run("SaveAndLoadConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		customConfig := &Config{
			Player: PlayerConfig{
				Type:     "custom",
				Path:     "/opt/mpv/bin/mpv",
				Args:     "--fullscreen",
				Autoplay: true,
				IPCDir:   "/run/kiddo",
			},
			Media: MediaConfig{
				SkipProbe: true,
				UserAgent: "lesson-bot/1.0",
			},
			Status: StatusConfig{
				Listen: "127.0.0.1:9090",
			},
			Logging: LoggingConfig{
				Level:    "error",
				FilePath: "/var/log/kiddo-player.log",
			},
		}

		saveConfig(t, customConfig, tmpConfigPath)
		loadedConfig := loadConfig(t)

		assert.Equal(t, "custom", loadedConfig.Player.Type)
		assert.Equal(t, "/opt/mpv/bin/mpv", loadedConfig.Player.Path)
		assert.Equal(t, "--fullscreen", loadedConfig.Player.Args)
		assert.True(t, loadedConfig.Player.Autoplay)
		assert.Equal(t, "/run/kiddo", loadedConfig.Player.IPCDir)
		assert.True(t, loadedConfig.Media.SkipProbe)
		assert.Equal(t, "lesson-bot/1.0", loadedConfig.Media.UserAgent)
		assert.Equal(t, "127.0.0.1:9090", loadedConfig.Status.Listen)
		assert.Equal(t, "error", loadedConfig.Logging.Level)
		assert.Equal(t, "/var/log/kiddo-player.log", loadedConfig.Logging.FilePath)
	})

	// Test invalid YAML handling
	t.Run("InvalidConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		require.NoError(t, os.WriteFile(tmpConfigPath, []byte("invalid: yaml: ["), 0600))

		_, err := Load()
		assert.Error(t, err, "expected error when loading invalid YAML")
	})

	t.Run("EnvironmentVariableOverrides", func(t *testing.T) {
		setupTestConfig(t)

		setEnv(t, "KIDDO_CONFIG_PLAYER_TYPE", "custom")
		setEnv(t, "KIDDO_CONFIG_PLAYER_PATH", "/mpv")
		setEnv(t, "KIDDO_CONFIG_PLAYER_ARGS", "--fullscreen")
		setEnv(t, "KIDDO_CONFIG_PLAYER_AUTOPLAY", "true")
		setEnv(t, "KIDDO_CONFIG_MEDIA_SKIP_PROBE", "1")
		setEnv(t, "KIDDO_CONFIG_STATUS_LISTEN", ":9191")
		setEnv(t, "KIDDO_CONFIG_LOGGING_LEVEL", "warn")
		setEnv(t, "KIDDO_CONFIG_LOGGING_FILE_PATH", "/kiddo-player.log")

		config := loadConfig(t)

		assert.Equal(t, "custom", config.Player.Type)
		assert.Equal(t, "/mpv", config.Player.Path)
		assert.Equal(t, "--fullscreen", config.Player.Args)
		assert.True(t, config.Player.Autoplay)
		assert.True(t, config.Media.SkipProbe)
		assert.Equal(t, ":9191", config.Status.Listen)
		assert.Equal(t, "warn", config.Logging.Level)
		assert.Equal(t, "/kiddo-player.log", config.Logging.FilePath)

		// Remove one override, then reload the config.
		// This ensures that the env var overrides were not persisted to disk.
		unsetEnv(t, "KIDDO_CONFIG_LOGGING_LEVEL")

		config = loadConfig(t)

		assert.Equal(t, "info", config.Logging.Level)
	})

	t.Run("InvalidBooleanOverride", func(t *testing.T) {
		setupTestConfig(t)
		setEnv(t, "KIDDO_CONFIG_PLAYER_AUTOPLAY", "sometimes")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KIDDO_CONFIG_PLAYER_AUTOPLAY")
	})

	t.Run("EnvFile", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		envFile := filepath.Join(filepath.Dir(tmpConfigPath), "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("KIDDO_CONFIG_STATUS_LISTEN=127.0.0.1:7070\nKIDDO_CONFIG_LOGGING_LEVEL=debug\n"), 0600))
		setEnv(t, envFileVar, envFile)
		// Already set variables win over the file
		setEnv(t, "KIDDO_CONFIG_LOGGING_LEVEL", "error")

		config := loadConfig(t)

		assert.Equal(t, "127.0.0.1:7070", config.Status.Listen)
		assert.Equal(t, "error", config.Logging.Level)
	})

	t.Run("ModifyConfig", func(t *testing.T) {
		setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, "mpv", config.Player.Type)

		err := UpdateConfig(func(config *Config) {
			config.Player.Type = "custom"
		})
		require.NoError(t, err, "failed to update config")

		// Reload the config and ensure it has the new value
		config = loadConfig(t)
		assert.Equal(t, "custom", config.Player.Type)
	})
}

func TestSupportedEnvVars(t *testing.T) {
	vars := SupportedEnvVars()
	require.NotEmpty(t, vars)

	seen := make(map[string]bool)
	for _, v := range vars {
		assert.True(t, strings.HasPrefix(v.Name, "KIDDO_"), "unexpected variable %s", v.Name)
		assert.NotEmpty(t, v.Description, "missing description for %s", v.Name)
		assert.False(t, seen[v.Name], "duplicate variable %s", v.Name)
		seen[v.Name] = true
	}
	assert.True(t, seen[configPathVar])
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, os.Setenv(key, value), "failed to set environment variable")
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, os.Unsetenv(key), "failed to unset environment variable")
}

func saveConfig(t *testing.T, config *Config, configPath string) {
	t.Helper()
	require.NoError(t, save(config, configPath), "failed to save config")
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load()
	require.NoError(t, err, "loading of config failed")
	return config
}

// Removes any env vars with the KIDDO_ prefix to ensure test isolation
func cleanupEnvVars(t *testing.T) {
	t.Helper()

	for _, envVar := range os.Environ() {
		if key := strings.Split(envVar, "=")[0]; strings.HasPrefix(key, "KIDDO_") {
			unsetEnv(t, key)
		}
	}
}
