package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	configPathVar = "KIDDO_CONFIG_PATH"
	envFileVar    = "KIDDO_ENV_FILE"
)

// EnvVar documents one supported environment variable
type EnvVar struct {
	Name        string
	Description string
	apply       func(*Config, string) error
}

func setString(fn func(*Config, string)) func(*Config, string) error {
	return func(c *Config, s string) error {
		fn(c, s)
		return nil
	}
}

func setBool(name string, fn func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, s string) error {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", name, s)
		}
		fn(c, b)
		return nil
	}
}

var supportedEnvVars = []EnvVar{
	{
		// Only here for documentation purposes.  It points at the config file so is handled before loading.
		Name:        configPathVar,
		Description: "Sets the path to the config file.  Default: OS-specific config directory",
		apply:       setString(func(c *Config, s string) {}),
	},
	{
		// Also documentation only, read before overrides are applied
		Name:        envFileVar,
		Description: "Sets the path to a .env file loaded at startup.  Default: .env",
		apply:       setString(func(c *Config, s string) {}),
	},
	{
		Name:        "KIDDO_CONFIG_PLAYER_TYPE",
		Description: "Sets the playback engine type.  One of `mpv` or `custom`.  Default: mpv",
		apply:       setString(func(c *Config, s string) { c.Player.Type = s }),
	},
	{
		Name:        "KIDDO_CONFIG_PLAYER_PATH",
		Description: "Sets the path to the player binary.  Default: mpv",
		apply:       setString(func(c *Config, s string) { c.Player.Path = s }),
	},
	{
		Name:        "KIDDO_CONFIG_PLAYER_ARGS",
		Description: "Sets extra arguments passed to the player.  Default: None",
		apply:       setString(func(c *Config, s string) { c.Player.Args = s }),
	},
	{
		Name:        "KIDDO_CONFIG_PLAYER_AUTOPLAY",
		Description: "Starts playback as soon as the player is ready.  Default: false",
		apply:       setBool("KIDDO_CONFIG_PLAYER_AUTOPLAY", func(c *Config, b bool) { c.Player.Autoplay = b }),
	},
	{
		Name:        "KIDDO_CONFIG_PLAYER_IPC_DIR",
		Description: "Sets the directory for player IPC sockets.  Default: XDG_RUNTIME_DIR or the temp directory",
		apply:       setString(func(c *Config, s string) { c.Player.IPCDir = s }),
	},
	{
		Name:        "KIDDO_CONFIG_MEDIA_SKIP_PROBE",
		Description: "Skips checking that a source is reachable before playing it.  Default: false",
		apply:       setBool("KIDDO_CONFIG_MEDIA_SKIP_PROBE", func(c *Config, b bool) { c.Media.SkipProbe = b }),
	},
	{
		Name:        "KIDDO_CONFIG_MEDIA_USER_AGENT",
		Description: "Sets the User-Agent used when probing sources.  Default: kiddo-player/<version>",
		apply:       setString(func(c *Config, s string) { c.Media.UserAgent = s }),
	},
	{
		Name:        "KIDDO_CONFIG_STATUS_LISTEN",
		Description: "Sets the listen address of the status and metrics server.  Default: disabled",
		apply:       setString(func(c *Config, s string) { c.Status.Listen = s }),
	},
	{
		Name:        "KIDDO_CONFIG_LOGGING_LEVEL",
		Description: "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply:       setString(func(c *Config, s string) { c.Logging.Level = s }),
	},
	{
		Name:        "KIDDO_CONFIG_LOGGING_FILE_PATH",
		Description: "Sets the logging file path.  Default: OS-specific",
		apply:       setString(func(c *Config, s string) { c.Logging.FilePath = s }),
	},
}

// SupportedEnvVars lists every environment variable the config understands
func SupportedEnvVars() []EnvVar {
	return append([]EnvVar(nil), supportedEnvVars...)
}

func applyEnvVarOverrides(c *Config) error {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.Name); value != "" {
			if err := envVar.apply(c, value); err != nil {
				return err
			}
		}
	}
	return nil
}
