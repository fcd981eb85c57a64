// Package config loads poker settings from a TOML file and POKER_ env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pengelbrecht/poker/internal/logger"
	"github.com/pengelbrecht/poker/internal/poker"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig
	Push    PushConfig
	User    UserConfig
	Session SessionConfig
	Send    SendConfig
	Log     LogConfig
	Relay   RelayConfig
}

// ServerConfig points at the HTTP endpoint that accepts outbound actions.
type ServerConfig struct {
	URL string
}

// PushConfig configures the Redis push channel.
type PushConfig struct {
	RedisURL      string `mapstructure:"redis_url"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// UserConfig identifies the local participant.
type UserConfig struct {
	Name string
}

// SessionConfig holds per-session view settings.
type SessionConfig struct {
	Estimates string
}

// SendConfig bounds outbound requests.
type SendConfig struct {
	Timeout time.Duration
}

// LogConfig controls the log file.
type LogConfig struct {
	Path  string
	Debug bool
}

// RelayConfig configures the development relay server.
type RelayConfig struct {
	Addr string
}

const envPrefix = "POKER"

// Path returns the config file location: $POKER_CONFIG, or
// config.toml under the user config directory.
func Path() string {
	if p := os.Getenv("POKER_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "poker", "config.toml")
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("push.redis_url", "redis://localhost:6379/0")
	v.SetDefault("push.channel_prefix", "poker:session")
	v.SetDefault("user.name", defaultUser())
	v.SetDefault("session.estimates", poker.DefaultEstimates)
	v.SetDefault("send.timeout", 10*time.Second)
	v.SetDefault("log.path", logger.DefaultPath())
	v.SetDefault("log.debug", false)
	v.SetDefault("relay.addr", ":8080")

	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from Path() and the environment. A missing file is
// not an error; a malformed one is.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads configuration from path and the environment.
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Send.Timeout < 0 {
		return Config{}, fmt.Errorf("send.timeout must not be negative")
	}
	return c, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.url", cfg.Server.URL)
	v.Set("push.redis_url", cfg.Push.RedisURL)
	v.Set("push.channel_prefix", cfg.Push.ChannelPrefix)
	v.Set("user.name", cfg.User.Name)
	v.Set("session.estimates", cfg.Session.Estimates)
	v.Set("send.timeout", cfg.Send.Timeout.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.debug", cfg.Log.Debug)
	v.Set("relay.addr", cfg.Relay.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
