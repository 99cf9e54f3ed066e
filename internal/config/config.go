package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Rooms      RoomsConfig     `mapstructure:"rooms"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	ICEServers []ICEServer     `mapstructure:"ice_servers"`
}

type RateLimitConfig struct {
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type RoomsConfig struct {
	// DefaultMaxParticipants applies to rooms created without a meeting; 0 is unlimited.
	DefaultMaxParticipants int           `mapstructure:"default_max_participants"`
	ReconnectGrace         time.Duration `mapstructure:"reconnect_grace"`
	MaxNameLen             int           `mapstructure:"max_name_len"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

const envPrefix = "HUDDLE"

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default).
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads one YAML file on top of the defaults. A missing file is not
// an error; HUDDLE_* variables override both.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("rate_limit.messages_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("rooms.default_max_participants", 0)
	v.SetDefault("rooms.reconnect_grace", "0s")
	v.SetDefault("rooms.max_name_len", 64)

	v.SetDefault("metrics.enabled", true)
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Mode != "debug" && c.Mode != "release" && c.Mode != "test" {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, errors.New("read_limit must be positive"))
	}
	if c.PingPeriod <= 0 || c.PongWait <= c.PingPeriod {
		errs = append(errs, errors.New("pong_wait must exceed a positive ping_period"))
	}
	if c.WriteWait <= 0 {
		errs = append(errs, errors.New("write_wait must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.RateLimit.MessagesPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit values must be positive"))
	}
	if c.Rooms.DefaultMaxParticipants < 0 {
		errs = append(errs, errors.New("rooms.default_max_participants must not be negative"))
	}
	if c.Rooms.ReconnectGrace < 0 {
		errs = append(errs, errors.New("rooms.reconnect_grace must not be negative"))
	}
	if c.Rooms.MaxNameLen <= 0 {
		errs = append(errs, errors.New("rooms.max_name_len must be positive"))
	}
	for i, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			errs = append(errs, fmt.Errorf("ice_servers[%d] has no urls", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Debug reports whether the server runs in gin debug mode.
func (c *Config) Debug() bool { return c.Mode == "debug" }
