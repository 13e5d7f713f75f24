package env

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 6379
	DefaultDialTimeout = 5 * time.Second
	DefaultHTTPHost    = "0.0.0.0"
	DefaultHTTPPort    = 7380
	DefaultLogLevel    = "info"
)

type Config struct {
	// Server to send commands to
	Host string `env:"RESPWIRE_HOST" toml:"host"`
	Port int    `env:"RESPWIRE_PORT" toml:"port"`

	DialTimeout  time.Duration `env:"RESPWIRE_DIAL_TIMEOUT" toml:"-"`
	ReadTimeout  time.Duration `env:"RESPWIRE_READ_TIMEOUT" toml:"-"`
	WriteTimeout time.Duration `env:"RESPWIRE_WRITE_TIMEOUT" toml:"-"`

	// Where the HTTP gateway listens
	HTTPHost  string `env:"RESPWIRE_HTTP_HOST" toml:"http_host"`
	HTTPPort  int    `env:"RESPWIRE_HTTP_PORT" toml:"http_port"`
	DebugHTTP bool   `env:"RESPWIRE_DEBUG_HTTP" toml:"debug_http"`

	LogLevel string `env:"RESPWIRE_LOG_LEVEL" toml:"log_level"`
	Trace    bool   `env:"RESPWIRE_TRACE" toml:"trace"`
}

// fileConfig is the TOML shape of Config. Durations are written as strings
// such as "1.5s".
type fileConfig struct {
	Config

	DialTimeout  string `toml:"dial_timeout"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
}

// LoadConfig builds the configuration from, in order of precedence, the
// environment (including .env.local), the TOML file at path when path is
// not empty, and the defaults.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	if path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		config.merge(fromFile)
	}

	config.merge(&Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		DialTimeout: DefaultDialTimeout,
		HTTPHost:    DefaultHTTPHost,
		HTTPPort:    DefaultHTTPPort,
		LogLevel:    DefaultLogLevel,
	})

	return &config, nil
}

// LoadFile reads a TOML config file.
func LoadFile(path string) (*Config, error) {
	var raw fileConfig

	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("Failed to read config file %s: %w", path, err)
	}

	config := raw.Config

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"dial_timeout", raw.DialTimeout, &config.DialTimeout},
		{"read_timeout", raw.ReadTimeout, &config.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &config.WriteTimeout},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}

		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("Invalid %s in %s: %w", d.name, path, err)
		}

		*d.dst = parsed
	}

	return &config, nil
}

// merge fills every zero field of c from other.
func (c *Config) merge(other *Config) {
	if c.Host == "" {
		c.Host = other.Host
	}
	if c.Port == 0 {
		c.Port = other.Port
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = other.DialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = other.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if c.HTTPHost == "" {
		c.HTTPHost = other.HTTPHost
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = other.HTTPPort
	}
	if c.LogLevel == "" {
		c.LogLevel = other.LogLevel
	}

	c.DebugHTTP = c.DebugHTTP || other.DebugHTTP
	c.Trace = c.Trace || other.Trace
}
