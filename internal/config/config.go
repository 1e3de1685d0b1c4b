// Package config builds the merged client configuration once per
// invocation. Precedence, highest first: command line flag, environment
// variable, config file, default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment variables understood by the client.
const (
	EnvLizzyURL       = "LIZZY_URL"
	EnvTokenURL       = "OAUTH2_ACCESS_TOKEN_URL"
	EnvScopes         = "LIZZY_SCOPES"
	EnvCredentialsDir = "CREDENTIALS_DIR"
	EnvRegion         = "AWS_DEFAULT_REGION"
	EnvTLSVerify      = "LIZZY_TLS_VERIFY"
)

type Config struct {
	LizzyURL       string        `mapstructure:"lizzy_url"`
	TokenURL       string        `mapstructure:"token_url"`
	Scopes         []string      `mapstructure:"scopes"`
	CredentialsDir string        `mapstructure:"credentials_dir"`
	Region         string        `mapstructure:"region"`
	TLSVerify      bool          `mapstructure:"tls_verify"`
	Log            LogConfig     `mapstructure:"log"`
	Trace          TraceConfig   `mapstructure:"trace"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
	Poll           PollConfig    `mapstructure:"poll"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TraceConfig struct {
	Exporter string `mapstructure:"exporter"` // "", stdout, otlp
	Endpoint string `mapstructure:"endpoint"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// MissingError is returned for required settings that no source provided.
type MissingError struct {
	Env string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("Environment variable %s is not set.", e.Env)
}

// Load reads file (or the first default location that exists) into v and
// decodes the result. Flags must already be bound to v.
func Load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)
	bindEnv(v)

	if file == "" {
		file = defaultFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("configuration file not found: %s", file)
			}
			return nil, fmt.Errorf("error parsing config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Scopes = splitScopes(cfg.Scopes)
	return &cfg, nil
}

// Validate checks the settings every agent command needs.
func (c *Config) Validate() error {
	if c.TokenURL == "" {
		return &MissingError{Env: EnvTokenURL}
	}
	if c.LizzyURL == "" {
		return &MissingError{Env: EnvLizzyURL}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scopes", []string{"uid"})
	v.SetDefault("credentials_dir", "/meta/credentials")
	v.SetDefault("tls_verify", false)
	v.SetDefault("log.level", "")
	v.SetDefault("trace.exporter", "")
	v.SetDefault("trace.endpoint", "localhost:4317")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("poll.interval", 10*time.Second)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("lizzy")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names inherited from the stups tooling do not follow the prefix
	_ = v.BindEnv("lizzy_url", EnvLizzyURL)
	_ = v.BindEnv("token_url", EnvTokenURL)
	_ = v.BindEnv("scopes", EnvScopes)
	_ = v.BindEnv("credentials_dir", EnvCredentialsDir)
	_ = v.BindEnv("region", EnvRegion)
	_ = v.BindEnv("tls_verify", EnvTLSVerify)
}

func defaultFile() string {
	candidates := []string{"lizzy.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append([]string{filepath.Join(home, ".config", "lizzy", "config.yaml")}, candidates...)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// splitScopes accepts both lists and comma or space separated strings.
func splitScopes(scopes []string) []string {
	var out []string
	for _, s := range scopes {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}
