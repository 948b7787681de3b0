package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Token store backends.
const (
	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

// Transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the effective server configuration.
type Config struct {
	CredentialsPath string `mapstructure:"credentials_path" yaml:"credentials_path"`
	TokenDir        string `mapstructure:"token_dir" yaml:"token_dir"`
	TokenStore      string `mapstructure:"token_store" yaml:"token_store"`

	Transport string `mapstructure:"transport" yaml:"transport"`
	HTTPAddr  string `mapstructure:"http_addr" yaml:"http_addr"`

	ReadOnly        bool `mapstructure:"read_only" yaml:"read_only"`
	StrictArguments bool `mapstructure:"strict_arguments" yaml:"strict_arguments"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`

	N8NBaseURL string `mapstructure:"n8n_base_url" yaml:"n8n_base_url"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// MetricsConfig controls the dedicated Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// Options tells Load where to look.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string
	// EnvFile is loaded into the environment if present (default ".env").
	EnvFile string
	// Flags are bound with the highest priority. Only flags the user set
	// override lower sources.
	Flags *pflag.FlagSet
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"transport":       "transport",
	"http-addr":       "http_addr",
	"read-only":       "read_only",
	"metrics-enabled": "metrics.enabled",
	"metrics-addr":    "metrics.addr",
	"credentials":     "credentials_path",
	"token-dir":       "token_dir",
	"token-store":     "token_store",
	"log-format":      "log_format",
}

// envAliases are accepted in addition to GMAILMCP_<KEY>.
var envAliases = map[string][]string{
	"credentials_path": {"GMAIL_CREDENTIALS_PATH"},
	"token_dir":        {"GMAIL_TOKEN_PATH"},
	"n8n_base_url":     {"N8N_WEBHOOK_BASE_URL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("credentials_path", "")
	v.SetDefault("token_dir", "")
	v.SetDefault("token_store", TokenStoreFile)
	v.SetDefault("transport", TransportStdio)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("read_only", false)
	v.SetDefault("strict_arguments", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("rate_burst", 20)
	v.SetDefault("n8n_base_url", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
}

// DefaultPath returns $XDG_CONFIG_HOME/gmailmcp/config.yaml or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(dir, "gmailmcp", "config.yaml")
}

// Load resolves the configuration from flags, environment, config file and
// .env file, in that order of priority.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("GMAILMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{"GMAILMCP_" + strings.ToUpper(key)}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	path := opts.File
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if !missing || opts.File != "" {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown enum values and negative rates.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("invalid transport %q: must be %s or %s", c.Transport, TransportStdio, TransportStreamableHTTP)
	}
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreKeyring:
	default:
		return fmt.Errorf("invalid token_store %q: must be %s or %s", c.TokenStore, TokenStoreFile, TokenStoreKeyring)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("rate_limit and rate_burst must not be negative")
	}
	return nil
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}
