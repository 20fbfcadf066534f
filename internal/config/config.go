// Package config handles application configuration using Viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/upload"
)

const (
	// EnvPrefix prefixes every environment override, e.g. REZAI_API_BASE_URL.
	EnvPrefix = "REZAI"

	// DotEnvBaseURL is the key read from a project .env file.
	DotEnvBaseURL = "VITE_API_BASE_URL"

	// DefaultDirName is the home directory name under the user's home.
	DefaultDirName = ".rezai-admin"
)

// Config holds the application configuration.
type Config struct {
	Home   string       `mapstructure:"home" json:"home" yaml:"home"`
	API    APIConfig    `mapstructure:"api" json:"api" yaml:"api"`
	Upload UploadConfig `mapstructure:"upload" json:"upload" yaml:"upload"`
	Log    LogConfig    `mapstructure:"log" json:"log" yaml:"log"`

	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry" yaml:"telemetry"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" json:"file,omitempty" yaml:"file,omitempty"`
}

// APIConfig locates the admin API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" json:"baseUrl" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// UploadConfig locates the image host used for option icons.
type UploadConfig struct {
	Endpoint  string `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	CloudName string `mapstructure:"cloud_name" json:"cloudName" yaml:"cloud_name"`
	Preset    string `mapstructure:"preset" json:"preset" yaml:"preset"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// TelemetryConfig controls OpenTelemetry tracing of API calls.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure   bool    `mapstructure:"insecure" json:"insecure,omitempty" yaml:"insecure,omitempty"`
	SampleRate float64 `mapstructure:"sample_rate" json:"sampleRate" yaml:"sample_rate"`
}

// Options are the inputs to Load that come from flags.
type Options struct {
	// ConfigPath is an explicit config file; empty searches <home>/config.yaml.
	ConfigPath string
	// Home overrides the home directory.
	Home string
	// DotEnvPath is the .env file consulted for the API base URL.
	DotEnvPath string
	// Overrides are applied last, keyed by config key.
	Overrides map[string]any
}

// Load reads configuration from defaults, .env, file, environment and overrides,
// in increasing order of precedence.
func Load(opts Options) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := loadDotEnv(v, opts.DotEnvPath); err != nil {
		return nil, err
	}

	home := opts.Home
	if home == "" {
		home = v.GetString("home")
	}
	home = expandHome(home)
	v.Set("home", home)

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
	} else {
		v.AddConfigPath(home)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is OK, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigPath != "" {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read config file", err).
				WithSuggestion("Check the file exists and is valid YAML")
		}
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	cfg.Home = home
	cfg.File = v.ConfigFileUsed()
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("home", filepath.Join(home, DefaultDirName))
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("upload.endpoint", "")
	v.SetDefault("upload.cloud_name", "dekm9hhq1")
	v.SetDefault("upload.preset", "rezzipeai")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// loadDotEnv seeds api.base_url from a .env file. A missing file is fine.
func loadDotEnv(v *viper.Viper, path string) error {
	if path == "" {
		path = ".env"
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("failed to read %s", path), err)
	}
	if base := env[DotEnvBaseURL]; base != "" {
		v.SetDefault("api.base_url", base)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Validate checks the settings every API command needs.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New(errors.ErrCodeConfigMissing, "api.base_url is not set").
			WithSuggestions(
				"Pass --api-url https://api.example.com",
				"Set REZAI_API_BASE_URL or VITE_API_BASE_URL in .env",
				"Add api.base_url to "+c.DefaultConfigPath(),
			)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.NewConfigError("api.base_url", fmt.Sprintf("%q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		return errors.NewConfigError("api.timeout", "must not be negative")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.NewConfigError("telemetry.sample_rate", "must be between 0 and 1")
	}
	return nil
}

// DefaultConfigPath is where Load looks for a config file.
func (c *Config) DefaultConfigPath() string {
	return filepath.Join(c.Home, "config.yaml")
}

// SessionPath is the persisted session jar.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}

// LogPath is the console log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Home, "logs", "rezai-admin.log")
}

// UploadTarget converts the upload section for the uploader.
func (c *Config) UploadTarget() upload.Config {
	return upload.Config{
		Endpoint:  c.Upload.Endpoint,
		CloudName: c.Upload.CloudName,
		Preset:    c.Upload.Preset,
	}
}
