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

// EnvPrefix prefixes every environment override, e.g. ADMINBOARD_API_BASE_URL.
const EnvPrefix = "ADMINBOARD"

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Query   QueryConfig   `mapstructure:"query"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	UserAgent  string        `mapstructure:"user_agent"`
}

type QueryConfig struct {
	Debounce        time.Duration `mapstructure:"debounce"`
	PeoplePageSize  int           `mapstructure:"people_page_size"`
	CatalogPageSize int           `mapstructure:"catalog_page_size"`
	PageSizes       []int         `mapstructure:"page_sizes"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type LogConfig struct {
	File  string `mapstructure:"file"` // empty: next to the database
	Level string `mapstructure:"level"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://dummyjson.com",
			Timeout:    30 * time.Second,
			SessionTTL: 60 * time.Minute,
			UserAgent:  "adminboard/1.0",
		},
		Query: QueryConfig{
			Debounce:        500 * time.Millisecond,
			PeoplePageSize:  10,
			CatalogPageSize: 12,
			PageSizes:       []int{5, 10, 20, 50},
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "adminboard")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "adminboard")
}

func defaultDBPath() string {
	return filepath.Join(configDir(), "adminboard.db")
}

// DefaultPath is where config init writes and Load looks by default
func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.session_ttl", cfg.API.SessionTTL)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("query.debounce", cfg.Query.Debounce)
	v.SetDefault("query.people_page_size", cfg.Query.PeoplePageSize)
	v.SetDefault("query.catalog_page_size", cfg.Query.CatalogPageSize)
	v.SetDefault("query.page_sizes", cfg.Query.PageSizes)
	v.SetDefault("storage.db_path", cfg.Storage.DBPath)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
}

// Load reads configuration from defaults, the config file and ADMINBOARD_*
// environment variables, in increasing priority. A missing default config
// file is not an error; a missing explicit one is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.Query.Debounce < 0 {
		errs = append(errs, errors.New("query.debounce must not be negative"))
	}
	if c.Query.PeoplePageSize <= 0 {
		errs = append(errs, fmt.Errorf("query.people_page_size must be positive, got %d", c.Query.PeoplePageSize))
	}
	if c.Query.CatalogPageSize <= 0 {
		errs = append(errs, fmt.Errorf("query.catalog_page_size must be positive, got %d", c.Query.CatalogPageSize))
	}
	for _, n := range c.Query.PageSizes {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("query.page_sizes entries must be positive, got %d", n))
			break
		}
	}
	if c.Storage.DBPath == "" {
		errs = append(errs, errors.New("storage.db_path must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LogPath returns the log file, defaulting to adminboard.log beside the database
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(filepath.Dir(c.Storage.DBPath), "adminboard.log")
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func Save(cfg *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	v.Set("api", map[string]interface{}{
		"base_url":    cfg.API.BaseURL,
		"timeout":     cfg.API.Timeout.String(),
		"session_ttl": cfg.API.SessionTTL.String(),
		"user_agent":  cfg.API.UserAgent,
	})
	v.Set("query", map[string]interface{}{
		"debounce":          cfg.Query.Debounce.String(),
		"people_page_size":  cfg.Query.PeoplePageSize,
		"catalog_page_size": cfg.Query.CatalogPageSize,
		"page_sizes":        cfg.Query.PageSizes,
	})
	v.Set("storage", map[string]interface{}{
		"db_path": cfg.Storage.DBPath,
	})
	v.Set("log", map[string]interface{}{
		"file":  cfg.Log.File,
		"level": cfg.Log.Level,
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefault(path string) error {
	return Save(defaultConfig(), path)
}
