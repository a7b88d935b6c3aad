// Package config loads reqtrack settings from defaults, an optional
// config.yaml, REQTRACK_* environment variables and command-line overrides,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix    = "REQTRACK"
	EnvConfigDir = "REQTRACK_CONFIG_DIR"

	DefaultUserID = "local"

	configName    = "config"
	defaultDBFile = "reqtrack.sqlite"
)

type Config struct {
	Store   StoreConfig   `mapstructure:"store" validate:"required"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log" validate:"required"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// SessionConfig names the signed-in user. It defaults to "local" so a
// single-user SQLite store works out of the box. An empty UserID means no
// session: the engine runs on in-memory state only and nothing is mirrored.
type SessionConfig struct {
	UserID string `mapstructure:"user_id" validate:"omitempty,max=128"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=console json"`
}

type Options struct {
	// File is an explicit config file. When empty, config.yaml in Dir() is
	// read if it exists.
	File string
	// Overrides are dotted keys (store.dsn, session.user_id, ...) set from flags.
	Overrides map[string]any
}

// Dir returns the config directory: $REQTRACK_CONFIG_DIR, or ~/.reqtrack.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".reqtrack"), nil
}

func Load(opts Options) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	v := viper.New()
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")
	v.SetDefault("session.user_id", DefaultUserID)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize(dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize(dir string) {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "sqlite3":
		c.Store.Driver = "sqlite"
	case "postgresql", "pgx":
		c.Store.Driver = "postgres"
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if c.Store.DSN == "" && c.Store.Driver == "sqlite" {
		c.Store.DSN = filepath.Join(dir, defaultDBFile)
	}
	c.Session.UserID = strings.TrimSpace(c.Session.UserID)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

var validate = validator.New()

// Validate reports every invalid field in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
