package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "ZB"

// Config keys.
const (
	KeyDatabasePath    = "database.path"
	KeyStartMonth      = "budget.start_month"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	DefaultDatabaseDir = "~/.local/share/zb"
)

// Config is the validated application configuration.
type Config struct {
	// StartMonth is the first navigable month. Zero means "not configured".
	StartMonth   model.Month
	DatabasePath string
	LogFormat    string
	LogLevel     slog.Level
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabaseDir+"/zb.db")
	v.SetDefault(KeyStartMonth, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// LoadDotEnv loads a .env file from the working directory. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("Loaded environment file", "path", path)
	return nil
}

// Load reads the typed configuration from v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	level, err := common.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, err
	}

	format := v.GetString(KeyLogFormat)
	if format != "console" && format != "json" {
		return Config{}, fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, format)
	}

	cfg := Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:     level,
		LogFormat:    format,
	}
	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	if s := v.GetString(KeyStartMonth); s != "" {
		m, err := model.ParseMonth(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyStartMonth, err)
		}
		cfg.StartMonth = m
	}

	return cfg, nil
}
