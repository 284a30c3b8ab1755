// Package config provides configuration management for savekeep using Viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/locator"
	"github.com/thoreinstein/savekeep/internal/paths"
	"github.com/thoreinstein/savekeep/pkg/fileutil"
)

// FileName is the config file name searched for in every config path.
const FileName = "config.yaml"

// Config represents the top-level configuration structure.
type Config struct {
	Version    int    `mapstructure:"version" yaml:"version"`
	ArchiveDir string `mapstructure:"archive_dir" yaml:"archive_dir"`

	// AccountID pins the Steam account cloud saves resolve to. Empty
	// matches any account.
	AccountID string `mapstructure:"account_id" yaml:"account_id,omitempty"`

	// Catalogs are rule catalog files (YAML or TOML), merged in order.
	Catalogs []string `mapstructure:"catalogs" yaml:"catalogs,omitempty"`

	// Applications are the installed applications savekeep knows about.
	Applications []locator.Application `mapstructure:"applications" yaml:"applications,omitempty"`

	MalformedManifest backup.Policy `mapstructure:"malformed_manifest" yaml:"malformed_manifest"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("SAVEKEEP")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("archive_dir", paths.DefaultArchiveDir())
	viper.SetDefault("malformed_manifest", string(backup.PolicyAbort))
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses defaults.
		case errors.As(err, &notFound), os.IsNotExist(err):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if cfg.ArchiveDir != "" {
		cfg.ArchiveDir = filepath.Clean(cfg.ArchiveDir)
	}

	return &cfg, nil
}

// Path returns the config file in use, or the default location when none
// was read.
func Path() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(paths.ConfigDir(), FileName)
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return err
	}
	return fileutil.AtomicWriteYAMLWithPerm(path, cfg, 0o600)
}

// SaveAccountID persists id as the configured account and makes it the
// current value.
func SaveAccountID(id string) error {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "unmarshaling config")
	}
	cfg.AccountID = id

	if err := Save(Path(), &cfg); err != nil {
		return errors.Wrap(err, "saving account id")
	}
	viper.Set("account_id", id)
	return nil
}
