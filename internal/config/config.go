// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "file" or "postgres"
	Key      string         `yaml:"key"`
	Dir      string         `yaml:"dir"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: StorageFile,
			Key:  "goals",
			Dir:  ".goals",
			Database: DatabaseConfig{
				MaxConnections: 10,
				MinConnections: 2,
				IdleTimeout:    5 * time.Minute,
			},
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// GOALS_STORAGE_TYPE, GOALS_STORAGE_DIR and GOALS_DATABASE_URL win over the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("open %s: %w", path, err)
	default:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GOALS_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("GOALS_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("GOALS_DATABASE_URL"); v != "" {
		c.Storage.Database.URL = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for file storage")
		}
	case StoragePostgres:
		if c.Storage.Database.URL == "" {
			return errors.New("storage.database.url is required for postgres storage")
		}
		if c.Storage.Database.MinConnections > c.Storage.Database.MaxConnections {
			return fmt.Errorf("storage.database: min_connections %d > max_connections %d",
				c.Storage.Database.MinConnections, c.Storage.Database.MaxConnections)
		}
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	return nil
}
