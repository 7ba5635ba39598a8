// Package config provides configuration loading and structs for the mixingcompass server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/mixingcompass/internal/hsp"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for the config before falling back to ./config.yaml.
const DefaultPath = "/usr/local/etc/mixingcompass/config.yaml"

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Data     DataConfig     `yaml:"data"`
	Scene    SceneConfig    `yaml:"scene"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds paths for the solvent database and catalog index.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	CatalogIndexPath string `yaml:"catalog_index_path"`
}

// DataConfig lists solvent tables to import and whether to watch them.
type DataConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Watch       bool     `yaml:"watch"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to scan recursively; defaults to true when unset.
func (d *DataConfig) RecursiveOrDefault() bool {
	if d.Recursive != nil {
		return *d.Recursive
	}
	return true
}

// SceneConfig tunes 3D scene generation. Margin and the max_* caps shape the
// axis ranges; width and height are passed to renderers as hints.
type SceneConfig struct {
	Resolution int     `yaml:"resolution"`
	Opacity    float64 `yaml:"opacity"`
	Margin     float64 `yaml:"margin"`
	MaxDeltaD  float64 `yaml:"max_delta_d"`
	MaxDeltaP  float64 `yaml:"max_delta_p"`
	MaxDeltaH  float64 `yaml:"max_delta_h"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
}

// AnalysisConfig holds defaults for HSP computations.
type AnalysisConfig struct {
	// DefaultRadius is used when a target omits its interaction radius.
	DefaultRadius float64 `yaml:"default_radius"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.CatalogIndexPath = expandPath(cfg.Storage.CatalogIndexPath, configDir)
	for i := range cfg.Data.Directories {
		cfg.Data.Directories[i] = expandPath(cfg.Data.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate rejects values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Scene.Resolution == 1 || c.Scene.Resolution < 0 || c.Scene.Resolution > hsp.MaxResolution {
		return fmt.Errorf("invalid scene resolution %d: need 2 to %d samples", c.Scene.Resolution, hsp.MaxResolution)
	}
	if c.Scene.Opacity > 1 {
		return fmt.Errorf("invalid scene opacity %g: must be within (0, 1]", c.Scene.Opacity)
	}
	if c.Analysis.DefaultRadius < 0 {
		return fmt.Errorf("invalid default radius %g", c.Analysis.DefaultRadius)
	}
	return nil
}

// Save writes the config to path. Used for persisting data directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
