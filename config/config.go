// Package config loads the tooling configuration. The ledger packages
// never read configuration themselves; only the CLI and embedding hosts
// do.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends the tooling can open.
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

type Config struct {
	DataDir      string `toml:"DataDir"`
	Backend      string `toml:"Backend"`
	ManifestFile string `toml:"ManifestFile"`
	ChainID      uint64 `toml:"ChainID"`
	ProtocolID   uint64 `toml:"ProtocolID"`
	Environment  string `toml:"Environment"`
}

// Load reads the configuration at path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults(dir string) {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = filepath.Join(dir, "state")
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = BackendLevelDB
	}
	if strings.TrimSpace(c.ManifestFile) == "" {
		c.ManifestFile = filepath.Join(dir, "tokens.yaml")
	}
	if c.ChainID == 0 {
		c.ChainID = 1
	}
}

// Validate rejects configurations the tooling cannot act on.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLevelDB, BackendBolt:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Backend)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults(filepath.Dir(path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("config: create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: write defaults: %w", err)
	}
	return cfg, nil
}
