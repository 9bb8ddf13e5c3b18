package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/regtab/regtab/internal/schema"
)

// Store backend names accepted in config.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the YAML configuration file.
//
//	backend: sqlite
//	database: regtab.db
//	unconditional_writes: false
//	pages:
//	  org_infos: "Module:Organizational Informations"
type Config struct {
	// Backend selects the page store: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Database is the SQLite file path.
	Database string `yaml:"database"`

	// UnconditionalWrites disables the revision compare-and-swap,
	// reproducing the source system's last-writer-wins behavior.
	UnconditionalWrites bool `yaml:"unconditional_writes"`

	// Pages overrides the page title per collection registry key.
	Pages map[string]string `yaml:"pages"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendSQLite,
		Database: "regtab.db",
	}
}

// LoadConfig reads a YAML config file. An empty path returns defaults;
// unknown keys in the file are an error so typos do not silently
// misconfigure.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.Database == "" {
		cfg.Database = "regtab.db"
	}
	return cfg, nil
}

// applyPageOverrides rebinds collection pages per config.
func (c *Config) applyPageOverrides(reg *schema.Registry) {
	for key, page := range c.Pages {
		if s, ok := reg.Get(key); ok && page != "" {
			s.Page = page
		}
	}
}
