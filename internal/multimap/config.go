package multimap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema string

// Config names the snapshot files of a map set and the sinks its journal
// feeds. Relative paths are resolved against the config file's directory.
type Config struct {
	Main         string   `yaml:"main"`
	Subordinates []string `yaml:"subordinates,omitempty"`
	HQName       string   `yaml:"hq_name" env:"MAPSYNC_HQ_NAME"`
	Seed         int64    `yaml:"seed" env:"MAPSYNC_SEED"`
	JournalDir   string   `yaml:"journal_dir" env:"MAPSYNC_JOURNAL_DIR"`
	IndexDB      string   `yaml:"index_db" env:"MAPSYNC_INDEX_DB"`
	ObserverAddr string   `yaml:"observer_addr" env:"MAPSYNC_OBSERVER_ADDR"`
	// BackupDir, when set, receives a copy of every snapshot before it is
	// overwritten.
	BackupDir    string   `yaml:"backup_dir" env:"MAPSYNC_BACKUP_DIR"`
}

// LoadConfig reads path, checks it against the config schema, applies
// MAPSYNC_* environment overrides and validates the result. An empty path
// yields the defaults plus the environment.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		name := filepath.Base(path)
		if err := validateDocument(b); err != nil {
			return cfg, fmt.Errorf("%s: %w", name, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", name, err)
		}
		cfg.resolve(filepath.Dir(path))
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		HQName:     defaultHQName,
		JournalDir: "journal",
	}
}

// validateDocument checks the raw YAML against the embedded schema. The
// document goes through JSON first so numbers reach the validator as
// json.Number.
func validateDocument(b []byte) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	schema, err := compileConfigSchema()
	if err != nil {
		return err
	}
	return schema.Validate(v)
}

func compileConfigSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", strings.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	s, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Main = abs(c.Main)
	for i := range c.Subordinates {
		c.Subordinates[i] = abs(c.Subordinates[i])
	}
	c.JournalDir = abs(c.JournalDir)
	c.IndexDB = abs(c.IndexDB)
	c.BackupDir = abs(c.BackupDir)
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Main = strings.TrimSpace(c.Main)
	subs := c.Subordinates[:0]
	for _, s := range c.Subordinates {
		if s = strings.TrimSpace(s); s != "" {
			subs = append(subs, s)
		}
	}
	c.Subordinates = subs
	if strings.TrimSpace(c.HQName) == "" {
		c.HQName = defaultHQName
	}
}

func (c Config) Validate() error {
	if c.Main == "" {
		return fmt.Errorf("main must not be empty")
	}
	seen := map[string]bool{c.Main: true}
	for i, s := range c.Subordinates {
		if seen[s] {
			return fmt.Errorf("subordinates[%d] %q duplicates another map", i, s)
		}
		seen[s] = true
	}
	return nil
}

// Maps lists the main map path followed by the subordinates.
func (c Config) Maps() []string {
	return append([]string{c.Main}, c.Subordinates...)
}
