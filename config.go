package chronoval

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines store configuration.
type Config struct {
	// Limits bounds history buffer growth.
	Limits Limits `yaml:"limits"`

	// Retention is applied to every stored value on the write path.
	Retention RetentionPolicy `yaml:"retention"`

	// Store holds SQLite store settings.
	Store StoreConfig `yaml:"store"`

	// Encryption configures encryption of stored blobs.
	Encryption EncryptionConfig `yaml:"encryption"`
}

// StoreConfig groups SQLite store settings.
type StoreConfig struct {
	// Path is the SQLite database file. Default: chronoval.db.
	Path string `yaml:"path"`

	// CacheSize is the SQLite page cache size in KB. Default: 2000.
	CacheSize int `yaml:"cache_size"`

	// JournalMode sets the SQLite journal mode. Default: WAL.
	JournalMode string `yaml:"journal_mode"`

	// Synchronous sets the SQLite synchronous flag. Default: NORMAL.
	Synchronous string `yaml:"synchronous"`

	// BusyTimeout is the lock acquisition timeout in milliseconds. Default: 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// MaxConnections is the connection pool size. Default: 10.
	MaxConnections int `yaml:"max_connections"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Limits: DefaultLimits(),
		Store: StoreConfig{
			Path:           "chronoval.db",
			CacheSize:      2000,
			JournalMode:    "WAL",
			Synchronous:    "NORMAL",
			BusyTimeout:    5000,
			MaxConnections: 10,
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	c.Limits = c.Limits.withDefaults()
	def := DefaultConfig().Store
	if c.Store.Path == "" {
		c.Store.Path = def.Path
	}
	if c.Store.CacheSize <= 0 {
		c.Store.CacheSize = def.CacheSize
	}
	if c.Store.JournalMode == "" {
		c.Store.JournalMode = def.JournalMode
	}
	if c.Store.Synchronous == "" {
		c.Store.Synchronous = def.Synchronous
	}
	if c.Store.BusyTimeout <= 0 {
		c.Store.BusyTimeout = def.BusyTimeout
	}
	if c.Store.MaxConnections <= 0 {
		c.Store.MaxConnections = def.MaxConnections
	}
	return c
}

// UnmarshalYAML decodes a retention policy, accepting Go duration strings
// ("72h", "30m") for max_age.
func (p *RetentionPolicy) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaxEntries int    `yaml:"max_entries"`
		MaxAge     string `yaml:"max_age"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.MaxEntries = raw.MaxEntries
	if raw.MaxAge != "" {
		d, err := time.ParseDuration(raw.MaxAge)
		if err != nil {
			return fmt.Errorf("retention max_age: %w", err)
		}
		p.MaxAge = d
	}
	return nil
}
