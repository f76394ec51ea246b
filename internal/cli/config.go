package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/phylonetworks/reticula/pkg/pipeline"
)

// Config is the reticula.toml configuration file. All fields are optional;
// command-line flags override configured values.
type Config struct {
	Search SearchConfig `toml:"search"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
}

// SearchConfig configures the rearrangement walk.
type SearchConfig struct {
	MaxMoves           int      `toml:"max_moves"`
	Seed               uint64   `toml:"seed"`
	Allow3Cycles       bool     `toml:"allow_3cycles"`
	AllowHybridLadders bool     `toml:"allow_hybrid_ladders"`
	Constraints        []string `toml:"constraints"` // "clade:A,B" form
}

// CacheConfig selects the cache backend. With a redis address set the CLI
// uses Redis; otherwise it falls back to the file cache under XDG_CACHE_HOME.
type CacheConfig struct {
	Redis         string `toml:"redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects the run store backend. With a mongo URI set the CLI
// persists runs to MongoDB; otherwise runs go to JSON files under
// ~/.config/reticula/runs.
type StoreConfig struct {
	Mongo         string `toml:"mongo"`
	MongoDatabase string `toml:"mongo_database"`
}

// LoadConfig reads a TOML config file. An empty path tries the default
// location and returns an empty config when no file exists there.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		def, err := defaultConfigPath()
		if err != nil {
			return &Config{}, nil
		}
		path = def
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.Store.Mongo != "" && cfg.Store.MongoDatabase == "" {
		cfg.Store.MongoDatabase = appName
	}
	return &cfg, nil
}

// ApplyTo copies configured search settings onto options that are still at
// their zero values, so flags win over the config file.
func (cfg *Config) ApplyTo(opts *pipeline.Options) error {
	if opts.MaxMoves == 0 {
		opts.MaxMoves = cfg.Search.MaxMoves
	}
	if opts.Seed == 0 {
		opts.Seed = cfg.Search.Seed
	}
	if !opts.Allow3Cycles {
		opts.Allow3Cycles = cfg.Search.Allow3Cycles
	}
	if !opts.AllowHybridLadders {
		opts.AllowHybridLadders = cfg.Search.AllowHybridLadders
	}
	if len(opts.Constraints) == 0 && len(cfg.Search.Constraints) > 0 {
		specs, err := parseConstraintFlags(cfg.Search.Constraints)
		if err != nil {
			return err
		}
		opts.Constraints = specs
	}
	return nil
}

// defaultConfigPath returns ~/.config/reticula/reticula.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "reticula.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "reticula.toml"), nil
}
