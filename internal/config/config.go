// Package config loads server configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sagaforge/saga-api/internal/errors"
)

// Defaults applied when the file leaves a field empty.
const (
	DefaultPort        = 50051
	DefaultRedisAddr   = "localhost:6379"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultDataDir     = "data"
	DefaultSavesDir    = "data/Saves"
	DefaultGridPath    = "data/world_map.map"
	DefaultChaosLevel  = 0.3
	DefaultLoreTopK    = 3
	DefaultTurnTimeout = 30 * time.Second
	DefaultHeroName    = "Burt"
)

// Config is the full server configuration.
type Config struct {
	// Port the gRPC server listens on.
	Port int `yaml:"port"`

	// RedisAddr is the entity, campaign, and quest store.
	RedisAddr string `yaml:"redis_addr"`

	// PostgresDSN enables the lore retriever; empty disables it.
	PostgresDSN string `yaml:"postgres_dsn"`

	// OpenAI drives intent parsing and narration. The key falls back
	// to OPENAI_API_KEY; without one the narrator runs degraded.
	OpenAIKey   string `yaml:"openai_key"`
	OpenAIModel string `yaml:"openai_model"`

	// DataDir holds definitions, wizard datasets, and the world map.
	DataDir  string `yaml:"data_dir"`
	SavesDir string `yaml:"saves_dir"`
	GridPath string `yaml:"grid_path"`

	// HistoryEngineBin points at the external history generator;
	// empty reports the simulate surface offline.
	HistoryEngineBin string `yaml:"history_engine_bin"`

	// ChaosLevel tunes the narrative voice, in [0,1].
	ChaosLevel float64 `yaml:"chaos_level"`
	LoreTopK   int     `yaml:"lore_top_k"`

	// TurnTimeout bounds one narrated turn end to end.
	TurnTimeout time.Duration `yaml:"turn_timeout"`

	// DefaultHero is the save restored onto tactical maps.
	DefaultHero string `yaml:"default_hero"`

	// Seed fixes the world RNG; zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file. A missing path returns defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "reading config %s", path)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.RedisAddr == "" {
		c.RedisAddr = DefaultRedisAddr
	}
	if c.OpenAIKey == "" {
		c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultOpenAIModel
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.SavesDir == "" {
		c.SavesDir = DefaultSavesDir
	}
	if c.GridPath == "" {
		c.GridPath = DefaultGridPath
	}
	if c.ChaosLevel == 0 {
		c.ChaosLevel = DefaultChaosLevel
	}
	if c.LoreTopK == 0 {
		c.LoreTopK = DefaultLoreTopK
	}
	if c.TurnTimeout == 0 {
		c.TurnTimeout = DefaultTurnTimeout
	}
	if c.DefaultHero == "" {
		c.DefaultHero = DefaultHeroName
	}
}

// Validate checks ranges after defaults are applied.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Port < 1 || c.Port > 65535 {
		vb.Fieldf("port", "must be in [1, 65535], got %d", c.Port)
	}
	if c.ChaosLevel < 0 || c.ChaosLevel > 1 {
		vb.Fieldf("chaos_level", "must be in [0, 1], got %f", c.ChaosLevel)
	}
	if c.LoreTopK < 1 {
		vb.Fieldf("lore_top_k", "must be positive, got %d", c.LoreTopK)
	}
	return vb.Build()
}
