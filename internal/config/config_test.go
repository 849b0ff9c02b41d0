package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/config"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestMissingFileYieldsDefaults() {
	cfg, err := config.Load(filepath.Join(s.T().TempDir(), "absent.yaml"))
	s.Require().NoError(err)

	s.Equal(config.DefaultPort, cfg.Port)
	s.Equal(config.DefaultRedisAddr, cfg.RedisAddr)
	s.Equal(config.DefaultOpenAIModel, cfg.OpenAIModel)
	s.Equal(config.DefaultHeroName, cfg.DefaultHero)
	s.InDelta(config.DefaultChaosLevel, cfg.ChaosLevel, 0.0001)
	s.Equal(30*time.Second, cfg.TurnTimeout)
}

func (s *ConfigTestSuite) TestFileOverridesDefaults() {
	path := filepath.Join(s.T().TempDir(), "server.yaml")
	body := `
port: 9000
redis_addr: "redis:6379"
chaos_level: 0.7
lore_top_k: 5
default_hero: "Mira"
history_engine_bin: "/opt/engine/worldgen"
`
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	s.Require().NoError(err)

	s.Equal(9000, cfg.Port)
	s.Equal("redis:6379", cfg.RedisAddr)
	s.InDelta(0.7, cfg.ChaosLevel, 0.0001)
	s.Equal(5, cfg.LoreTopK)
	s.Equal("Mira", cfg.DefaultHero)
	s.Equal("/opt/engine/worldgen", cfg.HistoryEngineBin)
	s.Equal(config.DefaultDataDir, cfg.DataDir, "unset fields keep defaults")
}

func (s *ConfigTestSuite) TestOutOfRangeRejected() {
	path := filepath.Join(s.T().TempDir(), "server.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("chaos_level: 1.5\n"), 0o644))

	_, err := config.Load(path)
	s.Require().Error(err)
}
