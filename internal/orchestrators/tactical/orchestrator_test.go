package tactical_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/orchestrators/tactical"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	"github.com/sagaforge/saga-api/internal/pkg/roller"
	campaignrepo "github.com/sagaforge/saga-api/internal/repositories/campaign"
	"github.com/sagaforge/saga-api/internal/repositories/entity"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/testutils"
	"github.com/sagaforge/saga-api/internal/world"
)

type TacticalOrchestratorSuite struct {
	suite.Suite
	registry *ecs.Registry
	saves    *external.SaveStore
	cleanup  func()
	ctx      context.Context
}

func TestTacticalOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(TacticalOrchestratorSuite))
}

func (s *TacticalOrchestratorSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := entity.NewRedis(&entity.RedisConfig{Client: client})
	s.Require().NoError(err)

	registry, err := ecs.New(&ecs.Config{
		Repository:  repo,
		IDGenerator: idgen.NewSequential("ent_"),
	})
	s.Require().NoError(err)
	s.registry = registry

	saves, err := external.NewSaveStore(&external.SaveStoreConfig{Dir: s.T().TempDir()})
	s.Require().NoError(err)
	s.saves = saves

	_, err = saves.Write(&ecs.CharacterRecord{
		Name:    "Burt",
		Species: "Human",
		Stats: map[string]int{
			entities.AttrMight:    14,
			entities.AttrReflexes: 10,
			entities.AttrVitality: 12,
		},
	})
	s.Require().NoError(err)

	s.ctx = context.Background()
}

func (s *TacticalOrchestratorSuite) TearDownTest() {
	s.cleanup()
}

// service builds an orchestrator; nil optional deps stay nil.
func (s *TacticalOrchestratorSuite) service(cfg *tactical.Config) tactical.Service {
	if cfg == nil {
		cfg = &tactical.Config{}
	}
	if cfg.Registry == nil {
		cfg.Registry = s.registry
	}
	if cfg.Saves == nil {
		cfg.Saves = s.saves
	}
	if cfg.Roller == nil {
		// Chest draws 85 then 6: one Gold Coin, one Scrap Materials.
		cfg.Roller = roller.NewScripted(85, 6)
	}
	svc, err := tactical.NewOrchestrator(cfg)
	s.Require().NoError(err)
	return svc
}

func (s *TacticalOrchestratorSuite) newClock() *sim.Manager {
	defs, err := definitions.New(&definitions.Config{DataDir: s.T().TempDir()})
	s.Require().NoError(err)
	s.Require().NoError(defs.LoadAll(s.ctx))

	settlements, err := sim.NewSettlementSystem(&sim.SettlementConfig{
		Registry:    s.registry,
		Definitions: defs,
	})
	s.Require().NoError(err)

	clock, err := sim.NewManager(&sim.ManagerConfig{
		Graph:       world.NewGraph(nil),
		Settlements: settlements,
		Definitions: defs,
		Rand:        roller.NewSeeded(3),
	})
	s.Require().NoError(err)
	return clock
}

func (s *TacticalOrchestratorSuite) newCampaign() *campaign.Generator {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.T().Cleanup(cleanup)

	repo, err := campaignrepo.NewRedis(&campaignrepo.RedisConfig{Client: client})
	s.Require().NoError(err)

	node := &entities.WorldNode{ID: "keep", Name: "Highkeep", X: 500, Y: 500}
	source, err := campaign.NewGraphContext(world.NewGraph([]*entities.WorldNode{node}))
	s.Require().NoError(err)

	gen, err := campaign.New(&campaign.Config{
		Repository: repo,
		Context:    source,
		Rand:       roller.NewSeeded(42),
	})
	s.Require().NoError(err)
	return gen
}

func findMarker(views []tactical.EntityView, name string) *tactical.EntityView {
	for i := range views {
		if views[i].Name == name {
			return &views[i]
		}
	}
	return nil
}

func (s *TacticalOrchestratorSuite) TestGenerateBuildsBorderedMap() {
	svc := s.service(nil)

	out, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	s.Equal("Wilderness Encounter", out.Title)
	s.Equal(300, out.WorldX)
	s.Equal(300, out.WorldY)
	s.Equal("forest", out.Biome)
	s.Equal(20, out.Grid.Cols)
	s.Equal(20, out.Grid.Rows)
	s.Equal([]string{"Tactical simulation initiated."}, out.Log)

	for i := 0; i < 20; i++ {
		s.True(out.Grid.IsWall(i, 0))
		s.True(out.Grid.IsWall(i, 19))
		s.True(out.Grid.IsWall(0, i))
		s.True(out.Grid.IsWall(19, i))
	}
	s.False(out.Grid.IsWall(5, 5), "spawn tile stays clear")
}

func (s *TacticalOrchestratorSuite) TestGeneratePlacesPlayerAndChest() {
	svc := s.service(nil)

	out, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	player := findMarker(out.Entities, "Burt")
	s.Require().NotNil(player)
	s.Equal("player", player.Type)
	s.Equal(5, player.X)
	s.Equal(5, player.Y)
	s.Equal([]string{"hero"}, player.Tags)

	chest := findMarker(out.Entities, "Ancient Chest")
	s.Require().NotNil(chest)
	s.Equal(17, chest.X)
	s.Equal(3, chest.Y)
	s.Contains(chest.Tags, "lootable")
	s.Equal([]string{"Gold Coin", "Scrap Materials"}, chest.Inventory)
}

func (s *TacticalOrchestratorSuite) TestGenerateDefaultsToCampaignStart() {
	gen := s.newCampaign()
	c, err := gen.CreateCampaign(s.ctx, "camp_1", "Burt", "")
	s.Require().NoError(err)

	svc := s.service(&tactical.Config{Campaign: gen})
	out, err := svc.Generate(s.ctx, &tactical.GenerateInput{})
	s.Require().NoError(err)

	s.Equal(c.PlotPoints[0].X, out.WorldX)
	s.Equal(c.PlotPoints[0].Y, out.WorldY)
}

func (s *TacticalOrchestratorSuite) TestNearbyPOIsSeededAndDiscovered() {
	gen := s.newCampaign()
	c, err := gen.CreateCampaign(s.ctx, "camp_1", "Burt", "")
	s.Require().NoError(err)
	s.Require().NotEmpty(c.POIs)
	poi := &c.POIs[0]

	svc := s.service(&tactical.Config{Campaign: gen})
	out, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: poi.X, Y: poi.Y})
	s.Require().NoError(err)

	s.True(poi.Discovered)
	seeded := false
	for _, v := range out.Entities {
		if strings.Contains(v.Name, "Quest Seed") || v.Name == "Gore-Beast" {
			seeded = true
			s.Contains(v.Tags, "poi")
		}
	}
	s.True(seeded, "a nearby marker lands on the map")
}

func (s *TacticalOrchestratorSuite) TestStateSnapshotsSession() {
	svc := s.service(nil)
	_, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	state, err := svc.State(s.ctx, &tactical.StateInput{})
	s.Require().NoError(err)

	s.Equal(1, state.Round)
	s.Equal("Burt", state.Player.Name)
	// Vitality 12 gives 22 max HP.
	s.Equal(22, state.Player.Health.Max)
	s.Equal(22, state.Player.Health.Current)
	s.Equal(5, state.Player.X)
	s.Equal(5, state.Player.Y)
	s.Equal(14, state.Player.Attributes[entities.AttrMight])
	s.Empty(state.Enemies)
}

func (s *TacticalOrchestratorSuite) TestStateWithoutSession() {
	svc := s.service(nil)

	_, err := svc.State(s.ctx, &tactical.StateInput{})
	s.Require().Error(err)
}

func (s *TacticalOrchestratorSuite) TestCharPrefersLiveEntityThenSaves() {
	svc := s.service(nil)

	out, err := svc.Char(s.ctx, &tactical.CharInput{Name: "Burt"})
	s.Require().NoError(err)
	s.Nil(out.Entity)
	s.Require().NotNil(out.Record)
	s.Equal("Burt", out.Record.Name)

	_, err = svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	out, err = svc.Char(s.ctx, &tactical.CharInput{Name: "burt"})
	s.Require().NoError(err)
	s.Require().NotNil(out.Entity)
	s.Equal("Burt", out.Entity.Name)

	_, err = svc.Char(s.ctx, &tactical.CharInput{Name: "Nobody"})
	s.Require().Error(err)
}

func (s *TacticalOrchestratorSuite) TestFeedbackAcknowledged() {
	svc := s.service(nil)

	out, err := svc.Feedback(s.ctx, &tactical.FeedbackInput{Outcome: "victory"})
	s.Require().NoError(err)
	s.Equal("Combat outcome: victory recorded.", out.Message)
}

func (s *TacticalOrchestratorSuite) TestTravelBurnsEightHours() {
	clock := s.newClock()
	svc := s.service(&tactical.Config{Clock: clock})

	out, err := svc.Travel(s.ctx, &tactical.TravelInput{})
	s.Require().NoError(err)

	s.Equal(500, out.WorldX)
	s.Equal(500, out.WorldY)
	s.Equal(int64(8), clock.NarrativeHours())
}

func (s *TacticalOrchestratorSuite) TestActionItemHealsUpToMax() {
	svc := s.service(nil)
	_, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	hero, err := svc.Char(s.ctx, &tactical.CharInput{Name: "Burt"})
	s.Require().NoError(err)
	hero.Entity.Vitals.HP = 1

	out, err := svc.Action(s.ctx, &tactical.ActionInput{ActionType: "item", ItemID: "Minor Health Potion"})
	s.Require().NoError(err)
	s.Contains(out.Narrative, "[SYSTEM] You used Minor Health Potion.")
	s.Equal(21, hero.Entity.Vitals.HP)

	out, err = svc.Action(s.ctx, &tactical.ActionInput{ActionType: "item", ItemID: "Minor Health Potion"})
	s.Require().NoError(err)
	s.Equal(22, hero.Entity.Vitals.HP, "healing clamps at max")
	s.NotEmpty(out.Updates)
}

func (s *TacticalOrchestratorSuite) TestActionCampRestoresVitals() {
	clock := s.newClock()
	svc := s.service(&tactical.Config{Clock: clock})
	_, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	hero, err := svc.Char(s.ctx, &tactical.CharInput{Name: "Burt"})
	s.Require().NoError(err)
	hero.Entity.Vitals.HP = 3
	hero.Entity.Vitals.SP = 0

	out, err := svc.Action(s.ctx, &tactical.ActionInput{ActionType: "camp"})
	s.Require().NoError(err)
	s.Contains(out.Narrative, "You set up camp.")
	s.Equal(hero.Entity.Vitals.MaxHP, hero.Entity.Vitals.HP)
	s.Equal(hero.Entity.Vitals.MaxSP, hero.Entity.Vitals.SP)
	s.Equal(int64(8), clock.NarrativeHours())
}

func (s *TacticalOrchestratorSuite) TestActionSkillNeedsValidTarget() {
	svc := s.service(nil)
	_, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	out, err := svc.Action(s.ctx, &tactical.ActionInput{ActionType: "skill", SkillID: "Fireball", TargetID: "ghost"})
	s.Require().NoError(err)
	s.Contains(out.Narrative, "Target not valid for Fireball.")
}

func (s *TacticalOrchestratorSuite) TestActionUnknownTypeRejected() {
	svc := s.service(nil)
	_, err := svc.Generate(s.ctx, &tactical.GenerateInput{X: 300, Y: 300})
	s.Require().NoError(err)

	_, err = svc.Action(s.ctx, &tactical.ActionInput{ActionType: "dance"})
	s.Require().Error(err)
}
