package sim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	"github.com/sagaforge/saga-api/internal/pkg/roller"
	"github.com/sagaforge/saga-api/internal/repositories/entity"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/testutils"
	"github.com/sagaforge/saga-api/internal/world"
)

type SettlementTestSuite struct {
	suite.Suite
	registry *ecs.Registry
	defs     *definitions.Registry
	system   *sim.SettlementSystem
	cleanup  func()
	ctx      context.Context
}

func (s *SettlementTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := entity.NewRedis(&entity.RedisConfig{Client: client})
	s.Require().NoError(err)

	registry, err := ecs.New(&ecs.Config{
		Repository:  repo,
		IDGenerator: idgen.NewSequential("settlement_"),
	})
	s.Require().NoError(err)
	s.registry = registry

	defs, err := definitions.New(&definitions.Config{DataDir: s.T().TempDir()})
	s.Require().NoError(err)
	s.Require().NoError(defs.LoadAll(context.Background()))
	s.defs = defs

	system, err := sim.NewSettlementSystem(&sim.SettlementConfig{
		Registry:    registry,
		Definitions: defs,
	})
	s.Require().NoError(err)
	s.system = system

	s.ctx = context.Background()
}

func (s *SettlementTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *SettlementTestSuite) addSettlement(e *entities.Entity) *entities.Entity {
	added, err := s.registry.AddEntity(s.ctx, e)
	s.Require().NoError(err)
	return added
}

func (s *SettlementTestSuite) TestGrowthWhenFed() {
	town := s.addSettlement(&entities.Entity{
		ID:   "town_a",
		Type: "settlement",
		Demographics: &entities.Demographics{
			Population: 100,
			Capacity:   500,
			GrowthRate: 0.05,
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{"food": 200},
		},
	})

	s.system.RunTick(s.ctx)

	s.Equal(105, town.Demographics.Population, "growth is floor(pop * rate)")
	s.InDelta(150.0, town.Logistics.Stock("food"), 0.001, "100 heads eat 50 food at the default rate")
	s.Equal(0.0, town.Demographics.Unrest, "unrest cannot decay below zero")
}

func (s *SettlementTestSuite) TestGrowthCappedAtCapacity() {
	town := s.addSettlement(&entities.Entity{
		ID:   "town_a",
		Type: "settlement",
		Demographics: &entities.Demographics{
			Population: 100,
			Capacity:   102,
			GrowthRate: 0.05,
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{"food": 200},
		},
	})

	s.system.RunTick(s.ctx)
	s.Equal(102, town.Demographics.Population)
}

func (s *SettlementTestSuite) TestStarvationKillsAndStirsUnrest() {
	town := s.addSettlement(&entities.Entity{
		ID:   "town_a",
		Type: "settlement",
		Demographics: &entities.Demographics{
			Population: 100,
			Capacity:   500,
			GrowthRate: 0.05,
			Unrest:     0.2,
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{"food": 10},
		},
	})

	s.system.RunTick(s.ctx)

	// Need 50, have 10: 80 starve at 0.5 food per head.
	s.Equal(20, town.Demographics.Population)
	s.InDelta(0.0, town.Logistics.Stock("food"), 0.001)
	s.InDelta(0.3, town.Demographics.Unrest, 0.001)
}

func (s *SettlementTestSuite) TestSpeciesDrivesGrowthAndNeed() {
	s.defs.Species["goblin"] = &definitions.Species{
		ID:            "goblin",
		GrowthRate:    0.10,
		ResourceNeeds: map[string]float64{"food": 0.25},
		TaskWeights:   definitions.TaskWeights{Farm: 1},
	}

	town := s.addSettlement(&entities.Entity{
		ID:   "warren",
		Type: "settlement",
		Demographics: &entities.Demographics{
			Population: 100,
			Capacity:   500,
			GrowthRate: 0.05,
			Culture:    "goblin",
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{"food": 100},
		},
	})

	s.system.RunTick(s.ctx)

	s.Equal(110, town.Demographics.Population, "species growth rate wins over the component default")
	s.InDelta(75.0, town.Logistics.Stock("food"), 0.001)
}

func (s *SettlementTestSuite) TestTaxAndProduction() {
	town := s.addSettlement(&entities.Entity{
		ID:   "town_a",
		Type: "settlement",
		Demographics: &entities.Demographics{
			Population: 200,
			Capacity:   200,
			Unrest:     0.5,
		},
		Economy: &entities.Economy{
			Wealth:        100,
			TaxRate:       0.2,
			PrimaryExport: "Wood",
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{"food": 1000},
		},
	})

	s.system.RunTick(s.ctx)

	// Growth feeds first, easing unrest to 0.49. Tax = floor(200 *
	// 0.2 * 0.51) = 20; production = floor(200 * 0.1 * 0.51) = 10.
	s.Equal(120, town.Economy.Wealth)
	s.InDelta(10.0, town.Logistics.Stock("Wood"), 0.001)
}

func (s *SettlementTestSuite) TestCrimeSiphonsRestlessWealth() {
	town := s.addSettlement(&entities.Entity{
		ID:   "town_a",
		Type: "settlement",
		Demographics: &entities.Demographics{
			Population: 10,
			Capacity:   10,
			Unrest:     0.9,
		},
		Economy: &entities.Economy{Wealth: 1000},
	})

	s.system.RunTick(s.ctx)
	s.Equal(850, town.Economy.Wealth, "15% of wealth siphoned")
}

func (s *SettlementTestSuite) TestTradeConservation() {
	seller := s.addSettlement(&entities.Entity{
		ID:   "town_a",
		Type: "settlement",
		Economy: &entities.Economy{
			Wealth:        1000,
			PrimaryExport: "Wood",
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{"Wood": 100},
		},
	})
	buyer := s.addSettlement(&entities.Entity{
		ID:   "town_b",
		Type: "settlement",
		Economy: &entities.Economy{
			Wealth:        500,
			PrimaryImport: "Wood",
			MarketPrices:  map[string]float64{"Wood": 2.0},
		},
		Logistics: &entities.Logistics{
			Resources: map[string]float64{},
		},
	})

	wealthBefore := seller.Economy.Wealth + buyer.Economy.Wealth
	woodBefore := seller.Logistics.Stock("Wood") + buyer.Logistics.Stock("Wood")

	s.system.RunTick(s.ctx)

	s.Equal(1100, seller.Economy.Wealth)
	s.Equal(400, buyer.Economy.Wealth)
	s.InDelta(50.0, seller.Logistics.Stock("Wood"), 0.001)
	s.InDelta(50.0, buyer.Logistics.Stock("Wood"), 0.001)

	s.Equal(wealthBefore, seller.Economy.Wealth+buyer.Economy.Wealth, "wealth is conserved")
	s.InDelta(woodBefore, seller.Logistics.Stock("Wood")+buyer.Logistics.Stock("Wood"), 0.001, "goods are conserved")
}

func (s *SettlementTestSuite) TestTradeLevelCreepUnderExpansionists() {
	s.defs.Factions["iron_pact"] = &definitions.Faction{
		ID:             "iron_pact",
		ExpansionDrive: 0.8,
	}

	seller := s.addSettlement(&entities.Entity{
		ID:      "town_a",
		Type:    "settlement",
		Faction: &entities.FactionMember{Faction: "iron_pact"},
		Economy: &entities.Economy{
			Wealth:        1000,
			PrimaryExport: "Wood",
		},
		Logistics:      &entities.Logistics{Resources: map[string]float64{"Wood": 100}},
		Infrastructure: &entities.Infrastructure{TradeLevel: 1.0},
	})
	buyer := s.addSettlement(&entities.Entity{
		ID:   "town_b",
		Type: "settlement",
		Economy: &entities.Economy{
			Wealth:        500,
			PrimaryImport: "Wood",
		},
		Logistics:      &entities.Logistics{Resources: map[string]float64{}},
		Infrastructure: &entities.Infrastructure{TradeLevel: 1.0},
	})

	s.system.RunTick(s.ctx)

	s.InDelta(1.05, seller.Infrastructure.TradeLevel, 0.001)
	s.InDelta(1.05, buyer.Infrastructure.TradeLevel, 0.001)
}

func TestSettlementSuite(t *testing.T) {
	suite.Run(t, new(SettlementTestSuite))
}

type ManagerTestSuite struct {
	suite.Suite
	registry *ecs.Registry
	defs     *definitions.Registry
	graph    *world.Graph
	manager  *sim.Manager
	nodes    map[string]*entities.WorldNode
	cleanup  func()
	ctx      context.Context
}

func (s *ManagerTestSuite) SetupTest() {
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

	defs, err := definitions.New(&definitions.Config{DataDir: s.T().TempDir()})
	s.Require().NoError(err)
	s.Require().NoError(defs.LoadAll(context.Background()))
	s.defs = defs

	s.nodes = map[string]*entities.WorldNode{
		"near":    {ID: "near", Name: "Near Town", X: 10, Y: 0},
		"mid":     {ID: "mid", Name: "Mid Town", X: 200, Y: 0},
		"distant": {ID: "distant", Name: "Distant Town", X: 5000, Y: 0},
	}
	s.graph = world.NewGraph([]*entities.WorldNode{
		s.nodes["near"], s.nodes["mid"], s.nodes["distant"],
	})

	system, err := sim.NewSettlementSystem(&sim.SettlementConfig{
		Registry:    registry,
		Definitions: defs,
	})
	s.Require().NoError(err)

	manager, err := sim.NewManager(&sim.ManagerConfig{
		Graph:       s.graph,
		Settlements: system,
		Definitions: defs,
		Rand:        roller.NewSeeded(7),
	})
	s.Require().NoError(err)
	s.manager = manager

	s.ctx = context.Background()
}

func (s *ManagerTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *ManagerTestSuite) TestClockAdvancesExactly() {
	s.Require().NoError(s.manager.AdvanceTime(s.ctx, 5, 0, 0))
	s.Equal(int64(5), s.manager.NarrativeHours())

	s.Require().NoError(s.manager.AdvanceTime(s.ctx, 3, 0, 0))
	s.Equal(int64(8), s.manager.NarrativeHours())

	s.Error(s.manager.AdvanceTime(s.ctx, 0, 0, 0))
	s.Error(s.manager.AdvanceTime(s.ctx, -4, 0, 0))
	s.Equal(int64(8), s.manager.NarrativeHours(), "rejected calls leave the clock alone")
}

func (s *ManagerTestSuite) TestPlayerTierStampsNearbyNodes() {
	s.Require().NoError(s.manager.AdvanceTime(s.ctx, 1, 0, 0))

	s.Equal(1.0, s.nodes["near"].Metric(sim.MetricLastTick, -1))
	s.Equal(0.0, s.nodes["distant"].Metric(sim.MetricLastTick, 0), "far nodes are untouched")
}

func (s *ManagerTestSuite) TestLocalTierPaysDailyWealth() {
	s.Require().NoError(s.manager.AdvanceTime(s.ctx, 24, 0, 0))

	s.Greater(s.nodes["near"].Metric(sim.MetricWealth, 0), 10.0-0.001)
	s.Greater(s.nodes["mid"].Metric(sim.MetricWealth, 0), 10.0-0.001)
	s.Equal(0.0, s.nodes["distant"].Metric(sim.MetricWealth, 0))
}

func (s *ManagerTestSuite) TestCatchUpFastForwardsStaleNodes() {
	s.nodes["mid"].SetMetric(sim.MetricPopulation, 1000)
	s.nodes["mid"].SetMetric(sim.MetricWealth, 0)
	s.nodes["mid"].SetMetric(sim.MetricLastTick, 0)

	// Jump two days while far away, then come back.
	s.Require().NoError(s.manager.AdvanceTime(s.ctx, 48, 10000, 10000))
	s.Require().NoError(s.manager.AdvanceTime(s.ctx, 1, 0, 0))

	s.InDelta(49.0, s.nodes["mid"].Metric(sim.MetricLastTick, 0), 0.001)
	s.Greater(s.nodes["mid"].Metric(sim.MetricWealth, 0), 3.0-0.001, "roughly two days of catch-up wealth")
	s.Greater(s.nodes["mid"].Metric(sim.MetricPopulation, 0), 1000.0)
}

func (s *ManagerTestSuite) TestRegionalTierClaimsTerritory() {
	s.defs.Factions["iron_pact"] = &definitions.Faction{
		ID:             "iron_pact",
		ExpansionDrive: 1.0,
	}

	// Each regional tick grants 2 power; the fifth crosses the
	// threshold of 10.
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.manager.AdvanceTime(s.ctx, sim.RegionalCadenceHours, 10000, 10000))
	}

	var owned int
	for _, n := range s.graph.Nodes() {
		if n.FactionID == "iron_pact" {
			owned++
		}
	}
	s.Equal(1, owned, "the faction claims exactly one node on crossing the threshold")
}

func (s *ManagerTestSuite) TestGlobalTierAdvancesEpoch() {
	s.nodes["distant"].SetMetric(sim.MetricPopulation, 1000)

	s.Require().NoError(s.manager.AdvanceTime(s.ctx, sim.GlobalCadenceHours, 10000, 10000))

	s.Equal(1, s.manager.Epoch())
	s.InDelta(1010.0, s.nodes["distant"].Metric(sim.MetricPopulation, 0), 0.001)
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}
