package ecs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	"github.com/sagaforge/saga-api/internal/repositories/entity"
	"github.com/sagaforge/saga-api/internal/testutils"
)

type RegistryTestSuite struct {
	suite.Suite
	registry *ecs.Registry
	repo     entity.Repository
	cleanup  func()
	ctx      context.Context
}

func (s *RegistryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := entity.NewRedis(&entity.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo

	matrix := ecs.EvolutionMatrix{
		"SKIN": {
			"Awareness": {"Reflexes": "Danger Sense"},
		},
		"BODY": {
			"Willpower": {"Fortitude": "Thorns"},
		},
	}

	registry, err := ecs.New(&ecs.Config{
		Repository:  repo,
		IDGenerator: idgen.NewSequential("char_"),
		Matrix:      matrix,
	})
	s.Require().NoError(err)
	s.registry = registry
	s.ctx = context.Background()
}

func (s *RegistryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RegistryTestSuite) testRecord() *ecs.CharacterRecord {
	return &ecs.CharacterRecord{
		Name:    "Burt",
		Species: "Human",
		Stats: map[string]int{
			entities.AttrMight:     14,
			entities.AttrReflexes:  12,
			entities.AttrEndurance: 10,
			entities.AttrVitality:  11,
			entities.AttrFortitude: 9,
			entities.AttrKnowledge: 8,
			entities.AttrLogic:     8,
			entities.AttrWillpower: 10,
			entities.AttrIntuition: 9,
			entities.AttrAwareness: 10,
		},
		Inventory: []string{"Waterskin", "Rations"},
		Gold:      50,
		Evolutions: map[string]ecs.EvolutionChoice{
			"SKIN": {Mental: "Awareness", Physical: "Reflexes"},
		},
		X: 5,
		Y: 5,
	}
}

func (s *RegistryTestSuite) TestCreateCharacterShapesEntity() {
	e, err := s.registry.CreateCharacter(s.ctx, s.testRecord())
	s.Require().NoError(err)

	s.True(e.HasAll(
		entities.KindPosition,
		entities.KindRenderable,
		entities.KindStats,
		entities.KindVitals,
		entities.KindInventory,
		entities.KindStatusEffects,
		entities.KindFactionMember,
	))

	// max_hp = Vitality + Fortitude + Endurance/2 + 10
	s.Equal(11+9+5+10, e.Vitals.MaxHP)
	// max_sp = Endurance + Might + Reflexes/2
	s.Equal(10+14+6, e.Vitals.MaxSP)
	s.Equal(e.Vitals.MaxHP, e.Vitals.HP)
	s.Equal("Neutral", e.Faction.Faction)
	s.Equal(50, e.Inventory.Gold)
}

func (s *RegistryTestSuite) TestCreateCharacterResolvesTraits() {
	e, err := s.registry.CreateCharacter(s.ctx, s.testRecord())
	s.Require().NoError(err)

	s.Require().Contains(e.Traits, "SKIN")
	s.Equal("Danger Sense", e.Traits["SKIN"].Mechanic)
	s.NotNil(e.Metadata["record"])
}

func (s *RegistryTestSuite) TestCreateCharacterSkipsUnknownEvolution() {
	record := s.testRecord()
	record.Evolutions["LEGS"] = ecs.EvolutionChoice{Mental: "Logic", Physical: "Might"}

	e, err := s.registry.CreateCharacter(s.ctx, record)
	s.Require().NoError(err)
	s.NotContains(e.Traits, "LEGS")
	s.Contains(e.Traits, "SKIN")
}

func (s *RegistryTestSuite) TestCreateCharacterEquipsLoadout() {
	record := s.testRecord()
	record.Loadout = map[string]string{
		"Main Hand": "Shortbow",
		"Off Hand":  "Dagger",
		"Armor":     "",
	}

	e, err := s.registry.CreateCharacter(s.ctx, record)
	s.Require().NoError(err)

	s.Require().NotNil(e.Equipment)
	s.Equal("Shortbow", e.Equipment.MainHand())
	s.Equal("Dagger", e.Equipment.Slots[entities.SlotOffHand])
	s.NotContains(e.Equipment.Slots, entities.SlotArmor, "empty slots are not carried")
}

func (s *RegistryTestSuite) TestCreateCharacterWithoutLoadoutStaysUnarmed() {
	e, err := s.registry.CreateCharacter(s.ctx, s.testRecord())
	s.Require().NoError(err)
	s.Nil(e.Equipment)
	s.Empty(e.Equipment.MainHand())
}

func (s *RegistryTestSuite) TestCreateCharacterClampsOverrides() {
	record := s.testRecord()
	hp := 999
	record.HP = &hp

	e, err := s.registry.CreateCharacter(s.ctx, record)
	s.Require().NoError(err)
	s.Equal(e.Vitals.MaxHP, e.Vitals.HP)
}

func (s *RegistryTestSuite) TestAddEntityMirrorsToStorage() {
	e := &entities.Entity{ID: "npc_guard", Type: "npc", Name: "Guard"}
	_, err := s.registry.AddEntity(s.ctx, e)
	s.Require().NoError(err)

	stored, err := s.repo.Get(s.ctx, entity.GetInput{ID: "npc_guard"})
	s.Require().NoError(err)
	s.Equal("Guard", stored.Entity.Name)
}

func (s *RegistryTestSuite) TestDestroyEntityRemovesBothViews() {
	e := &entities.Entity{ID: "npc_guard", Type: "npc", Name: "Guard"}
	_, err := s.registry.AddEntity(s.ctx, e)
	s.Require().NoError(err)

	s.Require().NoError(s.registry.DestroyEntity(s.ctx, "npc_guard"))

	_, ok := s.registry.GetEntity("npc_guard")
	s.False(ok)

	_, err = s.repo.Get(s.ctx, entity.GetInput{ID: "npc_guard"})
	s.True(errors.IsNotFound(err))
}

func (s *RegistryTestSuite) TestDestroyUnknownIsNoop() {
	s.NoError(s.registry.DestroyEntity(s.ctx, "never_existed"))
}

func (s *RegistryTestSuite) TestEntitiesWithFiltersByKinds() {
	_, err := s.registry.AddEntity(s.ctx, &entities.Entity{
		ID: "set_1", Type: "settlement",
		Demographics: &entities.Demographics{Population: 100},
		Economy:      &entities.Economy{Wealth: 500},
	})
	s.Require().NoError(err)
	_, err = s.registry.AddEntity(s.ctx, &entities.Entity{
		ID: "npc_1", Type: "npc",
		Vitals: &entities.Vitals{HP: 10, MaxHP: 10},
	})
	s.Require().NoError(err)

	settlements := s.registry.EntitiesWith(entities.KindDemographics, entities.KindEconomy)
	s.Len(settlements, 1)
	s.Equal("set_1", settlements[0].ID)
}

func (s *RegistryTestSuite) TestLoadAllRebuildsIndex() {
	_, err := s.registry.CreateCharacter(s.ctx, s.testRecord())
	s.Require().NoError(err)
	_, err = s.registry.AddEntity(s.ctx, &entities.Entity{ID: "npc_1", Type: "npc", Name: "Rat"})
	s.Require().NoError(err)

	fresh, err := ecs.New(&ecs.Config{
		Repository:  s.repo,
		IDGenerator: idgen.NewSequential("char_"),
	})
	s.Require().NoError(err)

	count, err := fresh.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	_, ok := fresh.GetEntity("npc_1")
	s.True(ok)
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
