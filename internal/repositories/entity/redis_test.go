package entity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/repositories/entity"
	"github.com/sagaforge/saga-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    entity.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := entity.NewRedis(&entity.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) testEntity() *entities.Entity {
	stats := entities.Stats{
		entities.AttrMight:     12,
		entities.AttrReflexes:  10,
		entities.AttrEndurance: 11,
		entities.AttrVitality:  10,
		entities.AttrFortitude: 9,
	}
	return &entities.Entity{
		ID:       "char_burt",
		Type:     "character",
		Name:     "Burt",
		Position: &entities.Position{X: 5, Y: 5},
		Stats:    stats,
		Vitals:   entities.DeriveVitals(stats),
		Status:   &entities.StatusEffects{},
		Tags:     entities.NewTagSet("player"),
		LayerID:  "zone_1",
		Traits: map[string]entities.Trait{
			"SKIN": {Slot: "SKIN", Mental: "Awareness", Physical: "Reflexes", Mechanic: "Danger Sense"},
		},
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetRoundTrip() {
	original := s.testEntity()

	_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: original})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, entity.GetInput{ID: original.ID})
	s.Require().NoError(err)

	s.Equal(original.ID, got.Entity.ID)
	s.Equal(original.Name, got.Entity.Name)
	s.Equal(original.Position, got.Entity.Position)
	s.Equal(original.Stats, got.Entity.Stats)
	s.Equal(original.Vitals, got.Entity.Vitals)
	s.Equal(original.Traits, got.Entity.Traits)
	s.True(got.Entity.Tags.Has("player"))
}

func (s *RedisRepositoryTestSuite) TestSaveIsIdempotent() {
	ent := s.testEntity()

	_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: ent})
	s.Require().NoError(err)
	_, err = s.repo.Save(s.ctx, entity.SaveInput{Entity: ent})
	s.Require().NoError(err)

	all, err := s.repo.ListAll(s.ctx, entity.ListAllInput{})
	s.Require().NoError(err)
	s.Len(all.Entities, 1)
}

func (s *RedisRepositoryTestSuite) TestSaveValidation() {
	s.Run("nil entity", func() {
		_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: nil})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("empty ID", func() {
		_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: &entities.Entity{Name: "nameless"}})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, entity.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDeleteRemovesRowAndIndexes() {
	ent := s.testEntity()
	_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: ent})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, entity.DeleteInput{ID: ent.ID})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, entity.GetInput{ID: ent.ID})
	s.True(errors.IsNotFound(err))

	all, err := s.repo.ListAll(s.ctx, entity.ListAllInput{})
	s.Require().NoError(err)
	s.Empty(all.Entities)

	byLayer, err := s.repo.ListByLayer(s.ctx, entity.ListByLayerInput{LayerID: "zone_1"})
	s.Require().NoError(err)
	s.Empty(byLayer.Entities)
}

func (s *RedisRepositoryTestSuite) TestLayerIndexFollowsMove() {
	ent := s.testEntity()
	_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: ent})
	s.Require().NoError(err)

	ent.LayerID = "zone_2"
	_, err = s.repo.Save(s.ctx, entity.SaveInput{Entity: ent})
	s.Require().NoError(err)

	oldZone, err := s.repo.ListByLayer(s.ctx, entity.ListByLayerInput{LayerID: "zone_1"})
	s.Require().NoError(err)
	s.Empty(oldZone.Entities)

	newZone, err := s.repo.ListByLayer(s.ctx, entity.ListByLayerInput{LayerID: "zone_2"})
	s.Require().NoError(err)
	s.Len(newZone.Entities, 1)
}

func (s *RedisRepositoryTestSuite) TestListAllSinglePassRebuild() {
	for _, id := range []string{"a", "b", "c"} {
		ent := s.testEntity()
		ent.ID = "char_" + id
		_, err := s.repo.Save(s.ctx, entity.SaveInput{Entity: ent})
		s.Require().NoError(err)
	}

	all, err := s.repo.ListAll(s.ctx, entity.ListAllInput{})
	s.Require().NoError(err)
	s.Len(all.Entities, 3)
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
