package hierarchy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/repositories/hierarchy"
	"github.com/sagaforge/saga-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    hierarchy.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := hierarchy.NewRedis(&hierarchy.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) TestRegionRoundTrip() {
	region := &entities.GlobalRegion{
		ID:    3,
		Name:  "The Ember Wastes",
		GridX: 1,
		GridY: 2,
		Biome: map[string]interface{}{"type": "desert"},
	}

	_, err := s.repo.SaveRegion(s.ctx, hierarchy.SaveRegionInput{Region: region})
	s.Require().NoError(err)

	got, err := s.repo.GetRegion(s.ctx, hierarchy.GetRegionInput{ID: 3})
	s.Require().NoError(err)
	s.Equal(region.Name, got.Region.Name)
	s.Equal(region.GridX, got.Region.GridX)
	s.Equal("desert", got.Region.Biome["type"])
}

func (s *RedisRepositoryTestSuite) TestGetRegionNotFound() {
	_, err := s.repo.GetRegion(s.ctx, hierarchy.GetRegionInput{ID: 99})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListRegions() {
	for i := 1; i <= 3; i++ {
		_, err := s.repo.SaveRegion(s.ctx, hierarchy.SaveRegionInput{
			Region: &entities.GlobalRegion{ID: i, Name: "Region", GridX: i, GridY: 0},
		})
		s.Require().NoError(err)
	}

	out, err := s.repo.ListRegions(s.ctx, hierarchy.ListRegionsInput{})
	s.Require().NoError(err)
	s.Len(out.Regions, 3)
}

func (s *RedisRepositoryTestSuite) TestZonesIndexedByRegion() {
	zones := []*entities.LocalZone{
		{ID: "zone_1_0_0", GlobalRegionID: 1, RegionX: 0, RegionY: 0},
		{ID: "zone_1_0_1", GlobalRegionID: 1, RegionX: 0, RegionY: 1},
		{ID: "zone_2_0_0", GlobalRegionID: 2, RegionX: 0, RegionY: 0},
	}
	for _, z := range zones {
		_, err := s.repo.SaveZone(s.ctx, hierarchy.SaveZoneInput{Zone: z})
		s.Require().NoError(err)
	}

	got, err := s.repo.GetZone(s.ctx, hierarchy.GetZoneInput{ID: "zone_1_0_1"})
	s.Require().NoError(err)
	s.Equal(1, got.Zone.GlobalRegionID)

	inRegion, err := s.repo.ListZonesByRegion(s.ctx, hierarchy.ListZonesByRegionInput{RegionID: 1})
	s.Require().NoError(err)
	s.Len(inRegion.Zones, 2)
}

func (s *RedisRepositoryTestSuite) TestPlayerMapsIndexedByZone() {
	maps := []*entities.PlayerMap{
		{ID: "pmap_a", LocalZoneID: "zone_1_0_0", LocalX: 4, LocalY: 4},
		{ID: "pmap_b", LocalZoneID: "zone_1_0_0", LocalX: 5, LocalY: 4},
	}
	for _, m := range maps {
		_, err := s.repo.SavePlayerMap(s.ctx, hierarchy.SavePlayerMapInput{PlayerMap: m})
		s.Require().NoError(err)
	}

	got, err := s.repo.GetPlayerMap(s.ctx, hierarchy.GetPlayerMapInput{ID: "pmap_b"})
	s.Require().NoError(err)
	s.Equal(5, got.PlayerMap.LocalX)

	inZone, err := s.repo.ListPlayerMapsByZone(s.ctx, hierarchy.ListPlayerMapsByZoneInput{ZoneID: "zone_1_0_0"})
	s.Require().NoError(err)
	s.Len(inZone.PlayerMaps, 2)
}

func (s *RedisRepositoryTestSuite) TestSaveValidation() {
	s.Run("nil region", func() {
		_, err := s.repo.SaveRegion(s.ctx, hierarchy.SaveRegionInput{})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("zone with empty ID", func() {
		_, err := s.repo.SaveZone(s.ctx, hierarchy.SaveZoneInput{Zone: &entities.LocalZone{GlobalRegionID: 1}})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("player map with empty ID", func() {
		_, err := s.repo.SavePlayerMap(s.ctx, hierarchy.SavePlayerMapInput{PlayerMap: &entities.PlayerMap{LocalZoneID: "z"}})
		s.True(errors.IsInvalidArgument(err))
	})
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
