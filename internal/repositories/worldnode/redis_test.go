package worldnode_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/repositories/worldnode"
	"github.com/sagaforge/saga-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    worldnode.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := worldnode.NewRedis(&worldnode.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) testNodes() []*entities.WorldNode {
	return []*entities.WorldNode{
		{ID: "node_millbrook", Name: "Millbrook", X: 100, Y: 250, FactionID: "faction_vale",
			Metrics: map[string]float64{"wealth": 120, "population": 300}},
		{ID: "node_crossing", Name: "Old Crossing", X: 240, Y: 260},
	}
}

func (s *RedisRepositoryTestSuite) TestSyncAndGetRoundTrip() {
	nodes := s.testNodes()

	out, err := s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{Nodes: nodes})
	s.Require().NoError(err)
	s.Equal(2, out.Count)

	got, err := s.repo.Get(s.ctx, worldnode.GetInput{ID: "node_millbrook"})
	s.Require().NoError(err)
	s.Equal("Millbrook", got.Node.Name)
	s.Equal("faction_vale", got.Node.FactionID)
	s.InDelta(120.0, got.Node.Metric("wealth", 0), 0.001)
}

func (s *RedisRepositoryTestSuite) TestSyncNodesIsIdempotent() {
	nodes := s.testNodes()

	_, err := s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{Nodes: nodes})
	s.Require().NoError(err)
	_, err = s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{Nodes: nodes})
	s.Require().NoError(err)

	all, err := s.repo.ListAll(s.ctx, worldnode.ListAllInput{})
	s.Require().NoError(err)
	s.Len(all.Nodes, 2)
}

func (s *RedisRepositoryTestSuite) TestSyncNodesValidation() {
	s.Run("empty batch", func() {
		out, err := s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{})
		s.Require().NoError(err)
		s.Equal(0, out.Count)
	})

	s.Run("node with empty ID", func() {
		_, err := s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{
			Nodes: []*entities.WorldNode{{Name: "unnamed"}},
		})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, worldnode.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestSyncUpdatesMetrics() {
	nodes := s.testNodes()
	_, err := s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{Nodes: nodes})
	s.Require().NoError(err)

	nodes[0].SetMetric("wealth", 135)
	_, err = s.repo.SyncNodes(s.ctx, worldnode.SyncNodesInput{Nodes: nodes[:1]})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, worldnode.GetInput{ID: "node_millbrook"})
	s.Require().NoError(err)
	s.InDelta(135.0, got.Node.Metric("wealth", 0), 0.001)
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
