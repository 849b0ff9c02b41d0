package world_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/world"
)

type WorldTestSuite struct {
	suite.Suite
}

func (s *WorldTestSuite) TestNewGridIsOpenFloor() {
	g := world.NewGrid(10, 8)
	s.Equal(10, g.Cols)
	s.Equal(8, g.Rows)
	s.Equal(world.TileFloor, g.Cells[7][9])
	s.False(g.IsWall(3, 3))
}

func (s *WorldTestSuite) TestPaintAppliesFilledDisc() {
	g := world.NewGrid(10, 10)
	g.Paint(5, 5, world.TileDifficult, 1)

	// 4-neighbourhood plus center; the diagonal corners stay floor.
	s.Equal(world.TileDifficult, g.Cells[5][5])
	s.Equal(world.TileDifficult, g.Cells[4][5])
	s.Equal(world.TileDifficult, g.Cells[5][4])
	s.Equal(world.TileFloor, g.Cells[4][4])
}

func (s *WorldTestSuite) TestPaintClipsAtEdges() {
	g := world.NewGrid(5, 5)
	g.Paint(0, 0, world.TileWall, 2)

	s.Equal(world.TileWall, g.Cells[0][0])
	s.True(g.IsWall(0, 0))
	s.True(g.IsWall(2, 0))
	s.False(g.IsWall(2, 2))
}

func (s *WorldTestSuite) TestWallAndTerrainOverlays() {
	g := world.NewGrid(6, 6)
	g.SetWall(2, 3)
	g.SetTerrain(1, 1, world.TerrainLava)
	g.SetTerrain(4, 4, world.TerrainDifficult)

	s.True(g.IsWall(2, 3))
	s.Equal(world.TileWall, g.Cells[3][2])
	s.Equal(world.TerrainLava, g.TerrainAt(1, 1))
	s.Equal(world.TileDifficult, g.Cells[4][4])

	g.ClearWall(2, 3)
	s.False(g.IsWall(2, 3))
	s.Equal(world.TileFloor, g.Cells[3][2])
}

func (s *WorldTestSuite) TestGridFileRoundTrip() {
	g := world.NewGrid(6, 4)
	g.SetWall(1, 1)
	g.SetTerrain(2, 2, world.TerrainAcid)
	g.SetElevation(3, 3, 2)
	g.SetItem(4, 1, "Rusty Key")
	g.AddThreat(0, 0, 1.5)

	path := filepath.Join(s.T().TempDir(), "map.json")
	s.Require().NoError(g.SaveFile(path))

	back, err := world.LoadGridFile(path)
	s.Require().NoError(err)

	s.Equal(g.Cols, back.Cols)
	s.Equal(g.Cells, back.Cells)
	s.True(back.IsWall(1, 1))
	s.Equal(world.TerrainAcid, back.TerrainAt(2, 2))
	s.Equal(2, back.ElevationAt(3, 3))
	s.Equal("Rusty Key", back.ItemAt(4, 1))
	s.InDelta(1.5, back.ThreatAt(0, 0), 0.0001)
}

func (s *WorldTestSuite) TestGridJSONIsStable() {
	g := world.NewGrid(2, 2)
	data, err := json.Marshal(g)
	s.Require().NoError(err)

	var back world.Grid
	s.Require().NoError(json.Unmarshal(data, &back))
	s.Equal(g.Cells, back.Cells)
}

func (s *WorldTestSuite) graphNodes() []*entities.WorldNode {
	return []*entities.WorldNode{
		{ID: "a", Name: "Alpha", X: 0, Y: 0},
		{ID: "b", Name: "Beta", X: 100, Y: 0},
		{ID: "c", Name: "Gamma", X: 1000, Y: 1000},
	}
}

func (s *WorldTestSuite) TestGraphLinksNearbyNodes() {
	g := world.NewGraph(s.graphNodes())

	edges := g.GetNeighbors("a")
	s.Require().Len(edges, 1)
	s.Equal("b", edges[0].To)
	s.Equal(world.EdgeKindRoad, edges[0].Kind)
	s.InDelta(100.0, edges[0].Weight, 0.0001)

	s.Empty(g.GetNeighbors("c"))
}

func (s *WorldTestSuite) TestFindNearestNode() {
	g := world.NewGraph(s.graphNodes())

	nearest := g.FindNearestNode(90, 10)
	s.Require().NotNil(nearest)
	s.Equal("b", nearest.ID)
}

func (s *WorldTestSuite) TestTriggerEventDecaysByWeight() {
	g := world.NewGraph(s.graphNodes())

	impacts := g.TriggerEvent("a", "raid", 50)
	s.Require().Len(impacts, 1)
	s.Equal("b", impacts[0].NodeID)
	s.Equal("raid", impacts[0].Kind)
	// 50 * 100 / (100 + 100)
	s.InDelta(25.0, impacts[0].Magnitude, 0.0001)
}

func (s *WorldTestSuite) TestTriggerEventOnIsolatedNode() {
	g := world.NewGraph(s.graphNodes())
	s.Empty(g.TriggerEvent("c", "plague", 50))
}

func TestWorldSuite(t *testing.T) {
	suite.Run(t, new(WorldTestSuite))
}
