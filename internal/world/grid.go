// Package world holds the spatial structures: the tactical tile grid
// with its overlays and the node travel graph.
package world

import (
	"encoding/json"
	"os"

	"github.com/sagaforge/saga-api/internal/errors"
)

// Tile codes. The grid default is open floor.
const (
	TileFloor     = 128
	TileDifficult = 130
	TileWall      = 896
)

// Special terrain labels.
const (
	TerrainAcid         = "ACID"
	TerrainLava         = "LAVA"
	TerrainPoison       = "POISON"
	TerrainDifficult    = "DIFFICULT"
	TerrainSteamVent    = "STEAM_VENT"
	TerrainWoodenBridge = "WOODEN_BRIDGE"
	TerrainAcidBarrel   = "ACID_BARREL"
)

// Point is a grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is one tactical map: a tile-code matrix plus sparse overlays
// for walls, special terrain, elevation, items, and threat.
type Grid struct {
	Cols  int
	Rows  int
	Cells [][]int

	Walls     map[Point]struct{}
	Terrain   map[Point]string
	Elevation map[Point]int
	Items     map[Point]string
	Threat    map[Point]float64
}

// NewGrid creates an open floor grid of the given size.
func NewGrid(cols, rows int) *Grid {
	cells := make([][]int, rows)
	for y := range cells {
		row := make([]int, cols)
		for x := range row {
			row[x] = TileFloor
		}
		cells[y] = row
	}
	return &Grid{
		Cols:      cols,
		Rows:      rows,
		Cells:     cells,
		Walls:     make(map[Point]struct{}),
		Terrain:   make(map[Point]string),
		Elevation: make(map[Point]int),
		Items:     make(map[Point]string),
		Threat:    make(map[Point]float64),
	}
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Cols && y >= 0 && y < g.Rows
}

// IsWall reports whether (x, y) blocks movement and sight.
func (g *Grid) IsWall(x, y int) bool {
	_, ok := g.Walls[Point{x, y}]
	return ok
}

// SetWall marks a wall and updates the tile code.
func (g *Grid) SetWall(x, y int) {
	if !g.InBounds(x, y) {
		return
	}
	g.Walls[Point{x, y}] = struct{}{}
	g.Cells[y][x] = TileWall
}

// ClearWall removes a wall, restoring open floor.
func (g *Grid) ClearWall(x, y int) {
	if !g.InBounds(x, y) {
		return
	}
	delete(g.Walls, Point{x, y})
	g.Cells[y][x] = TileFloor
}

// TerrainAt returns the special terrain label at (x, y), empty for
// plain ground.
func (g *Grid) TerrainAt(x, y int) string {
	return g.Terrain[Point{x, y}]
}

// SetTerrain labels a tile; DIFFICULT also updates the tile code.
func (g *Grid) SetTerrain(x, y int, label string) {
	if !g.InBounds(x, y) {
		return
	}
	g.Terrain[Point{x, y}] = label
	if label == TerrainDifficult {
		g.Cells[y][x] = TileDifficult
	}
}

// ElevationAt returns the tile height, zero by default.
func (g *Grid) ElevationAt(x, y int) int {
	return g.Elevation[Point{x, y}]
}

// SetElevation sets the tile height.
func (g *Grid) SetElevation(x, y, height int) {
	if g.InBounds(x, y) {
		g.Elevation[Point{x, y}] = height
	}
}

// ItemAt returns the item label at (x, y), empty when none.
func (g *Grid) ItemAt(x, y int) string {
	return g.Items[Point{x, y}]
}

// SetItem places an item label on a tile.
func (g *Grid) SetItem(x, y int, item string) {
	if g.InBounds(x, y) {
		g.Items[Point{x, y}] = item
	}
}

// RemoveItem clears the item at (x, y).
func (g *Grid) RemoveItem(x, y int) {
	delete(g.Items, Point{x, y})
}

// ThreatAt returns the threat overlay value at (x, y).
func (g *Grid) ThreatAt(x, y int) float64 {
	return g.Threat[Point{x, y}]
}

// AddThreat accumulates threat on a tile.
func (g *Grid) AddThreat(x, y int, amount float64) {
	if g.InBounds(x, y) {
		g.Threat[Point{x, y}] += amount
	}
}

// Paint applies a filled circular brush of the tile code centered on
// (x, y). Out-of-bounds cells are skipped.
func (g *Grid) Paint(x, y, tile, radius int) {
	radiusSq := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radiusSq {
				continue
			}
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			g.Cells[ny][nx] = tile
			switch tile {
			case TileWall:
				g.Walls[Point{nx, ny}] = struct{}{}
			default:
				delete(g.Walls, Point{nx, ny})
			}
		}
	}
}

type labeledPoint struct {
	Point
	Label string `json:"label"`
}

type valuedPoint struct {
	Point
	Value float64 `json:"value"`
}

type leveledPoint struct {
	Point
	Height int `json:"height"`
}

type gridFile struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Grid      [][]int        `json:"grid"`
	Walls     []Point        `json:"walls,omitempty"`
	Terrain   []labeledPoint `json:"terrain,omitempty"`
	Elevation []leveledPoint `json:"elevation,omitempty"`
	Items     []labeledPoint `json:"items,omitempty"`
	Threat    []valuedPoint  `json:"threat,omitempty"`
}

// MarshalJSON serializes the grid and its overlays.
func (g *Grid) MarshalJSON() ([]byte, error) {
	file := gridFile{Width: g.Cols, Height: g.Rows, Grid: g.Cells}
	for p := range g.Walls {
		file.Walls = append(file.Walls, p)
	}
	for p, label := range g.Terrain {
		file.Terrain = append(file.Terrain, labeledPoint{Point: p, Label: label})
	}
	for p, h := range g.Elevation {
		file.Elevation = append(file.Elevation, leveledPoint{Point: p, Height: h})
	}
	for p, item := range g.Items {
		file.Items = append(file.Items, labeledPoint{Point: p, Label: item})
	}
	for p, v := range g.Threat {
		file.Threat = append(file.Threat, valuedPoint{Point: p, Value: v})
	}
	return json.Marshal(file)
}

// UnmarshalJSON restores the grid and its overlays.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var file gridFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}

	restored := NewGrid(file.Width, file.Height)
	if file.Grid != nil {
		restored.Cells = file.Grid
	}
	for _, p := range file.Walls {
		restored.Walls[p] = struct{}{}
	}
	for _, t := range file.Terrain {
		restored.Terrain[t.Point] = t.Label
	}
	for _, e := range file.Elevation {
		restored.Elevation[e.Point] = e.Height
	}
	for _, i := range file.Items {
		restored.Items[i.Point] = i.Label
	}
	for _, t := range file.Threat {
		restored.Threat[t.Point] = t.Value
	}

	*g = *restored
	return nil
}

// SaveFile writes the grid to disk as JSON.
func (g *Grid) SaveFile(path string) error {
	data, err := json.Marshal(g)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize grid")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write grid %s", path)
	}
	return nil
}

// LoadGridFile reads a grid back from disk.
func LoadGridFile(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("grid file %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to read grid %s", path)
	}

	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrapf(err, "failed to parse grid %s", path)
	}
	return &g, nil
}
