package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/world"
)

// Spritesheet icons for imported world entities.
const (
	iconAgent    = "sheet:5076"
	iconFlora    = "sheet:896"
	iconDungeon  = "sheet:2"
	iconTown     = "sheet:3"
	iconTower    = "sheet:4"
	importedFood = 500
	importedGold = 100
)

// AgentSeed is one faction or culture row in a master export.
type AgentSeed struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Pos        []float64 `json:"pos"`
	Population int       `json:"pop"`
}

// LocationSeed is one settlement or site row in a master export.
type LocationSeed struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Pos         []float64 `json:"pos"`
	Description string    `json:"description"`
}

// MasterExport is the history engine's output format.
type MasterExport struct {
	Agents    []AgentSeed    `json:"agents"`
	Locations []LocationSeed `json:"locations"`
}

// WorldImporter is the ETL bridge between the external history engine
// and the runtime: it translates master-export JSON into persistent
// ECS entities and travel-graph nodes.
type WorldImporter struct {
	registry *ecs.Registry
	graph    *world.Graph
}

// WorldImporterConfig holds the importer dependencies.
type WorldImporterConfig struct {
	Registry *ecs.Registry
	Graph    *world.Graph
}

// Validate checks required fields.
func (cfg *WorldImporterConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	if cfg.Registry == nil {
		return errors.InvalidArgument("registry is required")
	}
	if cfg.Graph == nil {
		return errors.InvalidArgument("graph is required")
	}
	return nil
}

// NewWorldImporter creates a world importer.
func NewWorldImporter(cfg *WorldImporterConfig) (*WorldImporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WorldImporter{registry: cfg.Registry, graph: cfg.Graph}, nil
}

// ImportFile reads a master export file and seeds the world from it.
func (w *WorldImporter) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NotFoundf("master export %s", path)
		}
		return 0, errors.Wrapf(err, "failed to read master export %s", path)
	}
	var export MasterExport
	if err := json.Unmarshal(data, &export); err != nil {
		return 0, errors.Wrapf(err, "failed to decode master export %s", path)
	}
	return w.Import(ctx, &export)
}

// Import seeds ECS entities and graph nodes from an export and
// returns how many entities landed.
func (w *WorldImporter) Import(ctx context.Context, export *MasterExport) (int, error) {
	if export == nil {
		return 0, errors.InvalidArgument("export is required")
	}

	count := 0
	for _, agent := range export.Agents {
		if err := w.importAgent(ctx, agent); err != nil {
			return count, err
		}
		count++
	}
	for _, loc := range export.Locations {
		if err := w.importLocation(ctx, loc); err != nil {
			return count, err
		}
		count++
	}

	slog.InfoContext(ctx, "world import complete",
		"agents", len(export.Agents),
		"locations", len(export.Locations),
	)
	return count, nil
}

// importAgent converts a simulated culture into a faction entity.
func (w *WorldImporter) importAgent(ctx context.Context, agent AgentSeed) error {
	name := agent.Name
	if name == "" {
		name = "Unknown Tribe"
	}
	x, y := seedCoords(agent.Pos)

	icon := iconAgent
	if strings.EqualFold(agent.Type, "Flora") {
		icon = iconFlora
	}

	pop := agent.Population
	if pop <= 0 {
		pop = 100
	}

	_, err := w.registry.AddEntity(ctx, &entities.Entity{
		Type:       "faction",
		Name:       name,
		Position:   &entities.Position{X: int(x), Y: int(y)},
		Renderable: &entities.Renderable{Sprite: icon, Scale: 1.2},
		Faction:    &entities.FactionMember{Faction: name},
		Logistics: &entities.Logistics{
			Resources:  map[string]float64{"Food": importedFood, "Gold": importedGold},
			Population: pop,
		},
		Tags: entities.NewTagSet("faction", "simulation_active"),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to seed faction %s", name)
	}
	return nil
}

// importLocation converts a settlement row into a location entity and
// a travel-graph node.
func (w *WorldImporter) importLocation(ctx context.Context, loc LocationSeed) error {
	name := loc.Name
	if name == "" {
		name = "Uncharted Site"
	}
	x, y := seedCoords(loc.Pos)

	locType := strings.ToLower(loc.Type)
	icon := iconDungeon
	switch {
	case strings.Contains(locType, "town"), strings.Contains(locType, "village"):
		icon = iconTown
	case strings.Contains(locType, "tower"):
		icon = iconTower
	}

	desc := loc.Description
	if desc == "" {
		desc = "A local point of interest."
	}

	ent, err := w.registry.AddEntity(ctx, &entities.Entity{
		Type:       "location",
		Name:       name,
		Position:   &entities.Position{X: int(x), Y: int(y)},
		Renderable: &entities.Renderable{Sprite: icon, Scale: 1.5},
		Tags:       entities.NewTagSet("location", "interactive"),
		Metadata:   map[string]interface{}{"description": desc},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to seed location %s", name)
	}

	w.graph.AddNode(&entities.WorldNode{
		ID:   fmt.Sprintf("loc_%s", ent.ID),
		Name: name,
		X:    x,
		Y:    y,
	})
	return nil
}

func seedCoords(pos []float64) (float64, float64) {
	if len(pos) < 2 {
		return 0, 0
	}
	return pos[0], pos[1]
}
