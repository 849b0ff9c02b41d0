// Package architect implements the world-building surface: history
// generation through the external engine, snapshot indexing, the
// overworld tile editor, the four-tier hierarchy rows, the asset
// registry, and the narrative clock.
package architect

//go:generate mockgen -destination=mock/mock_service.go -package=architectmock github.com/sagaforge/saga-api/internal/orchestrators/architect Service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/repositories/hierarchy"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/world"
)

// Service defines the interface for world-building operations.
type Service interface {
	Simulate(ctx context.Context, input *SimulateInput) (*SimulateOutput, error)
	HistoryList(ctx context.Context, input *HistoryListInput) (*HistoryListOutput, error)
	HistoryLoad(ctx context.Context, input *HistoryLoadInput) (*HistoryLoadOutput, error)

	Grid(ctx context.Context, input *GridInput) (*GridOutput, error)
	Paint(ctx context.Context, input *PaintInput) (*PaintOutput, error)

	SaveRegion(ctx context.Context, input *SaveRegionInput) (*SaveRegionOutput, error)
	ListRegions(ctx context.Context, input *ListRegionsInput) (*ListRegionsOutput, error)
	SaveZone(ctx context.Context, input *SaveZoneInput) (*SaveZoneOutput, error)
	ListZones(ctx context.Context, input *ListZonesInput) (*ListZonesOutput, error)
	SavePlayerMap(ctx context.Context, input *SavePlayerMapInput) (*SavePlayerMapOutput, error)
	ListPlayerMaps(ctx context.Context, input *ListPlayerMapsInput) (*ListPlayerMapsOutput, error)

	Assets(ctx context.Context, input *AssetsInput) (*AssetsOutput, error)
	WriteAsset(ctx context.Context, input *WriteAssetInput) (*WriteAssetOutput, error)

	AdvanceTime(ctx context.Context, input *AdvanceTimeInput) (*AdvanceTimeOutput, error)
}

// Config holds the dependencies for the architect orchestrator.
type Config struct {
	Registry    *ecs.Registry
	Grid        *world.Grid
	GridPath    string
	Hierarchy   hierarchy.Repository
	Definitions *definitions.Registry
	Settlements *sim.SettlementSystem
	Clock       *sim.Manager
	History     external.HistoryEngine
	Importer    *external.WorldImporter
}

// Validate ensures all required dependencies are provided. The
// history engine is optional; without it the simulate surface reports
// the engine offline.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Grid == nil {
		vb.RequiredField("Grid")
	}
	if c.GridPath == "" {
		vb.RequiredField("GridPath")
	}
	if c.Hierarchy == nil {
		vb.RequiredField("Hierarchy")
	}
	if c.Definitions == nil {
		vb.RequiredField("Definitions")
	}
	if c.Settlements == nil {
		vb.RequiredField("Settlements")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.Importer == nil {
		vb.RequiredField("Importer")
	}

	return vb.Build()
}

type orchestrator struct {
	registry    *ecs.Registry
	grid        *world.Grid
	gridPath    string
	hierarchy   hierarchy.Repository
	definitions *definitions.Registry
	settlements *sim.SettlementSystem
	clock       *sim.Manager
	history     external.HistoryEngine
	importer    *external.WorldImporter

	mu sync.Mutex
}

// NewOrchestrator creates an architect orchestrator with the provided
// dependencies.
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &orchestrator{
		registry:    cfg.Registry,
		grid:        cfg.Grid,
		gridPath:    cfg.GridPath,
		hierarchy:   cfg.Hierarchy,
		definitions: cfg.Definitions,
		settlements: cfg.Settlements,
		clock:       cfg.Clock,
		history:     cfg.History,
		importer:    cfg.Importer,
	}, nil
}

// Simulate implements Service: generate history with the external
// engine, import the export, then run the settlement system once per
// simulated year so economies settle into the new state.
func (o *orchestrator) Simulate(ctx context.Context, input *SimulateInput) (*SimulateOutput, error) {
	if input == nil || input.Years <= 0 {
		return nil, errors.InvalidArgument("years must be positive")
	}
	if o.history == nil {
		return nil, errors.Unavailable("history engine offline")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	export, err := o.history.Simulate(ctx, input.Agents, input.Years)
	if err != nil {
		return nil, err
	}

	imported, err := o.importer.Import(ctx, export)
	if err != nil {
		return nil, err
	}

	for i := 0; i < input.Years; i++ {
		o.settlements.RunTick(ctx)
	}

	slog.InfoContext(ctx, "world simulation imported",
		"years", input.Years,
		"entities", imported,
	)
	return &SimulateOutput{YearsSimulated: input.Years, Imported: imported}, nil
}

// HistoryList implements Service.
func (o *orchestrator) HistoryList(_ context.Context, _ *HistoryListInput) (*HistoryListOutput, error) {
	if o.history == nil {
		return &HistoryListOutput{}, nil
	}
	years, err := o.history.Years()
	if err != nil {
		return nil, err
	}
	return &HistoryListOutput{Years: years}, nil
}

// HistoryLoad implements Service: restore one snapshot year into the
// live world.
func (o *orchestrator) HistoryLoad(ctx context.Context, input *HistoryLoadInput) (*HistoryLoadOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if o.history == nil {
		return nil, errors.Unavailable("history engine offline")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	export, err := o.history.ExportSnapshot(ctx, input.Year)
	if err != nil {
		return nil, err
	}
	imported, err := o.importer.Import(ctx, export)
	if err != nil {
		return nil, err
	}
	return &HistoryLoadOutput{Year: input.Year, Imported: imported}, nil
}

// Grid implements Service.
func (o *orchestrator) Grid(_ context.Context, _ *GridInput) (*GridOutput, error) {
	return &GridOutput{Grid: o.grid}, nil
}

// Paint implements Service. Every stroke persists immediately; the
// editor has no separate save step.
func (o *orchestrator) Paint(ctx context.Context, input *PaintInput) (*PaintOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !o.grid.InBounds(input.X, input.Y) {
		return nil, errors.OutOfRangef("(%d, %d) is off the grid", input.X, input.Y)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.grid.Paint(input.X, input.Y, input.TileIndex, input.Radius)
	if err := o.grid.SaveFile(o.gridPath); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "grid painted",
		"x", input.X, "y", input.Y,
		"tile", input.TileIndex,
		"radius", input.Radius,
	)
	return &PaintOutput{}, nil
}

// SaveRegion implements Service.
func (o *orchestrator) SaveRegion(ctx context.Context, input *SaveRegionInput) (*SaveRegionOutput, error) {
	if input == nil || input.Region == nil {
		return nil, errors.InvalidArgument("region is required")
	}
	out, err := o.hierarchy.SaveRegion(ctx, hierarchy.SaveRegionInput{Region: input.Region})
	if err != nil {
		return nil, err
	}
	return &SaveRegionOutput{Region: out.Region}, nil
}

// ListRegions implements Service.
func (o *orchestrator) ListRegions(ctx context.Context, _ *ListRegionsInput) (*ListRegionsOutput, error) {
	out, err := o.hierarchy.ListRegions(ctx, hierarchy.ListRegionsInput{})
	if err != nil {
		return nil, err
	}
	return &ListRegionsOutput{Regions: out.Regions}, nil
}

// SaveZone implements Service.
func (o *orchestrator) SaveZone(ctx context.Context, input *SaveZoneInput) (*SaveZoneOutput, error) {
	if input == nil || input.Zone == nil {
		return nil, errors.InvalidArgument("zone is required")
	}
	out, err := o.hierarchy.SaveZone(ctx, hierarchy.SaveZoneInput{Zone: input.Zone})
	if err != nil {
		return nil, err
	}
	return &SaveZoneOutput{Zone: out.Zone}, nil
}

// ListZones implements Service.
func (o *orchestrator) ListZones(ctx context.Context, input *ListZonesInput) (*ListZonesOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	out, err := o.hierarchy.ListZonesByRegion(ctx, hierarchy.ListZonesByRegionInput{RegionID: input.GlobalRegionID})
	if err != nil {
		return nil, err
	}
	return &ListZonesOutput{Zones: out.Zones}, nil
}

// SavePlayerMap implements Service.
func (o *orchestrator) SavePlayerMap(ctx context.Context, input *SavePlayerMapInput) (*SavePlayerMapOutput, error) {
	if input == nil || input.Map == nil {
		return nil, errors.InvalidArgument("player map is required")
	}
	out, err := o.hierarchy.SavePlayerMap(ctx, hierarchy.SavePlayerMapInput{PlayerMap: input.Map})
	if err != nil {
		return nil, err
	}
	return &SavePlayerMapOutput{Map: out.PlayerMap}, nil
}

// ListPlayerMaps implements Service.
func (o *orchestrator) ListPlayerMaps(ctx context.Context, input *ListPlayerMapsInput) (*ListPlayerMapsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	out, err := o.hierarchy.ListPlayerMapsByZone(ctx, hierarchy.ListPlayerMapsByZoneInput{ZoneID: input.LocalZoneID})
	if err != nil {
		return nil, err
	}
	return &ListPlayerMapsOutput{Maps: out.PlayerMaps}, nil
}

// Assets implements Service.
func (o *orchestrator) Assets(_ context.Context, _ *AssetsInput) (*AssetsOutput, error) {
	return &AssetsOutput{
		Species:   o.definitions.Species,
		Factions:  o.definitions.Factions,
		Resources: o.definitions.Resources,
		Wildlife:  o.definitions.Wildlife,
		Flora:     o.definitions.Flora,
	}, nil
}

// WriteAsset implements Service.
func (o *orchestrator) WriteAsset(ctx context.Context, input *WriteAssetInput) (*WriteAssetOutput, error) {
	if input == nil || input.Category == "" || input.ID == "" {
		return nil, errors.InvalidArgument("category and id are required")
	}
	if err := o.definitions.SaveDefinition(input.Category, input.ID, input.Definition); err != nil {
		return nil, err
	}
	if err := o.definitions.LoadAll(ctx); err != nil {
		return nil, err
	}
	return &WriteAssetOutput{}, nil
}

// AdvanceTime implements Service.
func (o *orchestrator) AdvanceTime(ctx context.Context, input *AdvanceTimeInput) (*AdvanceTimeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.clock.AdvanceTime(ctx, input.Hours, input.X, input.Y); err != nil {
		return nil, err
	}
	return &AdvanceTimeOutput{
		NarrativeHours: o.clock.NarrativeHours(),
		Epoch:          o.clock.Epoch(),
	}, nil
}
