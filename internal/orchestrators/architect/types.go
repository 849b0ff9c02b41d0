package architect

import (
	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/world"
)

// SimulateInput defines the request for generating world history.
type SimulateInput struct {
	Agents []external.AgentSeed
	Years  int
}

// SimulateOutput defines the response after history generation and
// import.
type SimulateOutput struct {
	YearsSimulated int
	Imported       int
}

// HistoryListInput defines the request for listing snapshot years.
type HistoryListInput struct{}

// HistoryListOutput defines the response for listing snapshot years.
type HistoryListOutput struct {
	Years []int
}

// HistoryLoadInput defines the request for restoring a snapshot year.
type HistoryLoadInput struct {
	Year int
}

// HistoryLoadOutput defines the response for restoring a snapshot.
type HistoryLoadOutput struct {
	Year     int
	Imported int
}

// GridInput defines the request for the overworld grid.
type GridInput struct{}

// GridOutput defines the response for the overworld grid.
type GridOutput struct {
	Grid *world.Grid
}

// PaintInput defines the request for painting overworld tiles.
type PaintInput struct {
	X, Y      int
	TileIndex int
	Radius    int
}

// PaintOutput defines the response after painting.
type PaintOutput struct{}

// SaveRegionInput defines the request for saving a global region.
type SaveRegionInput struct {
	Region *entities.GlobalRegion
}

// SaveRegionOutput defines the response for saving a global region.
type SaveRegionOutput struct {
	Region *entities.GlobalRegion
}

// ListRegionsInput defines the request for listing global regions.
type ListRegionsInput struct{}

// ListRegionsOutput defines the response for listing global regions.
type ListRegionsOutput struct {
	Regions []*entities.GlobalRegion
}

// SaveZoneInput defines the request for saving a local zone.
type SaveZoneInput struct {
	Zone *entities.LocalZone
}

// SaveZoneOutput defines the response for saving a local zone.
type SaveZoneOutput struct {
	Zone *entities.LocalZone
}

// ListZonesInput defines the request for listing zones in a region.
type ListZonesInput struct {
	GlobalRegionID int
}

// ListZonesOutput defines the response for listing zones in a region.
type ListZonesOutput struct {
	Zones []*entities.LocalZone
}

// SavePlayerMapInput defines the request for saving a player map.
type SavePlayerMapInput struct {
	Map *entities.PlayerMap
}

// SavePlayerMapOutput defines the response for saving a player map.
type SavePlayerMapOutput struct {
	Map *entities.PlayerMap
}

// ListPlayerMapsInput defines the request for listing maps in a zone.
type ListPlayerMapsInput struct {
	LocalZoneID string
}

// ListPlayerMapsOutput defines the response for listing maps in a
// zone.
type ListPlayerMapsOutput struct {
	Maps []*entities.PlayerMap
}

// AssetsInput defines the request for reading the asset registry.
type AssetsInput struct{}

// AssetsOutput defines the response for reading the asset registry.
type AssetsOutput struct {
	Species   map[string]*definitions.Species
	Factions  map[string]*definitions.Faction
	Resources map[string]*definitions.Resource
	Wildlife  map[string]*definitions.Wildlife
	Flora     map[string]*definitions.Flora
}

// WriteAssetInput defines the request for writing one asset.
type WriteAssetInput struct {
	Category   string
	ID         string
	Definition interface{}
}

// WriteAssetOutput defines the response for writing one asset.
type WriteAssetOutput struct{}

// AdvanceTimeInput defines the request for advancing narrative time.
type AdvanceTimeInput struct {
	Hours int64
	X, Y  float64
}

// AdvanceTimeOutput defines the response for advancing narrative
// time.
type AdvanceTimeOutput struct {
	NarrativeHours int64
	Epoch          int
}
