// Package hierarchy provides persistence for the four-tier world layout:
// global regions, local zones, and player maps.
package hierarchy

//go:generate mockgen -destination=mock/mock_repository.go -package=hierarchymock github.com/sagaforge/saga-api/internal/repositories/hierarchy Repository

import (
	"context"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Repository defines the interface for hierarchy persistence
type Repository interface {
	// SaveRegion creates or replaces a global region row
	SaveRegion(ctx context.Context, input SaveRegionInput) (*SaveRegionOutput, error)

	// GetRegion retrieves a region by integer id
	// Returns errors.NotFound if the region doesn't exist
	GetRegion(ctx context.Context, input GetRegionInput) (*GetRegionOutput, error)

	// ListRegions returns every region
	ListRegions(ctx context.Context, input ListRegionsInput) (*ListRegionsOutput, error)

	// SaveZone creates or replaces a local zone row
	SaveZone(ctx context.Context, input SaveZoneInput) (*SaveZoneOutput, error)

	// GetZone retrieves a zone by id
	GetZone(ctx context.Context, input GetZoneInput) (*GetZoneOutput, error)

	// ListZonesByRegion returns the zones inside a region
	ListZonesByRegion(ctx context.Context, input ListZonesByRegionInput) (*ListZonesByRegionOutput, error)

	// SavePlayerMap creates or replaces a player map row
	SavePlayerMap(ctx context.Context, input SavePlayerMapInput) (*SavePlayerMapOutput, error)

	// GetPlayerMap retrieves a player map by id
	GetPlayerMap(ctx context.Context, input GetPlayerMapInput) (*GetPlayerMapOutput, error)

	// ListPlayerMapsByZone returns the player maps inside a zone
	ListPlayerMapsByZone(ctx context.Context, input ListPlayerMapsByZoneInput) (*ListPlayerMapsByZoneOutput, error)
}

// SaveRegionInput defines the input for saving a region
type SaveRegionInput struct {
	Region *entities.GlobalRegion
}

// SaveRegionOutput defines the output for saving a region
type SaveRegionOutput struct {
	Region *entities.GlobalRegion
}

// GetRegionInput defines the input for getting a region
type GetRegionInput struct {
	ID int
}

// GetRegionOutput defines the output for getting a region
type GetRegionOutput struct {
	Region *entities.GlobalRegion
}

// ListRegionsInput defines the input for listing regions
type ListRegionsInput struct{}

// ListRegionsOutput defines the output for listing regions
type ListRegionsOutput struct {
	Regions []*entities.GlobalRegion
}

// SaveZoneInput defines the input for saving a zone
type SaveZoneInput struct {
	Zone *entities.LocalZone
}

// SaveZoneOutput defines the output for saving a zone
type SaveZoneOutput struct {
	Zone *entities.LocalZone
}

// GetZoneInput defines the input for getting a zone
type GetZoneInput struct {
	ID string
}

// GetZoneOutput defines the output for getting a zone
type GetZoneOutput struct {
	Zone *entities.LocalZone
}

// ListZonesByRegionInput defines the input for listing zones in a region
type ListZonesByRegionInput struct {
	RegionID int
}

// ListZonesByRegionOutput defines the output for listing zones in a region
type ListZonesByRegionOutput struct {
	Zones []*entities.LocalZone
}

// SavePlayerMapInput defines the input for saving a player map
type SavePlayerMapInput struct {
	PlayerMap *entities.PlayerMap
}

// SavePlayerMapOutput defines the output for saving a player map
type SavePlayerMapOutput struct {
	PlayerMap *entities.PlayerMap
}

// GetPlayerMapInput defines the input for getting a player map
type GetPlayerMapInput struct {
	ID string
}

// GetPlayerMapOutput defines the output for getting a player map
type GetPlayerMapOutput struct {
	PlayerMap *entities.PlayerMap
}

// ListPlayerMapsByZoneInput defines the input for listing maps in a zone
type ListPlayerMapsByZoneInput struct {
	ZoneID string
}

// ListPlayerMapsByZoneOutput defines the output for listing maps in a zone
type ListPlayerMapsByZoneOutput struct {
	PlayerMaps []*entities.PlayerMap
}
