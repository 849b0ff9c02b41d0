package entities

// WorldNode is a persisted travel-graph node: a settlement, junction,
// or landmark on the world map.
type WorldNode struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	FactionID string             `json:"faction_id,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Metric returns a named metric, or fallback when absent.
func (n *WorldNode) Metric(name string, fallback float64) float64 {
	if n.Metrics == nil {
		return fallback
	}
	if v, ok := n.Metrics[name]; ok {
		return v
	}
	return fallback
}

// SetMetric stores a named metric.
func (n *WorldNode) SetMetric(name string, value float64) {
	if n.Metrics == nil {
		n.Metrics = make(map[string]float64)
	}
	n.Metrics[name] = value
}

// GlobalRegion is the top tier of the four-tier hierarchy.
type GlobalRegion struct {
	ID       int                    `json:"id"`
	Name     string                 `json:"name"`
	GridX    int                    `json:"grid_x"`
	GridY    int                    `json:"grid_y"`
	Biome    map[string]interface{} `json:"biome,omitempty"`
	Politics map[string]interface{} `json:"politics,omitempty"`
}

// LocalZone is the second tier, unique within a global region.
type LocalZone struct {
	ID             string                 `json:"id"`
	GlobalRegionID int                    `json:"global_region_id"`
	RegionX        int                    `json:"region_x"`
	RegionY        int                    `json:"region_y"`
	Terrain        map[string]interface{} `json:"terrain,omitempty"`
}

// PlayerMap is the third tier: a tactical map within a local zone.
type PlayerMap struct {
	ID          string                 `json:"id"`
	LocalZoneID string                 `json:"local_zone_id"`
	LocalX      int                    `json:"local_x"`
	LocalY      int                    `json:"local_y"`
	MapData     map[string]interface{} `json:"map_data,omitempty"`
}
