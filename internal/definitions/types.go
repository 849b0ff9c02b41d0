package definitions

import (
	"github.com/sagaforge/saga-api/internal/errors"
)

// Resource is a tradeable or consumable world resource.
type Resource struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Rarity      float64            `json:"rarity"`
	SpawnBiomes []string           `json:"spawn_biomes,omitempty"`
	IsFinite    bool               `json:"is_finite,omitempty"`
	Bonuses     map[string]float64 `json:"bonuses,omitempty"`
}

// Resource categories
const (
	CategoryFood     = "food"
	CategoryMaterial = "material"
	CategoryWealth   = "wealth"
	CategoryLuxury   = "luxury"
)

func defaultResource() Resource {
	return Resource{Rarity: 0.5}
}

// Validate checks required fields and ranges.
func (r *Resource) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", r.ID, vb)
	errors.ValidateRequired("name", r.Name, vb)
	errors.ValidateEnum("category", r.Category,
		[]string{CategoryFood, CategoryMaterial, CategoryWealth, CategoryLuxury}, vb)
	errors.ValidateRangeFloat("rarity", r.Rarity, 0, 1, vb)
	return vb.Build()
}

// TaskWeights scales a species' productivity per settlement task.
type TaskWeights struct {
	Farm  float64 `json:"farm"`
	Mine  float64 `json:"mine"`
	Hunt  float64 `json:"hunt"`
	Trade float64 `json:"trade"`
	Build float64 `json:"build"`
}

func defaultTaskWeights() TaskWeights {
	return TaskWeights{Farm: 1, Mine: 1, Hunt: 1, Trade: 1, Build: 1}
}

// Species is a playable or simulated population template.
type Species struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	GrowthRate       float64            `json:"growth_rate"`
	Strength         float64            `json:"strength"`
	Speed            float64            `json:"speed"`
	WaterRequirement float64            `json:"water_requirement"`
	MinTempTolerance float64            `json:"min_temp_tolerance"`
	MaxTempTolerance float64            `json:"max_temp_tolerance"`
	FavoredBiomes    []string           `json:"favored_biomes,omitempty"`
	HatedBiomes      []string           `json:"hated_biomes,omitempty"`
	TaskWeights      TaskWeights        `json:"task_weights"`
	ResourceNeeds    map[string]float64 `json:"resource_needs,omitempty"`
}

func defaultSpecies() Species {
	return Species{
		GrowthRate:       0.05,
		Strength:         10,
		Speed:            10,
		WaterRequirement: 0.5,
		MinTempTolerance: -10,
		MaxTempTolerance: 40,
		TaskWeights:      defaultTaskWeights(),
	}
}

// Validate checks required fields and ranges.
func (s *Species) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", s.ID, vb)
	errors.ValidateRequired("name", s.Name, vb)
	errors.ValidateRangeFloat("water_requirement", s.WaterRequirement, 0, 1, vb)
	return vb.Build()
}

// Faction is a political actor bound to a primary species.
type Faction struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	PrimarySpeciesID string  `json:"primary_species_id"`
	Aggression       float64 `json:"aggression"`
	TradeFocus       float64 `json:"trade_focus"`
	ExpansionDrive   float64 `json:"expansion_drive"`
}

func defaultFaction() Faction {
	return Faction{Aggression: 0.5, TradeFocus: 0.5, ExpansionDrive: 0.5}
}

// Validate checks required fields and ranges.
func (f *Faction) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", f.ID, vb)
	errors.ValidateRequired("name", f.Name, vb)
	errors.ValidateRequired("primary_species_id", f.PrimarySpeciesID, vb)
	errors.ValidateRangeFloat("aggression", f.Aggression, 0, 1, vb)
	errors.ValidateRangeFloat("trade_focus", f.TradeFocus, 0, 1, vb)
	errors.ValidateRangeFloat("expansion_drive", f.ExpansionDrive, 0, 1, vb)
	return vb.Build()
}

// Wildlife is an animal population template.
type Wildlife struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Hostile          bool           `json:"hostile,omitempty"`
	Tamable          bool           `json:"tamable,omitempty"`
	Farmable         bool           `json:"farmable,omitempty"`
	GrowthRate       float64        `json:"growth_rate"`
	WaterRequirement float64        `json:"water_requirement"`
	MinTempTolerance float64        `json:"min_temp_tolerance"`
	MaxTempTolerance float64        `json:"max_temp_tolerance"`
	SpawnBiomes      []string       `json:"spawn_biomes,omitempty"`
	ResourceYields   map[string]int `json:"resource_yields,omitempty"`
}

func defaultWildlife() Wildlife {
	return Wildlife{
		GrowthRate:       0.1,
		WaterRequirement: 0.5,
		MinTempTolerance: -20,
		MaxTempTolerance: 50,
	}
}

// Validate checks required fields.
func (w *Wildlife) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", w.ID, vb)
	errors.ValidateRequired("name", w.Name, vb)
	return vb.Build()
}

// Flora is a plant population template.
type Flora struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Toxic            bool           `json:"toxic,omitempty"`
	Farmable         bool           `json:"farmable"`
	GrowthRate       float64        `json:"growth_rate"`
	WaterRequirement float64        `json:"water_requirement"`
	MinTempTolerance float64        `json:"min_temp_tolerance"`
	MaxTempTolerance float64        `json:"max_temp_tolerance"`
	SpawnBiomes      []string       `json:"spawn_biomes,omitempty"`
	ResourceYields   map[string]int `json:"resource_yields,omitempty"`
}

func defaultFlora() Flora {
	return Flora{
		Farmable:         true,
		GrowthRate:       0.2,
		WaterRequirement: 0.8,
		MinTempTolerance: 0,
		MaxTempTolerance: 40,
	}
}

// Validate checks required fields.
func (f *Flora) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", f.ID, vb)
	errors.ValidateRequired("name", f.Name, vb)
	return vb.Build()
}
