package tactical

import (
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/world"
)

// GenerateInput places the encounter in the world. Both coordinates
// zero means "wherever the campaign starts", falling back to the
// world center.
type GenerateInput struct {
	X int
	Y int
}

// EntityView is one marker on the generated map, shaped for the
// client renderer.
type EntityView struct {
	ID          string
	Name        string
	Type        string
	X           int
	Y           int
	HP          int
	MaxHP       int
	Icon        string
	Tags        []string
	Description string
	Inventory   []string
}

// GenerateOutput is a freshly generated encounter.
type GenerateOutput struct {
	Title       string
	Description string
	WorldX      int
	WorldY      int
	Biome       string
	Grid        *world.Grid
	Entities    []EntityView
	Log         []string
}

// StateInput requests the live session snapshot.
type StateInput struct{}

// Gauge is a current/max pair.
type Gauge struct {
	Current int
	Max     int
}

// PlayerView is the player block of the session snapshot.
type PlayerView struct {
	Name       string
	Health     Gauge
	Stamina    Gauge
	Focus      Gauge
	Composure  Gauge
	X          int
	Y          int
	Attributes map[string]int
}

// EnemyView is one hostile combatant in the session snapshot.
type EnemyView struct {
	ID     string
	Name   string
	Health Gauge
	X      int
	Y      int
}

// StateOutput is the live session snapshot.
type StateOutput struct {
	Round     int
	TurnOrder []string
	Player    PlayerView
	Enemies   []EnemyView
}

// CharInput names a character to look up.
type CharInput struct {
	Name string
}

// CharOutput carries either the live entity or, for characters not
// currently loaded, the raw save record.
type CharOutput struct {
	Entity *entities.Entity
	Record *ecs.CharacterRecord
}

// FeedbackInput reports how an encounter ended.
type FeedbackInput struct {
	Outcome       string
	EnemiesKilled []string
	LootTaken     []string
	X             int
	Y             int
}

// FeedbackOutput acknowledges the report.
type FeedbackOutput struct {
	Message string
}

// TravelInput requests a map transition toward the next objective.
type TravelInput struct{}

// ActionInput is a hard-coded system action that bypasses intent
// parsing: "skill", "item", or "camp".
type ActionInput struct {
	ActionType string
	TargetID   string
	ItemID     string
	SkillID    string
}

// ActionOutput is the system action result.
type ActionOutput struct {
	Narrative string
	Updates   []entities.VisualUpdate
}
