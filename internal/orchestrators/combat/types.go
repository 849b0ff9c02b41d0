package combat

import (
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/world"
)

// LoadInput defines the request for loading a character into combat.
type LoadInput struct {
	CharacterName string
}

// LoadOutput defines the response for loading a character into combat.
type LoadOutput struct {
	Character *entities.Entity
	Grid      *world.Grid
}

// StateInput defines the request for the combat snapshot.
type StateInput struct{}

// CombatantView is one combatant row in the snapshot.
type CombatantView struct {
	ID     string
	Name   string
	X      int
	Y      int
	Vitals *entities.Vitals
	Sprite string
	Tags   []string
}

// StateOutput defines the full combat snapshot.
type StateOutput struct {
	Active     bool
	Combatants []CombatantView
	Grid       *world.Grid
	Round      int
	Log        []string
}

// ActionInput defines the request for one player combat action.
type ActionInput struct {
	Action    string
	TargetID  string
	DX, DY    int
	X, Y      int
	SkillName string
}

// ActionOutput defines the response for one player combat action.
type ActionOutput struct {
	Narrative string
	Updates   []entities.VisualUpdate
}

// EndTurnInput defines the request for ending the player turn.
type EndTurnInput struct{}

// EndTurnOutput defines the response after the AI acts and the round
// rolls over.
type EndTurnOutput struct {
	Round   int
	Updates []entities.VisualUpdate
}

// ExportInput defines the request for exporting the battle replay.
type ExportInput struct{}

// ExportOutput defines the response for exporting the battle replay.
type ExportOutput struct {
	ReplayID string
	Rounds   int
	LogLines int
}

// SavesInput defines the request for listing savable characters.
type SavesInput struct{}

// SavesOutput defines the response for listing savable characters.
type SavesOutput struct {
	Names []string
}
