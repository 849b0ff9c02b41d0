package creator

import (
	"encoding/json"

	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
)

// DataInput requests the full character wizard dataset.
type DataInput struct{}

// DataOutput bundles everything the creation wizard renders. The raw
// sections pass through untouched; the client owns their shape.
type DataOutput struct {
	Species         map[string]*definitions.Species
	Schools         json.RawMessage
	Triads          json.RawMessage
	EvolutionSlots  json.RawMessage
	EvolutionFlavor json.RawMessage
	Backstories     json.RawMessage
	ItemCategories  json.RawMessage
}

// SaveInput is the finished wizard state.
type SaveInput struct {
	Record *ecs.CharacterRecord
}

// SaveOutput reports where the character landed.
type SaveOutput struct {
	Message  string
	FileName string
}

// SavesInput requests the roster of saved characters.
type SavesInput struct{}

// SavesOutput lists saved character names.
type SavesOutput struct {
	Names []string
}
