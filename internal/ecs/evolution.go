package ecs

import (
	"encoding/json"
	"os"

	"github.com/sagaforge/saga-api/internal/errors"
)

// EvolutionMatrix maps body slot → mental attribute → physical
// attribute → mechanic name. It is global data shared by every
// character factory call.
type EvolutionMatrix map[string]map[string]map[string]string

// Resolve returns the mechanic granted by picking the attribute pair
// for the slot, and whether the matrix defines one.
func (m EvolutionMatrix) Resolve(slot, mental, physical string) (string, bool) {
	bySlot, ok := m[slot]
	if !ok {
		return "", false
	}
	byMental, ok := bySlot[mental]
	if !ok {
		return "", false
	}
	mechanic, ok := byMental[physical]
	return mechanic, ok && mechanic != ""
}

// LoadEvolutionMatrix reads the matrix from a JSON file shaped as
// {"slots": {SLOT: {MENTAL: {PHYSICAL: mechanic}}}}.
func LoadEvolutionMatrix(path string) (EvolutionMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read evolution matrix %s", path)
	}

	var file struct {
		Slots EvolutionMatrix `json:"slots"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse evolution matrix %s", path)
	}
	if file.Slots == nil {
		return nil, errors.InvalidArgumentf("evolution matrix %s has no slots", path)
	}
	return file.Slots, nil
}
