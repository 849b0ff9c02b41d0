// Package creator serves the character creation wizard: the static
// datasets it renders and the save files it produces.
package creator

//go:generate mockgen -destination=mock/mock_service.go -package=mockcreator github.com/sagaforge/saga-api/internal/orchestrators/creator Service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/errors"
)

// Wizard data files under the data dir. Each is optional; a missing
// file yields an empty section, not an error.
const (
	schoolsFile     = "Schools_of_Power.json"
	triadsFile      = "Tactical_Triads.json"
	evolutionFile   = "Evolution_Matrix.json"
	kingdomsFile    = "Evolution_Kingdoms.json"
	backstoriesFile = "Backstory_Scenarios.json"
	itemsFile       = "Item_Builder.json"
)

// Service backs the character creation wizard.
type Service interface {
	// Data returns species templates, power schools, triads, evolution
	// slots, backstory scenarios, and item categories.
	Data(ctx context.Context, input *DataInput) (*DataOutput, error)

	// Save compiles a finished wizard state into a save file.
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Saves lists existing save files.
	Saves(ctx context.Context, input *SavesInput) (*SavesOutput, error)
}

// Config holds the creator dependencies.
type Config struct {
	Definitions *definitions.Registry
	Saves       *external.SaveStore
	DataDir     string
}

// Validate checks required fields.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Definitions == nil {
		vb.RequiredField("Definitions")
	}
	if cfg.Saves == nil {
		vb.RequiredField("Saves")
	}
	if cfg.DataDir == "" {
		vb.RequiredField("DataDir")
	}
	return vb.Build()
}

type orchestrator struct {
	definitions *definitions.Registry
	saves       *external.SaveStore
	dataDir     string
}

// NewOrchestrator creates a creator orchestrator.
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &orchestrator{
		definitions: cfg.Definitions,
		saves:       cfg.Saves,
		dataDir:     cfg.DataDir,
	}, nil
}

// Data implements Service.
func (o *orchestrator) Data(_ context.Context, _ *DataInput) (*DataOutput, error) {
	out := &DataOutput{Species: o.definitions.Species}

	var err error
	if out.Schools, err = o.section(schoolsFile, "schools"); err != nil {
		return nil, err
	}
	if out.Triads, err = o.section(triadsFile, "triads"); err != nil {
		return nil, err
	}
	if out.EvolutionSlots, err = o.section(evolutionFile, "slots"); err != nil {
		return nil, err
	}
	if out.EvolutionFlavor, err = o.section(kingdomsFile, ""); err != nil {
		return nil, err
	}
	if out.Backstories, err = o.section(backstoriesFile, ""); err != nil {
		return nil, err
	}
	if out.ItemCategories, err = o.itemCategories(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save implements Service.
func (o *orchestrator) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil || input.Record == nil {
		return nil, errors.InvalidArgument("character record is required")
	}
	if strings.TrimSpace(input.Record.Name) == "" {
		return nil, errors.InvalidArgument("character name is required")
	}
	if input.Record.Species == "" {
		return nil, errors.InvalidArgument("species is required")
	}

	name, err := o.saves.Write(input.Record)
	if err != nil {
		return nil, err
	}
	return &SaveOutput{
		Message:  fmt.Sprintf("%s generated successfully.", input.Record.Name),
		FileName: name,
	}, nil
}

// Saves implements Service.
func (o *orchestrator) Saves(_ context.Context, _ *SavesInput) (*SavesOutput, error) {
	names, err := o.saves.List()
	if err != nil {
		return nil, err
	}
	return &SavesOutput{Names: names}, nil
}

// section reads one wizard data file, optionally unwrapping a single
// top-level key. Missing files read as empty.
func (o *orchestrator) section(file, key string) (json.RawMessage, error) {
	raw, err := os.ReadFile(filepath.Join(o.dataDir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	if key == "" {
		return raw, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", file)
	}
	return doc[key], nil
}

// itemCategories digs item_system_v1.categories out of the item
// builder file.
func (o *orchestrator) itemCategories() (json.RawMessage, error) {
	system, err := o.section(itemsFile, "item_system_v1")
	if err != nil || system == nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(system, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", itemsFile)
	}
	return doc["categories"], nil
}
