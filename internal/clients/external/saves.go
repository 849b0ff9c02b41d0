package external

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
)

// Starting kit every freshly created character carries.
var starterInventory = []string{"Traveler's Cloak", "Waterskin", "Rations"}

const starterGold = 50

// SaveStore reads and writes character save files. One JSON file per
// character under the saves directory, named after the character with
// spaces underscored.
type SaveStore struct {
	dir string
}

// SaveStoreConfig holds the SaveStore settings.
type SaveStoreConfig struct {
	Dir string
}

// Validate checks required fields.
func (cfg *SaveStoreConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	if cfg.Dir == "" {
		return errors.InvalidArgument("saves directory is required")
	}
	return nil
}

// NewSaveStore creates a save store, creating the directory if needed.
func NewSaveStore(cfg *SaveStoreConfig) (*SaveStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create saves directory %s", cfg.Dir)
	}
	return &SaveStore{dir: cfg.Dir}, nil
}

// List returns the saved character names, sorted by the filesystem.
func (s *SaveStore) List() ([]string, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read saves directory %s", s.dir)
	}
	var names []string
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(d.Name(), ".json"))
	}
	return names, nil
}

// Load reads one character record by save name.
func (s *SaveStore) Load(name string) (*ecs.CharacterRecord, error) {
	if name == "" {
		return nil, errors.InvalidArgument("save name is required")
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("character save %s", name)
		}
		return nil, errors.Wrapf(err, "failed to read save %s", name)
	}
	var record ecs.CharacterRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "failed to decode save %s", name)
	}
	return &record, nil
}

// Write persists a character record. An empty inventory gets the
// starter kit.
func (s *SaveStore) Write(record *ecs.CharacterRecord) (string, error) {
	if record == nil {
		return "", errors.InvalidArgument("record is required")
	}
	if record.Name == "" {
		return "", errors.InvalidArgument("record name is required")
	}
	if len(record.Inventory) == 0 {
		record.Inventory = append([]string(nil), starterInventory...)
		record.Gold = starterGold
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode save %s", record.Name)
	}
	path := s.path(record.Name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write save %s", record.Name)
	}
	return filepath.Base(path), nil
}

// Restore loads a save, injects it into the registry at the given
// position, and tags it as the player.
func (s *SaveStore) Restore(ctx context.Context, registry *ecs.Registry, name string, x, y int) (*entities.Entity, error) {
	record, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	record.X, record.Y = x, y

	ent, err := registry.CreateCharacter(ctx, record)
	if err != nil {
		return nil, err
	}
	if ent.Tags == nil {
		ent.Tags = entities.NewTagSet()
	}
	ent.Tags.Add("player")
	return ent, nil
}

func (s *SaveStore) path(name string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(name, " ", "_")+".json")
}
