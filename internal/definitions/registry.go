// Package definitions loads and caches the typed simulation asset
// tree: resources, species, factions, wildlife, and flora read from
// definitions/<category>/*.json under the data directory.
package definitions

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagaforge/saga-api/internal/errors"
)

// Category folder names under definitions/.
const (
	CategoryResources = "resources"
	CategorySpecies   = "species"
	CategoryFactions  = "factions"
	CategoryWildlife  = "wildlife"
	CategoryFlora     = "flora"
)

// Registry caches immutable definition records keyed by id. Load it
// once on boot; reads after that are plain map lookups.
type Registry struct {
	dataDir string

	Resources map[string]*Resource
	Species   map[string]*Species
	Factions  map[string]*Faction
	Wildlife  map[string]*Wildlife
	Flora     map[string]*Flora
}

// Config holds the configuration for the Registry.
type Config struct {
	DataDir string
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DataDir == "" {
		return errors.InvalidArgument("dataDir cannot be empty")
	}
	return nil
}

// New creates an empty Registry rooted at the data directory
func New(cfg *Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		dataDir:   cfg.DataDir,
		Resources: make(map[string]*Resource),
		Species:   make(map[string]*Species),
		Factions:  make(map[string]*Faction),
		Wildlife:  make(map[string]*Wildlife),
		Flora:     make(map[string]*Flora),
	}, nil
}

// LoadAll populates every category cache. A file that fails to decode
// or validate is skipped with a warning; a missing category directory
// is treated as empty. Duplicate ids replace earlier records.
func (r *Registry) LoadAll(ctx context.Context) error {
	r.Resources = make(map[string]*Resource)
	loadCategory(ctx, r.categoryDir(CategoryResources), defaultResource, (*Resource).Validate,
		func(d *Resource) { r.Resources[d.ID] = d })

	r.Species = make(map[string]*Species)
	loadCategory(ctx, r.categoryDir(CategorySpecies), defaultSpecies, (*Species).Validate,
		func(d *Species) { r.Species[d.ID] = d })

	r.Factions = make(map[string]*Faction)
	loadCategory(ctx, r.categoryDir(CategoryFactions), defaultFaction, (*Faction).Validate,
		func(d *Faction) { r.Factions[d.ID] = d })

	r.Wildlife = make(map[string]*Wildlife)
	loadCategory(ctx, r.categoryDir(CategoryWildlife), defaultWildlife, (*Wildlife).Validate,
		func(d *Wildlife) { r.Wildlife[d.ID] = d })

	r.Flora = make(map[string]*Flora)
	loadCategory(ctx, r.categoryDir(CategoryFlora), defaultFlora, (*Flora).Validate,
		func(d *Flora) { r.Flora[d.ID] = d })

	slog.InfoContext(ctx, "definition caches loaded",
		"resources", len(r.Resources),
		"species", len(r.Species),
		"factions", len(r.Factions),
		"wildlife", len(r.Wildlife),
		"flora", len(r.Flora))
	return nil
}

func (r *Registry) categoryDir(category string) string {
	return filepath.Join(r.dataDir, "definitions", category)
}

func loadCategory[T any](ctx context.Context, dir string, defaults func() T, validate func(*T) error, store func(*T)) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "cannot read definition directory", "dir", dir, "error", err)
		}
		return
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, f.Name())
		def, err := decodeDefinition(path, defaults)
		if err != nil {
			slog.WarnContext(ctx, "skipping definition file", "file", path, "error", err)
			continue
		}
		if err := validate(def); err != nil {
			slog.WarnContext(ctx, "skipping invalid definition", "file", path, "error", err)
			continue
		}
		store(def)
	}
}

func decodeDefinition[T any](path string, defaults func() T) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	def := defaults()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// SaveDefinition serializes one record back to its category directory
// as <id>.json, creating the directory when needed.
func (r *Registry) SaveDefinition(category string, id string, def interface{}) error {
	if id == "" {
		return errors.InvalidArgument("definition id cannot be empty")
	}
	switch category {
	case CategoryResources, CategorySpecies, CategoryFactions, CategoryWildlife, CategoryFlora:
	default:
		return errors.InvalidArgumentf("unknown definition category %q", category)
	}

	dir := r.categoryDir(category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	data, err := json.MarshalIndent(def, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "failed to serialize definition %s", id)
	}

	path := filepath.Join(dir, id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
