// Package ecs maintains the process-wide entity index: factories that
// produce correctly shaped entities, component queries, and a
// synchronous mirror to the entity repository.
package ecs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	entityrepo "github.com/sagaforge/saga-api/internal/repositories/entity"
)

const defaultSprite = "sheet:5074"

// Config holds the dependencies for the Registry.
type Config struct {
	Repository  entityrepo.Repository
	IDGenerator idgen.Generator
	Matrix      EvolutionMatrix
}

// Validate validates the Config. The matrix is optional; a registry
// without one creates characters with no evolution traits.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Repository == nil {
		return errors.InvalidArgument("repository cannot be nil")
	}
	if cfg.IDGenerator == nil {
		return errors.InvalidArgument("idGenerator cannot be nil")
	}
	return nil
}

// Registry is the in-memory index of live entities. All mutation flows
// through one logical actor at a time; the registry itself takes no
// locks.
type Registry struct {
	entities map[string]*entities.Entity
	repo     entityrepo.Repository
	idGen    idgen.Generator
	matrix   EvolutionMatrix
}

// New creates a Registry from the config
func New(cfg *Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		entities: make(map[string]*entities.Entity),
		repo:     cfg.Repository,
		idGen:    cfg.IDGenerator,
		matrix:   cfg.Matrix,
	}, nil
}

// AddEntity inserts the entity and mirrors it to storage. Adding the
// same id twice replaces the in-memory row and rewrites the stored one.
func (r *Registry) AddEntity(ctx context.Context, e *entities.Entity) (*entities.Entity, error) {
	if e == nil {
		return nil, errors.InvalidArgument("entity cannot be nil")
	}
	if e.ID == "" {
		e.ID = r.idGen.Generate()
	}

	r.entities[e.ID] = e
	if _, err := r.repo.Save(ctx, entityrepo.SaveInput{Entity: e}); err != nil {
		return nil, errors.Wrapf(err, "failed to mirror entity %s", e.ID)
	}
	return e, nil
}

// GetEntity returns the entity with the given id, if present.
func (r *Registry) GetEntity(id string) (*entities.Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// DestroyEntity removes the entity from the index and from storage.
// Destroying an unknown id is a no-op.
func (r *Registry) DestroyEntity(ctx context.Context, id string) error {
	if _, ok := r.entities[id]; !ok {
		return nil
	}
	delete(r.entities, id)

	if _, err := r.repo.Delete(ctx, entityrepo.DeleteInput{ID: id}); err != nil && !errors.IsNotFound(err) {
		return errors.Wrapf(err, "failed to delete entity %s", id)
	}
	return nil
}

// SaveEntity mirrors the current in-memory state of one entity to
// storage. Systems that mutate components directly call this when they
// want durability.
func (r *Registry) SaveEntity(ctx context.Context, id string) error {
	e, ok := r.entities[id]
	if !ok {
		return errors.NotFoundf("entity %s is not registered", id)
	}
	if _, err := r.repo.Save(ctx, entityrepo.SaveInput{Entity: e}); err != nil {
		return errors.Wrapf(err, "failed to mirror entity %s", id)
	}
	return nil
}

// EntitiesWith returns every entity carrying all of the listed
// component kinds, in unspecified order.
func (r *Registry) EntitiesWith(kinds ...entities.ComponentKind) []*entities.Entity {
	var out []*entities.Entity
	for _, e := range r.entities {
		if e.HasAll(kinds...) {
			out = append(out, e)
		}
	}
	return out
}

// All returns every registered entity in unspecified order.
func (r *Registry) All() []*entities.Entity {
	out := make([]*entities.Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	return out
}

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	return len(r.entities)
}

// EvolutionChoice is one selected attribute pair on a body slot.
type EvolutionChoice struct {
	Mental   string `json:"Mental"`
	Physical string `json:"Physical"`
}

// CharacterRecord is the on-disk character save shape the factory
// consumes. Current pool values are optional; absent pools start at
// their derived maxima.
type CharacterRecord struct {
	Name       string                     `json:"Name"`
	Species    string                     `json:"Species"`
	Level      int                        `json:"Level,omitempty"`
	Sprite     string                     `json:"Sprite,omitempty"`
	Portrait   string                     `json:"Portrait,omitempty"`
	Team       string                     `json:"Team,omitempty"`
	Stats      map[string]int             `json:"Stats"`
	Loadout    map[string]string          `json:"Loadout,omitempty"`
	Inventory  []string                   `json:"Inventory,omitempty"`
	Gold       int                        `json:"Gold,omitempty"`
	HP         *int                       `json:"HP,omitempty"`
	CMP        *int                       `json:"CMP,omitempty"`
	Stamina    *int                       `json:"Stamina,omitempty"`
	Focus      *int                       `json:"Focus,omitempty"`
	Evolutions map[string]EvolutionChoice `json:"Evolutions,omitempty"`
	Triads     []string                   `json:"Triads,omitempty"`
	Skills     []string                   `json:"Skills,omitempty"`
	Backstory  string                     `json:"Backstory,omitempty"`
	School     string                     `json:"School,omitempty"`
	X          int                        `json:"x,omitempty"`
	Y          int                        `json:"y,omitempty"`
}

func (rec *CharacterRecord) sprite() string {
	if rec.Sprite != "" {
		return rec.Sprite
	}
	if rec.Portrait != "" {
		return rec.Portrait
	}
	return defaultSprite
}

// CreateCharacter builds a fully shaped character entity from a save
// record, resolves its evolution traits, and registers it. The raw
// record is kept in metadata for downstream trait-name lookup.
func (r *Registry) CreateCharacter(ctx context.Context, record *CharacterRecord) (*entities.Entity, error) {
	if record == nil {
		return nil, errors.InvalidArgument("record cannot be nil")
	}
	if record.Name == "" {
		return nil, errors.InvalidArgument("record name cannot be empty")
	}

	stats := entities.Stats(record.Stats)
	if stats == nil {
		stats = entities.Stats{}
	}

	vitals := entities.DeriveVitals(stats)
	if record.HP != nil {
		vitals.HP = *record.HP
	}
	if record.Stamina != nil {
		vitals.SP = *record.Stamina
	}
	if record.Focus != nil {
		vitals.FP = *record.Focus
	}
	if record.CMP != nil {
		vitals.CMP = *record.CMP
	}
	vitals.Clamp()

	team := record.Team
	if team == "" {
		team = "Neutral"
	}

	e := &entities.Entity{
		ID:         r.idGen.Generate(),
		Type:       "character",
		Name:       record.Name,
		Position:   &entities.Position{X: record.X, Y: record.Y},
		Renderable: &entities.Renderable{Sprite: record.sprite()},
		Stats:      stats,
		Vitals:     vitals,
		Inventory:  &entities.Inventory{Items: append([]string(nil), record.Inventory...), Gold: record.Gold},
		Status:     &entities.StatusEffects{},
		Faction:    &entities.FactionMember{Faction: team},
		Tags:       entities.NewTagSet(),
	}

	if len(record.Loadout) > 0 {
		slots := make(map[string]string, len(record.Loadout))
		for slot, item := range record.Loadout {
			if item == "" {
				continue
			}
			slots[normalizeSlot(slot)] = item
		}
		if len(slots) > 0 {
			e.Equipment = &entities.Equipment{Slots: slots}
		}
	}

	if len(record.Evolutions) > 0 {
		e.Traits = make(map[string]entities.Trait, len(record.Evolutions))
		for slot, choice := range record.Evolutions {
			mechanic, ok := r.matrix.Resolve(slot, choice.Mental, choice.Physical)
			if !ok {
				slog.WarnContext(ctx, "evolution pick has no mechanic",
					"slot", slot,
					"mental", choice.Mental,
					"physical", choice.Physical)
				continue
			}
			e.Traits[slot] = entities.Trait{
				Slot:     slot,
				Mental:   choice.Mental,
				Physical: choice.Physical,
				Mechanic: mechanic,
			}
		}
	}

	raw, err := recordAsMetadata(record)
	if err != nil {
		return nil, err
	}
	e.Metadata = map[string]interface{}{"record": raw}

	return r.AddEntity(ctx, e)
}

// normalizeSlot maps save-record slot labels ("Main Hand") onto the
// component slot names ("main_hand").
func normalizeSlot(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func recordAsMetadata(record *CharacterRecord) (map[string]interface{}, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize character record")
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to reshape character record")
	}
	return out, nil
}

// LoadAll rebuilds the in-memory index from storage in a single pass.
// Component kinds the build does not recognize are dropped with a
// warning. Returns the number of entities loaded.
func (r *Registry) LoadAll(ctx context.Context) (int, error) {
	out, err := r.repo.ListAll(ctx, entityrepo.ListAllInput{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to load entities")
	}

	r.entities = make(map[string]*entities.Entity, len(out.Entities))
	for _, e := range out.Entities {
		if len(e.UnknownKinds) > 0 {
			slog.WarnContext(ctx, "dropping unknown component kinds",
				"entity_id", e.ID,
				"kinds", e.UnknownKinds)
			e.UnknownKinds = nil
		}
		r.entities[e.ID] = e
	}

	slog.InfoContext(ctx, "entity index rebuilt", "count", len(r.entities))
	return len(r.entities), nil
}
