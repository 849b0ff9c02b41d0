// Package entities defines the core domain types: entities and their
// components, quests, campaigns, world nodes, hierarchy rows, intents,
// and client-bound visual updates.
package entities

import (
	"encoding/json"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// ComponentKind identifies a component slot on an entity. The set is
// closed; unknown kinds in persisted bundles are dropped on load.
type ComponentKind string

// Component kinds
const (
	KindPosition       ComponentKind = "position"
	KindRenderable     ComponentKind = "renderable"
	KindStats          ComponentKind = "stats"
	KindVitals         ComponentKind = "vitals"
	KindInventory      ComponentKind = "inventory"
	KindEquipment      ComponentKind = "equipment"
	KindStatusEffects  ComponentKind = "status_effects"
	KindFactionMember  ComponentKind = "faction_member"
	KindLogistics      ComponentKind = "logistics"
	KindDemographics   ComponentKind = "demographics"
	KindEconomy        ComponentKind = "economy"
	KindInfrastructure ComponentKind = "infrastructure"
)

// Entity is a world object: stable identity, typed components, tags,
// and free-form metadata. At most one component of each kind.
type Entity struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`

	Position       *Position       `json:"position,omitempty"`
	Renderable     *Renderable     `json:"renderable,omitempty"`
	Stats          Stats           `json:"stats,omitempty"`
	Vitals         *Vitals         `json:"vitals,omitempty"`
	Inventory      *Inventory      `json:"inventory,omitempty"`
	Equipment      *Equipment      `json:"equipment,omitempty"`
	Status         *StatusEffects  `json:"status_effects,omitempty"`
	Faction        *FactionMember  `json:"faction_member,omitempty"`
	Logistics      *Logistics      `json:"logistics,omitempty"`
	Demographics   *Demographics   `json:"demographics,omitempty"`
	Economy        *Economy        `json:"economy,omitempty"`
	Infrastructure *Infrastructure `json:"infrastructure,omitempty"`

	// Traits maps a body slot to a resolved evolution trait. Combat
	// reactions match on the trait's mechanic name.
	Traits map[string]Trait `json:"traits,omitempty"`

	Tags     TagSet                 `json:"tags,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// LayerID and LocationID place the entity in the four-tier
	// hierarchy; empty for entities outside any layer.
	LayerID    string `json:"layer_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`

	// UnknownKinds lists component kinds present in the persisted
	// bundle that this build does not recognize. They are dropped on
	// load; the registry logs them.
	UnknownKinds []string `json:"-"`
}

var knownEntityFields = map[string]struct{}{
	"id": {}, "type": {}, "name": {},
	"position": {}, "renderable": {}, "stats": {}, "vitals": {},
	"inventory": {}, "equipment": {}, "status_effects": {},
	"faction_member": {}, "logistics": {}, "demographics": {},
	"economy": {}, "infrastructure": {},
	"traits": {}, "tags": {}, "metadata": {},
	"layer_id": {}, "location_id": {},
}

// UnmarshalJSON decodes the entity and records any unrecognized
// top-level keys in UnknownKinds.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var unknown []string
	for key := range raw {
		if _, ok := knownEntityFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	*e = Entity(p)
	e.UnknownKinds = unknown
	return nil
}

var _ core.Entity = (*Entity)(nil)

// GetID implements core.Entity
func (e *Entity) GetID() string {
	return e.ID
}

// GetType implements core.Entity
func (e *Entity) GetType() string {
	if e.Type == "" {
		return "entity"
	}
	return e.Type
}

// Has reports whether the entity carries a component of the given kind.
func (e *Entity) Has(kind ComponentKind) bool {
	switch kind {
	case KindPosition:
		return e.Position != nil
	case KindRenderable:
		return e.Renderable != nil
	case KindStats:
		return e.Stats != nil
	case KindVitals:
		return e.Vitals != nil
	case KindInventory:
		return e.Inventory != nil
	case KindEquipment:
		return e.Equipment != nil
	case KindStatusEffects:
		return e.Status != nil
	case KindFactionMember:
		return e.Faction != nil
	case KindLogistics:
		return e.Logistics != nil
	case KindDemographics:
		return e.Demographics != nil
	case KindEconomy:
		return e.Economy != nil
	case KindInfrastructure:
		return e.Infrastructure != nil
	default:
		return false
	}
}

// HasAll reports whether the entity carries every listed kind.
func (e *Entity) HasAll(kinds ...ComponentKind) bool {
	for _, k := range kinds {
		if !e.Has(k) {
			return false
		}
	}
	return true
}

// Alive reports whether the entity has vitals with HP above zero.
// Entities without vitals are considered inert, not dead.
func (e *Entity) Alive() bool {
	return e.Vitals != nil && e.Vitals.HP > 0
}

// Trait is a resolved evolution trait: a body slot plus the attribute
// pair that selected it and the mechanic it grants.
type Trait struct {
	Slot     string `json:"slot"`
	Mental   string `json:"mental"`
	Physical string `json:"physical"`
	Mechanic string `json:"mechanic"`
}

// TagSet is an unordered set of string tags serialized as a sorted list.
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags.
func NewTagSet(tags ...string) TagSet {
	ts := make(TagSet, len(tags))
	for _, t := range tags {
		ts[t] = struct{}{}
	}
	return ts
}

// Has reports membership.
func (ts TagSet) Has(tag string) bool {
	_, ok := ts[tag]
	return ok
}

// Add inserts a tag.
func (ts TagSet) Add(tag string) {
	ts[tag] = struct{}{}
}

// Remove deletes a tag.
func (ts TagSet) Remove(tag string) {
	delete(ts, tag)
}

// List returns the tags in sorted order.
func (ts TagSet) List() []string {
	out := make([]string, 0, len(ts))
	for t := range ts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON serializes the set as a sorted array.
func (ts TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.List())
}

// UnmarshalJSON accepts an array of tags.
func (ts *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*ts = NewTagSet(tags...)
	return nil
}
