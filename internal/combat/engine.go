// Package combat implements the authoritative grid combat engine:
// action economy, margin-based attack resolution, line of sight,
// pathing, reactive traits, environmental hazards, and the AI turn.
package combat

import (
	"fmt"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/world"
)

// Stamina economy constants.
const (
	CostBasicAttack = 2
	CostSkillAttack = 4
	CostSmash       = 3
	RoundSPRegen    = 5
	SmashDC         = 15
)

// Roller is the deterministic random stream the engine draws from.
// Seeded per engine instance so runs replay exactly.
type Roller interface {
	dice.Roller
	Chance(p float64) bool
	Intn(n int) int
}

// Engine owns one battle: the map, the combatant list, the round
// counter, reaction bookkeeping, the replay log, and the pending
// visual-update queue.
type Engine struct {
	grid   *world.Grid
	roller Roller
	bus    events.EventBus

	combatants []*entities.Entity
	round      int

	usedReactions map[string]struct{}
	turnStates    map[string]TurnState
	replayLog     []string
	pending       []entities.VisualUpdate

	subscriptions []string
}

// Config holds the dependencies for the Engine.
type Config struct {
	Grid   *world.Grid
	Roller Roller
	// EventBus carries reaction triggers; nil gets a private bus.
	EventBus events.EventBus
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Grid == nil {
		return errors.InvalidArgument("grid cannot be nil")
	}
	if cfg.Roller == nil {
		return errors.InvalidArgument("roller cannot be nil")
	}
	return nil
}

// NewEngine creates an Engine and wires the reaction handlers.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bus := cfg.EventBus
	if bus == nil {
		bus = events.NewBus()
	}

	e := &Engine{
		grid:          cfg.Grid,
		roller:        cfg.Roller,
		bus:           bus,
		round:         1,
		usedReactions: make(map[string]struct{}),
	}
	e.subscribeReactions()
	return e, nil
}

// Close drops the engine's event subscriptions.
func (e *Engine) Close() {
	for _, id := range e.subscriptions {
		_ = e.bus.Unsubscribe(id)
	}
	e.subscriptions = nil
}

// AddCombatant registers an entity in the battle. It must carry
// Position and Vitals.
func (e *Engine) AddCombatant(ent *entities.Entity) error {
	if ent == nil {
		return errors.InvalidArgument("combatant cannot be nil")
	}
	if !ent.HasAll(entities.KindPosition, entities.KindVitals) {
		return errors.InvalidArgumentf("combatant %s needs position and vitals", ent.ID)
	}
	for _, c := range e.combatants {
		if c.ID == ent.ID {
			return nil
		}
	}
	e.combatants = append(e.combatants, ent)
	return nil
}

// Combatants returns the full list, casualties included, in stable
// order.
func (e *Engine) Combatants() []*entities.Entity {
	return e.combatants
}

// Casualties returns combatants at 0 HP.
func (e *Engine) Casualties() []*entities.Entity {
	var out []*entities.Entity
	for _, c := range e.combatants {
		if !c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// RemoveCombatant drops an entity from the battle entirely.
func (e *Engine) RemoveCombatant(id string) {
	for i, c := range e.combatants {
		if c.ID == id {
			e.combatants = append(e.combatants[:i], e.combatants[i+1:]...)
			return
		}
	}
}

// Combatant returns the listed entity with the given id.
func (e *Engine) Combatant(id string) (*entities.Entity, bool) {
	for _, c := range e.combatants {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// CombatantByName returns the first living combatant whose name
// matches.
func (e *Engine) CombatantByName(name string) (*entities.Entity, bool) {
	for _, c := range e.combatants {
		if c.Name == name && c.Alive() {
			return c, true
		}
	}
	return nil, false
}

// OccupantAt returns the living combatant on (x, y), if any.
func (e *Engine) OccupantAt(x, y int) (*entities.Entity, bool) {
	for _, c := range e.combatants {
		if !c.Alive() || c.Position == nil {
			continue
		}
		if c.Position.X == x && c.Position.Y == y {
			return c, true
		}
	}
	return nil, false
}

// Round returns the current round number.
func (e *Engine) Round() int {
	return e.round
}

// Grid returns the battle map.
func (e *Engine) Grid() *world.Grid {
	return e.grid
}

// NextRound advances the round counter, regains stamina for living
// combatants, ticks conditions, and resets reaction markers.
func (e *Engine) NextRound() {
	e.round++
	e.usedReactions = make(map[string]struct{})
	e.turnStates = make(map[string]TurnState)
	for _, c := range e.combatants {
		if !c.Alive() {
			continue
		}
		c.Vitals.RegainSP(RoundSPRegen)
		if c.Status != nil {
			c.Status.TickRound()
		}
	}
	e.log("--- Round %d ---", e.round)
}

// TurnOrder returns living combatants in stable list order. Casualties
// are skipped.
func (e *Engine) TurnOrder() []*entities.Entity {
	var order []*entities.Entity
	for _, c := range e.combatants {
		if c.Alive() {
			order = append(order, c)
		}
	}
	return order
}

// PendingUpdates drains the queued visual updates.
func (e *Engine) PendingUpdates() []entities.VisualUpdate {
	out := e.pending
	e.pending = nil
	return out
}

// ReplayLog returns a copy of the accumulated action log.
func (e *Engine) ReplayLog() []string {
	out := make([]string, len(e.replayLog))
	copy(out, e.replayLog)
	return out
}

func (e *Engine) pushUpdate(u entities.VisualUpdate) {
	e.pending = append(e.pending, u)
}

func (e *Engine) log(format string, args ...interface{}) string {
	line := fmt.Sprintf(format, args...)
	e.replayLog = append(e.replayLog, line)
	return line
}

// enemiesOf returns living combatants on a different faction, sorted
// by Chebyshev distance from ent.
func (e *Engine) enemiesOf(ent *entities.Entity) []*entities.Entity {
	var out []*entities.Entity
	for _, c := range e.combatants {
		if c.ID == ent.ID || !c.Alive() {
			continue
		}
		if sameSide(ent, c) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := chebyshev(ent.Position.X, ent.Position.Y, out[i].Position.X, out[i].Position.Y)
		dj := chebyshev(ent.Position.X, ent.Position.Y, out[j].Position.X, out[j].Position.Y)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// alliesOf returns living same-side combatants sorted by HP fraction,
// most wounded first.
func (e *Engine) alliesOf(ent *entities.Entity) []*entities.Entity {
	var out []*entities.Entity
	for _, c := range e.combatants {
		if c.ID == ent.ID || !c.Alive() {
			continue
		}
		if sameSide(ent, c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		fi := hpFraction(out[i])
		fj := hpFraction(out[j])
		if fi != fj {
			return fi < fj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sameSide(a, b *entities.Entity) bool {
	af, bf := factionOf(a), factionOf(b)
	return af == bf
}

func factionOf(ent *entities.Entity) string {
	if ent.Faction != nil && ent.Faction.Faction != "" {
		return ent.Faction.Faction
	}
	if ent.Tags.Has("player") {
		return "player"
	}
	return "Neutral"
}

func hpFraction(ent *entities.Entity) float64 {
	if ent.Vitals == nil || ent.Vitals.MaxHP == 0 {
		return 1
	}
	return float64(ent.Vitals.HP) / float64(ent.Vitals.MaxHP)
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx := abs(x1 - x2)
	dy := abs(y1 - y2)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
