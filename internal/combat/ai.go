package combat

import (
	"context"
	"strings"

	"github.com/sagaforge/saga-api/internal/entities"
)

// AI behavior templates.
const (
	BehaviorAggressive  = "Aggressive"
	BehaviorOpportunist = "Opportunist"
	BehaviorSniper      = "Sniper"
	BehaviorHealer      = "Healer"
)

// TurnState is the per-combatant AI state within a round.
type TurnState string

// AI turn states; transitions are linear.
const (
	StateIdle      TurnState = "IDLE"
	StateSelecting TurnState = "SELECTING"
	StateActing    TurnState = "ACTING"
	StateDone      TurnState = "DONE"
)

// Cluster groups enemies standing within two tiles of one anchor.
type Cluster struct {
	Anchor  *entities.Entity
	Members []*entities.Entity
}

// BattlefieldContext is the tactical picture one combatant acts on.
type BattlefieldContext struct {
	// Enemies sorted by Chebyshev distance, nearest first.
	Enemies []*entities.Entity
	// Allies sorted by HP fraction, most wounded first.
	Allies   []*entities.Entity
	Clusters []Cluster
}

// ContextFor computes the battlefield picture for one combatant.
func (e *Engine) ContextFor(ent *entities.Entity) BattlefieldContext {
	bc := BattlefieldContext{
		Enemies: e.enemiesOf(ent),
		Allies:  e.alliesOf(ent),
	}

	claimed := make(map[string]struct{})
	for _, anchor := range bc.Enemies {
		if _, taken := claimed[anchor.ID]; taken {
			continue
		}
		cluster := Cluster{Anchor: anchor, Members: []*entities.Entity{anchor}}
		claimed[anchor.ID] = struct{}{}
		for _, other := range bc.Enemies {
			if _, taken := claimed[other.ID]; taken {
				continue
			}
			if chebyshev(anchor.Position.X, anchor.Position.Y, other.Position.X, other.Position.Y) <= 2 {
				cluster.Members = append(cluster.Members, other)
				claimed[other.ID] = struct{}{}
			}
		}
		bc.Clusters = append(bc.Clusters, cluster)
	}
	return bc
}

// WeaponProfile describes the equipped main hand's reach.
type WeaponProfile struct {
	IsRanged       bool
	MaxRange       int
	HasMeleeBackup bool
}

// rangedWeapons maps known main-hand weapons to their short range.
var rangedWeapons = map[string]int{
	"Shortbow":     6,
	"Longbow":      8,
	"Crossbow":     6,
	"Sling":        4,
	"Throwing Axe": 3,
}

func weaponProfileOf(ent *entities.Entity) WeaponProfile {
	profile := WeaponProfile{MaxRange: 1}
	if ent.Equipment == nil {
		return profile
	}
	main := ent.Equipment.MainHand()
	for name, rangeShort := range rangedWeapons {
		if strings.EqualFold(main, name) {
			profile.IsRanged = true
			profile.MaxRange = rangeShort
			break
		}
	}
	if profile.IsRanged && ent.Equipment.Slots[entities.SlotOffHand] != "" {
		profile.HasMeleeBackup = true
	}
	return profile
}

func behaviorOf(ent *entities.Entity) string {
	if record, ok := ent.Metadata["record"].(map[string]interface{}); ok {
		if b, isStr := record["Behavior"].(string); isStr {
			return b
		}
	}
	return BehaviorAggressive
}

func powersOf(ent *entities.Entity) []string {
	record, ok := ent.Metadata["record"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := record["Powers"].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, p := range raw {
		if s, isStr := p.(string); isStr {
			out = append(out, s)
		}
	}
	return out
}

func pickTarget(behavior string, bc BattlefieldContext) *entities.Entity {
	if len(bc.Enemies) == 0 {
		return nil
	}
	switch behavior {
	case BehaviorOpportunist:
		weakest := bc.Enemies[0]
		for _, enemy := range bc.Enemies[1:] {
			if hpFraction(enemy) < hpFraction(weakest) {
				weakest = enemy
			}
		}
		return weakest

	case BehaviorSniper:
		// Prefer the anchor of the biggest cluster.
		var best *Cluster
		for i := range bc.Clusters {
			if best == nil || len(bc.Clusters[i].Members) > len(best.Members) {
				best = &bc.Clusters[i]
			}
		}
		if best != nil {
			return best.Anchor
		}
		return bc.Enemies[0]

	default:
		// Aggressive, Healer fallback, and everything else: nearest.
		return bc.Enemies[0]
	}
}

// RunAITurn processes every living non-player combatant in stable
// list order and returns the log lines produced.
func (e *Engine) RunAITurn(ctx context.Context) []string {
	var logs []string
	for _, ent := range e.combatants {
		if !ent.Alive() || ent.Tags.Has("player") {
			continue
		}
		logs = append(logs, e.runOneAI(ctx, ent)...)
	}
	return logs
}

func (e *Engine) runOneAI(ctx context.Context, ent *entities.Entity) []string {
	var logs []string
	e.setTurnState(ent, StateIdle)

	logs = append(logs, e.ApplyTileEffects(ent)...)
	if !ent.Alive() {
		e.setTurnState(ent, StateDone)
		return logs
	}
	if ent.Vitals.SP < 1 {
		e.setTurnState(ent, StateDone)
		return logs
	}

	e.setTurnState(ent, StateSelecting)
	bc := e.ContextFor(ent)
	behavior := behaviorOf(ent)

	// A healer tends the most wounded ally before anything else.
	if behavior == BehaviorHealer && len(bc.Allies) > 0 && hpFraction(bc.Allies[0]) < 1 {
		if r := e.healAlly(ctx, ent, bc.Allies[0]); r.Success {
			e.setTurnState(ent, StateDone)
			return append(logs, r.Logs...)
		}
	}

	target := pickTarget(behavior, bc)
	if target == nil {
		e.setTurnState(ent, StateDone)
		return logs
	}

	e.setTurnState(ent, StateActing)
	if result := e.tryOffensiveAbility(ctx, ent, target); result != nil {
		logs = append(logs, result.Logs...)
	}
	logs = append(logs, e.basicAttackRoutine(ctx, ent, target)...)

	e.setTurnState(ent, StateDone)
	return logs
}

func (e *Engine) setTurnState(ent *entities.Entity, state TurnState) {
	if e.turnStates == nil {
		e.turnStates = make(map[string]TurnState)
	}
	e.turnStates[ent.ID] = state
}

// TurnStateOf reports where a combatant ended in the AI state machine
// this round.
func (e *Engine) TurnStateOf(id string) TurnState {
	if state, ok := e.turnStates[id]; ok {
		return state
	}
	return StateIdle
}

func (e *Engine) healAlly(ctx context.Context, healer, ally *entities.Entity) ActionResult {
	catalog := DefaultCatalog()
	for _, name := range powersOf(healer) {
		ab, known := catalog[name]
		if !known || ab.Type != AbilitySupport {
			continue
		}
		if r := e.CastAbility(ctx, healer, ally, ab); r.Success {
			return r
		}
	}
	return ActionResult{Success: false}
}

// tryOffensiveAbility attempts the first Offense-typed power that
// resolves to a real effect. Returns nil when nothing fired.
func (e *Engine) tryOffensiveAbility(ctx context.Context, ent, target *entities.Entity) *ActionResult {
	catalog := DefaultCatalog()
	for _, name := range powersOf(ent) {
		ab, known := catalog[name]
		if !known || ab.Type != AbilityOffense {
			continue
		}
		if r := e.CastAbility(ctx, ent, target, ab); r.Success {
			return &r
		}
	}
	return nil
}

func (e *Engine) basicAttackRoutine(ctx context.Context, ent, target *entities.Entity) []string {
	var logs []string
	profile := weaponProfileOf(ent)
	dist := chebyshev(ent.Position.X, ent.Position.Y, target.Position.X, target.Position.Y)

	if profile.IsRanged {
		if dist <= 1 && !profile.HasMeleeBackup {
			if r := e.stepAway(ent, target); r.Success {
				logs = append(logs, r.Logs...)
				dist = chebyshev(ent.Position.X, ent.Position.Y, target.Position.X, target.Position.Y)
			}
		}
		if dist <= profile.MaxRange &&
			e.HasLOS(ent.Position.X, ent.Position.Y, target.Position.X, target.Position.Y) {
			return append(logs, e.AttackTarget(ctx, ent, target, "").Logs...)
		}
		if r := e.stepToward(ent, target); r.Success {
			logs = append(logs, r.Logs...)
		}
		return logs
	}

	// Melee: close in while stamina allows, then strike.
	for dist > 1 {
		r := e.stepToward(ent, target)
		if !r.Success {
			return append(logs, r.Logs...)
		}
		logs = append(logs, r.Logs...)
		dist = chebyshev(ent.Position.X, ent.Position.Y, target.Position.X, target.Position.Y)
	}
	return append(logs, e.AttackTarget(ctx, ent, target, "").Logs...)
}

func (e *Engine) stepToward(ent, target *entities.Entity) ActionResult {
	path := e.FindPath(ent.Position.X, ent.Position.Y, target.Position.X, target.Position.Y)
	if len(path) == 0 {
		return failure("no path to target")
	}
	return e.MoveChar(ent, path[0].X, path[0].Y)
}

func (e *Engine) stepAway(ent, target *entities.Entity) ActionResult {
	dx := sign(ent.Position.X - target.Position.X)
	dy := sign(ent.Position.Y - target.Position.Y)
	nx, ny := ent.Position.X+dx, ent.Position.Y+dy
	if !e.grid.InBounds(nx, ny) || e.grid.IsWall(nx, ny) {
		return failure("nowhere to retreat")
	}
	if _, occupied := e.OccupantAt(nx, ny); occupied {
		return failure("nowhere to retreat")
	}
	return e.MoveChar(ent, nx, ny)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
