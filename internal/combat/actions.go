package combat

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/world"
)

// ActionResult reports the outcome of one combat action. Failed
// actions mutate nothing beyond reaction bookkeeping.
type ActionResult struct {
	Success bool
	Reason  string
	Logs    []string
}

func failure(reason string) ActionResult {
	return ActionResult{Success: false, Reason: reason, Logs: []string{reason}}
}

// AttackTarget resolves one attack with margin-based resolution.
// A non-empty skill name raises the cost and the payoff.
func (e *Engine) AttackTarget(ctx context.Context, attacker, target *entities.Entity, skill string) ActionResult {
	if attacker == nil || target == nil {
		return failure("attack needs an attacker and a target")
	}
	if !target.Alive() {
		return failure(fmt.Sprintf("%s is already down", target.Name))
	}

	// Defender reactions fire before the cost check.
	event := events.NewGameEvent(EventBeforeAttack, attacker, target)
	_ = e.bus.Publish(ctx, event)

	defenseBonus := 0
	if v, ok := event.Context().Get(ctxKeyDefenseBonus); ok {
		if b, isInt := v.(int); isInt {
			defenseBonus = b
		}
	}
	forceMiss := false
	if v, ok := event.Context().Get(ctxKeyForceMiss); ok {
		if f, isBool := v.(bool); isBool {
			forceMiss = f
		}
	}

	cost := CostBasicAttack
	skillBonus := 0
	if skill != "" {
		cost = CostSkillAttack
		skillBonus = 2
	}
	if !attacker.Vitals.SpendSP(cost) {
		result := failure(fmt.Sprintf("%s is too tired to attack", attacker.Name))
		e.log("%s", result.Reason)
		return result
	}
	e.pushUpdate(entities.SPUpdate(attacker.ID, attacker.Vitals.SP))

	atkRoll, _ := e.roller.Roll(20)
	if forceMiss {
		atkRoll = 1
	}
	atkTotal := atkRoll + attacker.Stats.Get(entities.AttrMight, 0)/2 + skillBonus

	defRoll, _ := e.roller.Roll(20)
	defTotal := defRoll + (target.Stats.Get(entities.AttrReflexes, 0)+defenseBonus)/2

	margin := atkTotal - defTotal

	var logs []string
	logs = append(logs, e.log("%s attacks %s! (Atk %d vs Def %d) Margin: %d",
		attacker.Name, target.Name, atkTotal, defTotal, margin))

	switch {
	case margin >= 10:
		damage := 15
		if skill != "" {
			damage = 25
		}
		logs = append(logs, e.log("CRITICAL! %s takes %d damage.", target.Name, damage))
		e.applyAttackDamage(ctx, attacker, target, damage, entities.FCTStyleCrit)

	case margin > 0:
		damage := 8
		if skill != "" {
			damage = 14
		}
		logs = append(logs, e.log("Hit! %s takes %d damage.", target.Name, damage))
		e.applyAttackDamage(ctx, attacker, target, damage, entities.FCTStyleDmg)

	default:
		logs = append(logs, e.log("%s misses!", attacker.Name))
		e.pushUpdate(entities.FCTUpdate(target.ID, "MISS", entities.FCTStyleMiss))
	}

	return ActionResult{Success: true, Logs: logs}
}

func (e *Engine) applyAttackDamage(ctx context.Context, attacker, target *entities.Entity, damage int, style string) {
	target.Vitals.Damage(damage)
	e.pushUpdate(entities.FCTUpdate(target.ID, fmt.Sprintf("-%d", damage), style))
	e.pushUpdate(entities.HPUpdate(target.ID, target.Vitals.HP))

	event := events.NewGameEvent(EventPostDamage, attacker, target)
	event.Context().Set(ctxKeyDamage, damage)
	_ = e.bus.Publish(ctx, event)

	if !target.Alive() {
		e.log("%s falls!", target.Name)
	}
}

// MoveChar steps an entity to (tx, ty), paying Chebyshev-distance
// stamina, doubled onto DIFFICULT ground.
func (e *Engine) MoveChar(ent *entities.Entity, tx, ty int) ActionResult {
	if ent == nil || ent.Position == nil {
		return failure("mover has no position")
	}
	if !e.grid.InBounds(tx, ty) {
		return failure("destination is out of bounds")
	}
	if e.grid.IsWall(tx, ty) {
		return failure("destination is a wall")
	}
	if occupant, occupied := e.OccupantAt(tx, ty); occupied && occupant.ID != ent.ID {
		return failure(fmt.Sprintf("%s is in the way", occupant.Name))
	}

	cost := chebyshev(ent.Position.X, ent.Position.Y, tx, ty)
	if e.isDifficult(tx, ty) {
		cost *= 2
	}
	if cost == 0 {
		return ActionResult{Success: true}
	}
	if !ent.Vitals.SpendSP(cost) {
		result := failure(fmt.Sprintf("%s is too tired to move", ent.Name))
		e.log("%s", result.Reason)
		return result
	}

	ent.Position.X = tx
	ent.Position.Y = ty
	e.pushUpdate(entities.MoveTokenUpdate(ent.ID, tx, ty))
	e.pushUpdate(entities.SPUpdate(ent.ID, ent.Vitals.SP))

	return ActionResult{Success: true, Logs: []string{
		e.log("%s moves to (%d, %d).", ent.Name, tx, ty),
	}}
}

func (e *Engine) isDifficult(x, y int) bool {
	return e.grid.TerrainAt(x, y) == world.TerrainDifficult ||
		e.grid.Cells[y][x] == world.TileDifficult
}

// SmashTile breaks an adjacent wall: 3 SP, 1d20 + ⌊Might/2⌋ against
// DC 15.
func (e *Engine) SmashTile(ent *entities.Entity, tx, ty int) ActionResult {
	if ent == nil || ent.Position == nil {
		return failure("smasher has no position")
	}
	if chebyshev(ent.Position.X, ent.Position.Y, tx, ty) != 1 {
		return failure("target tile is not adjacent")
	}
	if !e.grid.IsWall(tx, ty) {
		return failure("nothing to smash there")
	}
	if !ent.Vitals.SpendSP(CostSmash) {
		result := failure(fmt.Sprintf("%s is too tired to smash", ent.Name))
		e.log("%s", result.Reason)
		return result
	}
	e.pushUpdate(entities.SPUpdate(ent.ID, ent.Vitals.SP))

	roll, _ := e.roller.Roll(20)
	total := roll + ent.Stats.Get(entities.AttrMight, 0)/2

	if total < SmashDC {
		return ActionResult{Success: false, Reason: "the obstacle holds", Logs: []string{
			e.log("%s strikes the obstacle (%d vs DC %d) but it holds.", ent.Name, total, SmashDC),
		}}
	}

	e.grid.ClearWall(tx, ty)
	e.pushUpdate(entities.NewUpdate(entities.UpdateShake, map[string]interface{}{"intensity": 2}))
	e.pushUpdate(entities.AnimationUpdate("smash", fmt.Sprintf("%d,%d", tx, ty)))
	e.pushUpdate(entities.NewUpdate(entities.UpdateGrid, map[string]interface{}{
		"pos":  []int{tx, ty},
		"tile": world.TileFloor,
	}))

	return ActionResult{Success: true, Logs: []string{
		e.log("%s smashes through! (%d vs DC %d)", ent.Name, total, SmashDC),
	}}
}

// ApplyTileEffects runs start-of-turn environmental hazards for the
// combatant's tile and returns the log lines produced.
func (e *Engine) ApplyTileEffects(ent *entities.Entity) []string {
	if ent == nil || ent.Position == nil || !ent.Alive() {
		return nil
	}

	var logs []string
	switch e.grid.TerrainAt(ent.Position.X, ent.Position.Y) {
	case world.TerrainLava:
		ent.Vitals.Damage(4)
		logs = append(logs, e.log("%s is scorched by lava for 4 damage!", ent.Name))
		e.pushUpdate(entities.FCTUpdate(ent.ID, "-4", entities.FCTStyleDmg))
		e.pushUpdate(entities.HPUpdate(ent.ID, ent.Vitals.HP))

	case world.TerrainAcid:
		ent.Vitals.Damage(3)
		logs = append(logs, e.log("%s is burned by acid for 3 damage!", ent.Name))
		e.pushUpdate(entities.FCTUpdate(ent.ID, "-3", entities.FCTStyleDmg))
		e.pushUpdate(entities.HPUpdate(ent.ID, ent.Vitals.HP))

	case world.TerrainPoison:
		if ent.Status != nil {
			ent.Status.Apply(entities.StatusEffect{Name: "Poisoned", Duration: 2, Magnitude: 1})
		}
		logs = append(logs, e.log("%s is poisoned!", ent.Name))
		e.pushUpdate(entities.FCTUpdate(ent.ID, "POISONED", entities.FCTStyleReact))

	case world.TerrainSteamVent:
		if e.roller.Chance(0.5) {
			nx := ent.Position.X + 1
			if e.grid.InBounds(nx, ent.Position.Y) && !e.grid.IsWall(nx, ent.Position.Y) {
				if _, occupied := e.OccupantAt(nx, ent.Position.Y); !occupied {
					ent.Position.X = nx
					logs = append(logs, e.log("A steam vent hurls %s sideways!", ent.Name))
					e.pushUpdate(entities.MoveTokenUpdate(ent.ID, nx, ent.Position.Y))
				}
			}
		}
	}
	return logs
}

// ProcessIntent routes a structured player intent through the engine.
func (e *Engine) ProcessIntent(ctx context.Context, player *entities.Entity, intent *entities.Intent) ActionResult {
	if player == nil {
		return failure("no player in combat")
	}
	if intent == nil {
		return failure("no intent to process")
	}

	switch intent.Action {
	case entities.ActionAttack, entities.ActionSkill:
		target, ok := e.CombatantByName(intent.Target)
		if !ok {
			if enemies := e.enemiesOf(player); len(enemies) > 0 {
				target = enemies[0]
			} else {
				return failure("no target in sight")
			}
		}
		return e.AttackTarget(ctx, player, target, intent.SkillID)

	case entities.ActionMove:
		return e.MoveChar(player, intent.IntParam("x"), intent.IntParam("y"))

	case entities.ActionInteract, entities.ActionUse:
		return e.SmashTile(player, intent.IntParam("x"), intent.IntParam("y"))

	case entities.ActionRest:
		player.Vitals.RegainSP(2)
		e.pushUpdate(entities.SPUpdate(player.ID, player.Vitals.SP))
		return ActionResult{Success: true, Logs: []string{
			e.log("%s catches their breath.", player.Name),
		}}

	default:
		return ActionResult{Success: true, Logs: []string{
			e.log("%s hesitates; the fight continues.", player.Name),
		}}
	}
}
