package combat

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Reaction trigger topics.
const (
	EventBeforeAttack = "combat.before_attack"
	EventPostDamage   = "combat.post_damage"
)

// Event context keys reactions write back through.
const (
	ctxKeyDefenseBonus = "defense_bonus"
	ctxKeyForceMiss    = "force_miss"
	ctxKeyDamage       = "damage"
)

const camoDodgeChance = 0.25

func newPostDamageEvent(attacker, defender *entities.Entity) events.Event {
	return events.NewGameEvent(EventPostDamage, attacker, defender)
}

func (e *Engine) subscribeReactions() {
	e.subscriptions = append(e.subscriptions,
		e.bus.SubscribeFunc(EventBeforeAttack, 0, e.onBeforeAttack),
		e.bus.SubscribeFunc(EventPostDamage, 0, e.onPostDamage),
	)
}

// reactionKey tracks one firing per (entity, trait, round).
func (e *Engine) reactionKey(entityID, trait string) string {
	return fmt.Sprintf("%s_%s_%d", entityID, strings.ToLower(trait), e.round)
}

func (e *Engine) tryReaction(entityID, trait string) bool {
	key := e.reactionKey(entityID, trait)
	if _, used := e.usedReactions[key]; used {
		return false
	}
	e.usedReactions[key] = struct{}{}
	return true
}

func (e *Engine) onBeforeAttack(_ context.Context, event events.Event) error {
	defender, ok := event.Target().(*entities.Entity)
	if !ok || defender == nil {
		return nil
	}

	for _, trait := range defender.Traits {
		mechanic := strings.ToLower(trait.Mechanic)

		switch {
		case strings.Contains(mechanic, "danger sense"):
			if !e.tryReaction(defender.ID, trait.Mechanic) {
				continue
			}
			bonus := 0
			if v, exists := event.Context().Get(ctxKeyDefenseBonus); exists {
				if b, isInt := v.(int); isInt {
					bonus = b
				}
			}
			event.Context().Set(ctxKeyDefenseBonus, bonus+5)
			e.log("%s's danger sense flares!", defender.Name)
			e.pushUpdate(entities.FCTUpdate(defender.ID, "DANGER SENSE", entities.FCTStyleReact))

		case strings.Contains(mechanic, "reactive camo"):
			if !e.tryReaction(defender.ID, trait.Mechanic) {
				continue
			}
			if e.roller.Chance(camoDodgeChance) {
				event.Context().Set(ctxKeyForceMiss, true)
				e.log("%s shimmers out of focus!", defender.Name)
				e.pushUpdate(entities.FCTUpdate(defender.ID, "CAMO", entities.FCTStyleReact))
			}
		}
	}
	return nil
}

func (e *Engine) onPostDamage(_ context.Context, event events.Event) error {
	attacker, ok := event.Source().(*entities.Entity)
	if !ok || attacker == nil {
		return nil
	}
	defender, ok := event.Target().(*entities.Entity)
	if !ok || defender == nil {
		return nil
	}

	for _, trait := range defender.Traits {
		mechanic := strings.ToLower(trait.Mechanic)
		if !strings.Contains(mechanic, "thorns") && !strings.Contains(mechanic, "spines") {
			continue
		}
		if !e.tryReaction(defender.ID, trait.Mechanic) {
			continue
		}
		if attacker.Vitals != nil {
			attacker.Vitals.Damage(2)
		}
		e.log("%s is pricked for 2 recoil damage!", attacker.Name)
		e.pushUpdate(entities.FCTUpdate(attacker.ID, "-2", entities.FCTStyleReact))
		if attacker.Vitals != nil {
			e.pushUpdate(entities.HPUpdate(attacker.ID, attacker.Vitals.HP))
		}
	}
	return nil
}
