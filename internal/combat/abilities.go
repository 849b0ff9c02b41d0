package combat

import (
	"context"
	"fmt"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Ability types.
const (
	AbilityOffense = "Offense"
	AbilityDefense = "Defense"
	AbilitySupport = "Support"
)

// Effect kinds.
const (
	EffectDamage = "damage"
	EffectStatus = "status"
	EffectHeal   = "heal"
)

// Effect is one typed consequence of an ability with explicit
// parameters.
type Effect struct {
	Kind      string `json:"kind"`
	Amount    int    `json:"amount,omitempty"`
	Status    string `json:"status,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	Magnitude int    `json:"magnitude,omitempty"`
}

// Ability is a tagged record of typed effects.
type Ability struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	CostSP  int      `json:"cost_sp,omitempty"`
	CostFP  int      `json:"cost_fp,omitempty"`
	Range   int      `json:"range"`
	Effects []Effect `json:"effects"`
}

// Catalog maps ability names to records.
type Catalog map[string]Ability

// DefaultCatalog returns the built-in ability set.
func DefaultCatalog() Catalog {
	return Catalog{
		"Power Strike": {
			Name: "Power Strike", Type: AbilityOffense, CostSP: 3, Range: 1,
			Effects: []Effect{{Kind: EffectDamage, Amount: 10}},
		},
		"Venom Spit": {
			Name: "Venom Spit", Type: AbilityOffense, CostFP: 2, Range: 3,
			Effects: []Effect{
				{Kind: EffectDamage, Amount: 4},
				{Kind: EffectStatus, Status: "Poisoned", Duration: 2, Magnitude: 1},
			},
		},
		"Mend": {
			Name: "Mend", Type: AbilitySupport, CostFP: 3, Range: 1,
			Effects: []Effect{{Kind: EffectHeal, Amount: 8}},
		},
	}
}

// CastAbility applies one ability from user to target. Returns a
// failed result when out of range, out of sight, or unaffordable; a
// cast whose effects all miss their preconditions is reported as a
// no-op failure so callers can fall through to a basic attack.
func (e *Engine) CastAbility(ctx context.Context, user, target *entities.Entity, ab Ability) ActionResult {
	if user == nil || target == nil {
		return failure("ability needs a user and a target")
	}
	dist := chebyshev(user.Position.X, user.Position.Y, target.Position.X, target.Position.Y)
	if dist > ab.Range {
		return failure(fmt.Sprintf("%s is out of range for %s", target.Name, ab.Name))
	}
	if !e.HasLOS(user.Position.X, user.Position.Y, target.Position.X, target.Position.Y) {
		return failure(fmt.Sprintf("%s cannot see %s", user.Name, target.Name))
	}
	if ab.CostSP > 0 && user.Vitals.SP < ab.CostSP {
		return failure(fmt.Sprintf("%s lacks the stamina for %s", user.Name, ab.Name))
	}
	if ab.CostFP > 0 && user.Vitals.FP < ab.CostFP {
		return failure(fmt.Sprintf("%s lacks the focus for %s", user.Name, ab.Name))
	}

	applied := false
	var logs []string
	for _, effect := range ab.Effects {
		switch effect.Kind {
		case EffectDamage:
			target.Vitals.Damage(effect.Amount)
			logs = append(logs, e.log("%s hits %s with %s for %d damage!",
				user.Name, target.Name, ab.Name, effect.Amount))
			e.pushUpdate(entities.FCTUpdate(target.ID, fmt.Sprintf("-%d", effect.Amount), entities.FCTStyleDmg))
			e.pushUpdate(entities.HPUpdate(target.ID, target.Vitals.HP))
			applied = true

		case EffectStatus:
			if target.Status != nil {
				target.Status.Apply(entities.StatusEffect{
					Name:      effect.Status,
					Duration:  effect.Duration,
					Magnitude: effect.Magnitude,
				})
				logs = append(logs, e.log("%s is afflicted: %s!", target.Name, effect.Status))
				e.pushUpdate(entities.FCTUpdate(target.ID, effect.Status, entities.FCTStyleReact))
				applied = true
			}

		case EffectHeal:
			if target.Vitals.HP < target.Vitals.MaxHP {
				target.Vitals.HP = min(target.Vitals.MaxHP, target.Vitals.HP+effect.Amount)
				logs = append(logs, e.log("%s mends %s for %d.", user.Name, target.Name, effect.Amount))
				e.pushUpdate(entities.HPUpdate(target.ID, target.Vitals.HP))
				applied = true
			}
		}
	}

	if !applied {
		return failure(fmt.Sprintf("%s fizzles", ab.Name))
	}

	user.Vitals.SP -= ab.CostSP
	user.Vitals.FP -= ab.CostFP
	e.pushUpdate(entities.SPUpdate(user.ID, user.Vitals.SP))

	if postDamage := anyDamage(ab); postDamage {
		event := newPostDamageEvent(user, target)
		_ = e.bus.Publish(ctx, event)
	}

	return ActionResult{Success: true, Logs: logs}
}

func anyDamage(ab Ability) bool {
	for _, effect := range ab.Effects {
		if effect.Kind == EffectDamage {
			return true
		}
	}
	return false
}
