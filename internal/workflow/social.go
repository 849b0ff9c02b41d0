package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
)

// socialMove pairs the attacker's offensive attribute with the
// defender's resisting attribute.
type socialMove struct {
	name    string
	offense string
	defense string
}

// Deception is not one of the twelve core attributes; absent stats
// read as 10, so untrained characters still get a flat check.
var socialMoves = []socialMove{
	{"intimidate", entities.AttrMight, entities.AttrWillpower},
	{"deceive", "Deception", entities.AttrIntuition},
	{"persuade", entities.AttrLogic, entities.AttrWillpower},
	{"charm", entities.AttrIntuition, entities.AttrKnowledge},
	{"taunt", "Deception", entities.AttrReflexes},
}

const socialTargetBase = 10

// SocialEngine resolves conversational pressure against an NPC's
// composure. A flavor matching one of the known moves picks the
// attribute pairing; success deals CMP damage, and a target at zero
// composure breaks.
type SocialEngine struct {
	registry *ecs.Registry
	roller   combat.Roller
}

// SocialConfig holds the social engine dependencies.
type SocialConfig struct {
	Registry *ecs.Registry
	Roller   combat.Roller
}

// Validate checks required fields.
func (cfg *SocialConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	if cfg.Registry == nil {
		return errors.InvalidArgument("registry is required")
	}
	if cfg.Roller == nil {
		return errors.InvalidArgument("roller is required")
	}
	return nil
}

// NewSocialEngine creates a social combat engine.
func NewSocialEngine(cfg *SocialConfig) (*SocialEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SocialEngine{registry: cfg.Registry, roller: cfg.Roller}, nil
}

// Resolve executes one social action against the intent's target.
// It returns the mechanical log line and any visual updates.
func (s *SocialEngine) Resolve(ctx context.Context, intent *entities.Intent, actor *entities.Entity) (string, []entities.VisualUpdate) {
	targetName := strings.TrimSpace(intent.Target)
	if targetName == "" {
		return "You speak to the air. Nothing happens.", nil
	}

	target := s.findByName(targetName)
	if target == nil {
		return fmt.Sprintf("%s is not here.", titleCase(targetName)), nil
	}
	if target.Stats == nil || target.Vitals == nil {
		return fmt.Sprintf("%s cannot be reasoned with.", target.Name), nil
	}

	move := classifyMove(intent.NarrativeFlavor)

	var actorStats entities.Stats
	if actor != nil {
		actorStats = actor.Stats
	}
	offense := actorStats.Get(move.offense, 10)
	defense := target.Stats.Get(move.defense, 10)

	d1, _ := s.roller.Roll(6)
	d2, _ := s.roller.Roll(6)
	total := d1 + d2 + offense
	targetNumber := socialTargetBase + defense

	if total < targetNumber {
		return fmt.Sprintf("Attempted to %s %s (Rolled %d vs %d). Failure! They remain steadfast.",
			move.name, target.Name, total, targetNumber), nil
	}

	d4, _ := s.roller.Roll(4)
	dmg := d4 + (offense - defense)
	if dmg < 1 {
		dmg = 1
	}
	target.Vitals.DamageCMP(dmg)

	result := fmt.Sprintf("Attempted to %s %s (Rolled %d vs %d). Success! Dealt %d Composure damage.",
		move.name, target.Name, total, targetNumber, dmg)
	updates := []entities.VisualUpdate{
		entities.NewUpdate(entities.UpdateSocialDamage, map[string]interface{}{
			"target_id": target.ID,
			"amount":    dmg,
			"stat":      "cmp",
			"flavor":    "Cracked their composure",
		}),
	}

	if target.Vitals.CMP == 0 {
		result += fmt.Sprintf(" %s's composure breaks! They fold to your demands.", target.Name)
	}

	if err := s.registry.SaveEntity(ctx, target.ID); err != nil {
		slog.WarnContext(ctx, "failed to persist social target",
			"entity_id", target.ID,
			"error", err,
		)
	}
	return result, updates
}

func (s *SocialEngine) findByName(name string) *entities.Entity {
	for _, e := range sortedEntities(s.registry) {
		if strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}

// classifyMove scans the flavor for a known move keyword. Unmatched
// flavors resolve as persuasion.
func classifyMove(flavor string) socialMove {
	lower := strings.ToLower(flavor)
	for _, m := range socialMoves {
		if strings.Contains(lower, m.name) {
			return m
		}
	}
	return socialMoves[2]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
