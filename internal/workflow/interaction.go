package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
)

// Object affordance tags the interaction rules dispatch on.
const (
	tagBreakable = "breakable"
	tagContainer = "container"
	tagExplosive = "explosive"
	tagSwitch    = "switch"
	tagLever     = "lever"
	tagActive    = "active"
	tagInactive  = "inactive"
	tagDoor      = "door"
	tagGate      = "gate"
	tagLocked    = "locked"
	tagOpenable  = "openable"
	tagReadable  = "readable"
	tagNPC       = "npc"
	tagTalkable  = "talkable"

	linkTagPrefix = "link_"

	explosionRadius = 2
)

// forceWords mark a flavor as applying enough force to break things.
var forceWords = []string{"bash", "smash", "hit", "break", "kick"}

// InteractionEngine deterministically processes INTERACT and USE
// intents against entity affordance tags. All math stays here; the
// narrative generator only ever sees the resulting log.
type InteractionEngine struct {
	registry *ecs.Registry
	roller   combat.Roller
}

// InteractionConfig holds the interaction engine dependencies.
type InteractionConfig struct {
	Registry *ecs.Registry
	Roller   combat.Roller
}

// Validate checks required fields.
func (cfg *InteractionConfig) Validate() error {
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

// NewInteractionEngine creates an interaction engine.
func NewInteractionEngine(cfg *InteractionConfig) (*InteractionEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &InteractionEngine{registry: cfg.Registry, roller: cfg.Roller}, nil
}

// Resolve executes one interaction against the intent's target and
// returns the mechanical log plus any visual updates.
func (ie *InteractionEngine) Resolve(ctx context.Context, intent *entities.Intent, player *entities.Entity) (string, []entities.VisualUpdate) {
	targetName := strings.TrimSpace(intent.Target)
	if targetName == "" || strings.EqualFold(targetName, "nothing") {
		return "You interact with the air. Nothing happens.", nil
	}

	target := ie.findTarget(targetName)
	if target == nil {
		return fmt.Sprintf("Could not find '%s' nearby.", targetName), nil
	}

	px, py := playerCoords(player)
	flavor := strings.ToLower(intent.NarrativeFlavor)

	var logs []string
	var updates []entities.VisualUpdate

	switch {
	case target.Tags.Has(tagBreakable) && impliesForce(flavor):
		logs = append(logs, fmt.Sprintf("The %s is shattered.", target.Name))
		updates = append(updates, entities.NewUpdate(entities.UpdateDestroyEntity, map[string]interface{}{
			"id": target.ID,
		}))

		if target.Tags.Has(tagContainer) {
			loot := ie.generateLoot()
			logs = append(logs, fmt.Sprintf("Revealed contents: %v", loot))
			updates = append(updates, spawnLootUpdate(px, py, loot))
		}
		if target.Tags.Has(tagExplosive) {
			dmg, _ := ie.roller.Roll(11)
			dmg += 4
			logs = append(logs, fmt.Sprintf("BOOM! %s explodes dealing %d damage in an AoE.", target.Name, dmg))
			updates = append(updates, entities.NewUpdate(entities.UpdateDamageAOE, map[string]interface{}{
				"damage": dmg,
				"radius": explosionRadius,
			}))
		}

		if err := ie.registry.DestroyEntity(ctx, target.ID); err != nil {
			slog.WarnContext(ctx, "failed to destroy broken entity",
				"entity_id", target.ID,
				"error", err,
			)
		}

	case target.Tags.Has(tagSwitch) || target.Tags.Has(tagLever):
		activated := ie.toggle(target)
		if activated {
			logs = append(logs, fmt.Sprintf("You activated the %s.", target.Name))
		} else {
			logs = append(logs, fmt.Sprintf("You deactivated the %s.", target.Name))
		}
		moreLogs, moreUpdates := ie.driveLinkedDoors(ctx, target, activated)
		logs = append(logs, moreLogs...)
		updates = append(updates, moreUpdates...)
		ie.persist(ctx, target)

	case target.Tags.Has(tagOpenable) || target.Tags.Has(tagContainer):
		if target.Tags.Has(tagLocked) {
			if hasKey(player) {
				target.Tags.Remove(tagLocked)
				logs = append(logs, fmt.Sprintf("Used Key. Unlocked %s.", target.Name))
				ie.persist(ctx, target)
			} else {
				logs = append(logs, fmt.Sprintf("The %s is locked.", target.Name))
			}
		} else {
			loot := ie.generateLoot()
			logs = append(logs, fmt.Sprintf("Opened %s. Contents: %v", target.Name, loot))
			updates = append(updates, spawnLootUpdate(px, py, loot))
			target.Tags.Remove(tagOpenable)
			ie.persist(ctx, target)
		}

	case target.Tags.Has(tagReadable):
		logs = append(logs, fmt.Sprintf("You read the %s. It contains ancient knowledge.", target.Name))

	case target.Tags.Has(tagNPC) || target.Tags.Has(tagTalkable):
		return "Target is an NPC. Use TALK action.", nil

	default:
		logs = append(logs, fmt.Sprintf("Attempted interaction with %s, but it lacks affordances.", target.Name))
	}

	return strings.Join(logs, "\n"), updates
}

// toggle flips the active/inactive pair and reports the new state.
func (ie *InteractionEngine) toggle(target *entities.Entity) bool {
	if target.Tags.Has(tagActive) {
		target.Tags.Remove(tagActive)
		target.Tags.Add(tagInactive)
		return false
	}
	target.Tags.Remove(tagInactive)
	target.Tags.Add(tagActive)
	return true
}

// driveLinkedDoors opens or closes doors wired to the switch. A
// "link_*" tag on the switch restricts the scan to doors carrying the
// same tag; without one, every door and gate responds.
func (ie *InteractionEngine) driveLinkedDoors(ctx context.Context, sw *entities.Entity, activated bool) ([]string, []entities.VisualUpdate) {
	var linkTag string
	for _, t := range sw.Tags.List() {
		if strings.HasPrefix(t, linkTagPrefix) {
			linkTag = t
			break
		}
	}

	var logs []string
	var updates []entities.VisualUpdate
	for _, e := range sortedEntities(ie.registry) {
		if !e.Tags.Has(tagDoor) && !e.Tags.Has(tagGate) {
			continue
		}
		if linkTag != "" && !e.Tags.Has(linkTag) {
			continue
		}
		if activated {
			e.Tags.Remove(tagLocked)
			e.Tags.Add(tagOpenable)
			logs = append(logs, fmt.Sprintf("The %s unlocks and opens!", e.Name))
			updates = append(updates, entities.AnimationUpdate("UNLOCK", e.ID))
		} else {
			e.Tags.Remove(tagOpenable)
			e.Tags.Add(tagLocked)
			logs = append(logs, fmt.Sprintf("The %s slams shut and locks.", e.Name))
		}
		ie.persist(ctx, e)
	}
	return logs, updates
}

// generateLoot rolls the generic drop table.
func (ie *InteractionEngine) generateLoot() []string {
	v := ie.roller.Intn(100)
	switch {
	case v >= 80:
		return []string{"Gold Coin"}
	case v >= 40:
		return []string{"Minor Health Potion"}
	default:
		return []string{"Scrap Materials"}
	}
}

func (ie *InteractionEngine) persist(ctx context.Context, e *entities.Entity) {
	if err := ie.registry.SaveEntity(ctx, e.ID); err != nil {
		slog.WarnContext(ctx, "failed to persist interaction target",
			"entity_id", e.ID,
			"error", err,
		)
	}
}

// findTarget matches the name against entity ids and names, substring,
// case-insensitive. Candidates are scanned in id order so ties are
// stable across runs.
func (ie *InteractionEngine) findTarget(name string) *entities.Entity {
	lower := strings.ToLower(name)
	for _, e := range sortedEntities(ie.registry) {
		if strings.Contains(strings.ToLower(e.ID), lower) || strings.Contains(strings.ToLower(e.Name), lower) {
			return e
		}
	}
	return nil
}

func impliesForce(flavor string) bool {
	for _, w := range forceWords {
		if strings.Contains(flavor, w) {
			return true
		}
	}
	return false
}

func hasKey(player *entities.Entity) bool {
	if player == nil || player.Inventory == nil {
		return false
	}
	for _, item := range player.Inventory.Items {
		if strings.Contains(strings.ToLower(item), "key") {
			return true
		}
	}
	return false
}

func playerCoords(player *entities.Entity) (int, int) {
	if player == nil || player.Position == nil {
		return 0, 0
	}
	return player.Position.X, player.Position.Y
}

func spawnLootUpdate(x, y int, items []string) entities.VisualUpdate {
	return entities.NewUpdate(entities.UpdateSpawnLoot, map[string]interface{}{
		"pos":   []int{x, y},
		"items": items,
	})
}

func sortedEntities(r *ecs.Registry) []*entities.Entity {
	all := r.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
