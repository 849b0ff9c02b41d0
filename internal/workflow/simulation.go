package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/world"
)

// turnHours is the narrative time one resolved input consumes.
const turnHours = 1

// CombatSource reports the active battle, or nil outside combat. The
// engine is created and torn down elsewhere; the node only routes.
type CombatSource func() *combat.Engine

// SimNode resolves the mechanical half of a turn. In combat every
// intent goes straight to the combat engine; outside combat the node
// routes by verb: movement over the world graph, TALK to social
// combat, INTERACT and USE to the interaction rules. Either way the
// turn updates quest objectives keyed by the verb and advances the
// simulation clock.
type SimNode struct {
	combat   CombatSource
	registry *ecs.Registry
	graph    *world.Graph
	clock    *sim.Manager
	quests   *campaign.QuestManager
	social   *SocialEngine
	interact *InteractionEngine
}

// SimNodeConfig holds the simulation node dependencies. Everything
// but the registry is optional; a nil dependency disables its route.
type SimNodeConfig struct {
	Combat      CombatSource
	Registry    *ecs.Registry
	Graph       *world.Graph
	Clock       *sim.Manager
	Quests      *campaign.QuestManager
	Social      *SocialEngine
	Interaction *InteractionEngine
}

// NewSimNode builds the mechanical resolution node.
func NewSimNode(cfg *SimNodeConfig) *SimNode {
	return &SimNode{
		combat:   cfg.Combat,
		registry: cfg.Registry,
		graph:    cfg.Graph,
		clock:    cfg.Clock,
		quests:   cfg.Quests,
		social:   cfg.Social,
		interact: cfg.Interaction,
	}
}

// Name implements Node.
func (n *SimNode) Name() string { return "simulation" }

// Run implements Node.
func (n *SimNode) Run(ctx context.Context, state *GraphState) error {
	intent := state.Intent
	if intent == nil {
		intent = entities.FallbackIntent()
		state.Intent = intent
	}

	if engine := n.activeCombat(); engine != nil {
		n.runCombat(ctx, engine, state, intent)
	} else {
		n.runWorld(ctx, state, intent)
	}

	if n.quests != nil {
		notices := n.quests.UpdateObjective(ctx, strings.ToLower(string(intent.Action)), 1)
		state.QuestNotices = append(state.QuestNotices, notices...)
		state.MechanicalLog = append(state.MechanicalLog, notices...)
	}

	if n.clock != nil {
		px, py := playerCoords(state.Player)
		if err := n.clock.AdvanceTime(ctx, turnHours, float64(px), float64(py)); err != nil {
			slog.WarnContext(ctx, "failed to advance simulation clock", "error", err)
		}
	}
	return nil
}

func (n *SimNode) activeCombat() *combat.Engine {
	if n.combat == nil {
		return nil
	}
	return n.combat()
}

// runCombat delegates to the combat engine and flushes its pending
// visual updates into the turn state.
func (n *SimNode) runCombat(ctx context.Context, engine *combat.Engine, state *GraphState, intent *entities.Intent) {
	fighter := n.fighterFor(engine, state.Player)
	if fighter == nil {
		state.MechanicalLog = append(state.MechanicalLog, "You are not part of this battle.")
		return
	}

	result := engine.ProcessIntent(ctx, fighter, intent)
	state.MechanicalLog = append(state.MechanicalLog, result.Logs...)
	state.Updates = append(state.Updates, engine.PendingUpdates()...)
}

// fighterFor maps the acting entity onto its combatant. Falls back to
// the first combatant tagged as the player.
func (n *SimNode) fighterFor(engine *combat.Engine, player *entities.Entity) *entities.Entity {
	if player != nil {
		if c, ok := engine.Combatant(player.ID); ok {
			return c
		}
	}
	for _, c := range engine.Combatants() {
		if c.Tags.Has("player") {
			return c
		}
	}
	return nil
}

// runWorld resolves an out-of-combat intent against the overworld.
func (n *SimNode) runWorld(ctx context.Context, state *GraphState, intent *entities.Intent) {
	switch intent.Action {
	case entities.ActionMove:
		log, updates := n.resolveMove(ctx, intent, state.Player)
		state.MechanicalLog = append(state.MechanicalLog, log)
		state.Updates = append(state.Updates, updates...)

	case entities.ActionTalk:
		if n.social == nil {
			state.MechanicalLog = append(state.MechanicalLog, "Your words hang in the air.")
			return
		}
		log, updates := n.social.Resolve(ctx, intent, state.Player)
		state.MechanicalLog = append(state.MechanicalLog, log)
		state.Updates = append(state.Updates, updates...)

	case entities.ActionInteract, entities.ActionUse:
		if n.interact == nil {
			state.MechanicalLog = append(state.MechanicalLog, "Nothing here responds.")
			return
		}
		log, updates := n.interact.Resolve(ctx, intent, state.Player)
		state.MechanicalLog = append(state.MechanicalLog, log)
		state.Updates = append(state.Updates, updates...)

	case entities.ActionRest:
		n.resolveRest(state)

	default:
		state.MechanicalLog = append(state.MechanicalLog,
			fmt.Sprintf("You traverse the world. %s executed.", intent.Action))
	}
}

// resolveMove walks the player over the world graph. A target naming
// a known node snaps to it; otherwise dx/dy parameters shift the
// position directly.
func (n *SimNode) resolveMove(ctx context.Context, intent *entities.Intent, player *entities.Entity) (string, []entities.VisualUpdate) {
	if player == nil || player.Position == nil {
		return "There is nobody to move.", nil
	}

	if node := n.nodeByName(intent.Target); node != nil {
		player.Position.X = int(node.X)
		player.Position.Y = int(node.Y)
		n.persistPlayer(ctx, player)
		return fmt.Sprintf("You travel to %s.", node.Name), []entities.VisualUpdate{
			entities.NewUpdate(entities.UpdateMovePlayer, map[string]interface{}{
				"id":  player.ID,
				"pos": []int{player.Position.X, player.Position.Y},
			}),
		}
	}

	dx, dy := intent.IntParam("dx"), intent.IntParam("dy")
	if dx == 0 && dy == 0 {
		return "You wander without direction.", nil
	}
	player.Position.X += dx
	player.Position.Y += dy
	n.persistPlayer(ctx, player)
	return fmt.Sprintf("You move to (%d, %d).", player.Position.X, player.Position.Y), []entities.VisualUpdate{
		entities.NewUpdate(entities.UpdateMovePlayer, map[string]interface{}{
			"id":  player.ID,
			"pos": []int{player.Position.X, player.Position.Y},
		}),
	}
}

func (n *SimNode) resolveRest(state *GraphState) {
	player := state.Player
	if player == nil || player.Vitals == nil {
		state.MechanicalLog = append(state.MechanicalLog, "Time passes quietly.")
		return
	}
	player.Vitals.RegainSP(player.Vitals.MaxSP)
	state.MechanicalLog = append(state.MechanicalLog, "You make camp and recover your strength.")
	state.Updates = append(state.Updates, entities.SPUpdate(player.ID, player.Vitals.SP))
}

func (n *SimNode) nodeByName(name string) *entities.WorldNode {
	if n.graph == nil || strings.TrimSpace(name) == "" {
		return nil
	}
	if node, ok := n.graph.Node(name); ok {
		return node
	}
	for _, node := range n.graph.Nodes() {
		if strings.EqualFold(node.Name, name) {
			return node
		}
	}
	return nil
}

func (n *SimNode) persistPlayer(ctx context.Context, player *entities.Entity) {
	if n.registry == nil {
		return
	}
	if err := n.registry.SaveEntity(ctx, player.ID); err != nil {
		slog.WarnContext(ctx, "failed to persist player position",
			"entity_id", player.ID,
			"error", err,
		)
	}
}
