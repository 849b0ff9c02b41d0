package workflow

import (
	"context"
	"log/slog"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/world"
)

// Pipeline wires the four turn nodes together: intent, lore,
// simulation, narrative. One ProcessTurn call runs one player input
// end to end and records the exchange in the rolling memory.
type Pipeline struct {
	runtime *Runtime
	memory  *external.MemoryManager
	chaos   float64
}

// Config holds the pipeline dependencies.
type Config struct {
	Provider external.NarrativeProvider
	Registry *ecs.Registry
	Roller   combat.Roller

	// Optional. A nil dependency disables the matching route or
	// context source.
	Retriever external.Retriever
	Memory    *external.MemoryManager
	Graph     *world.Graph
	Clock     *sim.Manager
	Quests    *campaign.QuestManager
	Combat    CombatSource

	// ChaosLevel tunes how volatile the narrative voice is, in [0,1].
	ChaosLevel float64
	LoreTopK   int
}

// Validate checks required fields.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	if cfg.Provider == nil {
		return errors.InvalidArgument("narrative provider is required")
	}
	if cfg.Registry == nil {
		return errors.InvalidArgument("registry is required")
	}
	if cfg.Roller == nil {
		return errors.InvalidArgument("roller is required")
	}
	if cfg.ChaosLevel < 0 || cfg.ChaosLevel > 1 {
		return errors.InvalidArgumentf("chaos level %f outside [0,1]", cfg.ChaosLevel)
	}
	return nil
}

// New creates a turn pipeline.
func New(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	social, err := NewSocialEngine(&SocialConfig{Registry: cfg.Registry, Roller: cfg.Roller})
	if err != nil {
		return nil, err
	}
	interact, err := NewInteractionEngine(&InteractionConfig{Registry: cfg.Registry, Roller: cfg.Roller})
	if err != nil {
		return nil, err
	}

	runtime := NewRuntime(
		NewIntentNode(cfg.Provider),
		NewLoreNode(cfg.Retriever, cfg.Memory, cfg.LoreTopK),
		NewSimNode(&SimNodeConfig{
			Combat:      cfg.Combat,
			Registry:    cfg.Registry,
			Graph:       cfg.Graph,
			Clock:       cfg.Clock,
			Quests:      cfg.Quests,
			Social:      social,
			Interaction: interact,
		}),
		NewNarrativeNode(cfg.Provider, cfg.Quests),
	)

	return &Pipeline{
		runtime: runtime,
		memory:  cfg.Memory,
		chaos:   cfg.ChaosLevel,
	}, nil
}

// ProcessTurn runs one player input through the chain and returns the
// final state. The state always carries whatever was produced before
// any failure.
func (p *Pipeline) ProcessTurn(ctx context.Context, input string, player *entities.Entity) *GraphState {
	state := &GraphState{
		Input:      input,
		Player:     player,
		ChaosLevel: p.chaos,
	}
	state = p.runtime.Execute(ctx, state)

	if p.memory != nil && state.Narrative != "" {
		p.memory.AddInteraction(ctx, input, state.Narrative)
	}

	slog.InfoContext(ctx, "turn resolved",
		"input", input,
		"action", actionOf(state.Intent),
		"log_lines", len(state.MechanicalLog),
		"updates", len(state.Updates),
		"failed", state.Failed(),
	)
	return state
}

func actionOf(intent *entities.Intent) string {
	if intent == nil {
		return ""
	}
	return string(intent.Action)
}
