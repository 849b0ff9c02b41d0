// Package combat implements the battle-lab surface: loading a saved
// character onto a seeded grid, routing player actions through the
// combat engine, running the AI turn, and exporting replays.
package combat

//go:generate mockgen -destination=mock/mock_service.go -package=combatmock github.com/sagaforge/saga-api/internal/orchestrators/combat Service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sagaforge/saga-api/internal/clients/external"
	combatengine "github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/pkg/clock"
	"github.com/sagaforge/saga-api/internal/world"
)

const (
	labGridSize      = 10
	labObstacleCount = 12

	playerStartX, playerStartY = 2, 2
	dummyX, dummyY             = 7, 7
)

// Service defines the interface for battle-lab operations.
type Service interface {
	Load(ctx context.Context, input *LoadInput) (*LoadOutput, error)
	State(ctx context.Context, input *StateInput) (*StateOutput, error)
	Action(ctx context.Context, input *ActionInput) (*ActionOutput, error)
	EndTurn(ctx context.Context, input *EndTurnInput) (*EndTurnOutput, error)
	Export(ctx context.Context, input *ExportInput) (*ExportOutput, error)
	Saves(ctx context.Context, input *SavesInput) (*SavesOutput, error)
}

// Config holds the dependencies for the combat orchestrator.
type Config struct {
	Registry *ecs.Registry
	Saves    *external.SaveStore
	Roller   combatengine.Roller

	// Clock stamps replay exports. Defaults to the system clock.
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Saves == nil {
		vb.RequiredField("Saves")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

type orchestrator struct {
	registry *ecs.Registry
	saves    *external.SaveStore
	roller   combatengine.Roller
	clock    clock.Clock

	mu     sync.Mutex
	active *combatengine.Engine
}

// NewOrchestrator creates a combat orchestrator with the provided
// dependencies.
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &orchestrator{
		registry: cfg.Registry,
		saves:    cfg.Saves,
		roller:   cfg.Roller,
		clock:    clk,
	}, nil
}

// ActiveEngine exposes the running battle for the workflow's combat
// source. Nil outside combat.
func ActiveEngine(s Service) func() *combatengine.Engine {
	o, ok := s.(*orchestrator)
	if !ok {
		return func() *combatengine.Engine { return nil }
	}
	return func() *combatengine.Engine {
		o.mu.Lock()
		defer o.mu.Unlock()
		return o.active
	}
}

// Load implements Service. It seeds a fresh battle-lab grid, restores
// the named character, and adds a target dummy.
func (o *orchestrator) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil || input.CharacterName == "" {
		return nil, errors.InvalidArgument("character name is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != nil {
		o.active.Close()
		o.active = nil
	}

	grid := o.seedLabGrid()
	engine, err := combatengine.NewEngine(&combatengine.Config{
		Grid:   grid,
		Roller: o.roller,
	})
	if err != nil {
		return nil, err
	}

	hero, err := o.saves.Restore(ctx, o.registry, input.CharacterName, playerStartX, playerStartY)
	if err != nil {
		engine.Close()
		return nil, err
	}
	hero.Tags.Add("hero")
	if err := engine.AddCombatant(hero); err != nil {
		engine.Close()
		return nil, err
	}

	dummy, err := o.registry.CreateCharacter(ctx, &ecs.CharacterRecord{
		Name: "Target Dummy",
		Team: "Enemy",
		Stats: map[string]int{
			entities.AttrVitality:  10,
			entities.AttrFortitude: 10,
			entities.AttrEndurance: 10,
			entities.AttrReflexes:  5,
		},
		X: dummyX,
		Y: dummyY,
	})
	if err != nil {
		engine.Close()
		return nil, err
	}
	if err := engine.AddCombatant(dummy); err != nil {
		engine.Close()
		return nil, err
	}

	o.active = engine
	slog.InfoContext(ctx, "battle lab loaded",
		"character", input.CharacterName,
		"grid", labGridSize,
	)
	return &LoadOutput{Character: hero, Grid: grid}, nil
}

// seedLabGrid builds the 10x10 lab map with random walls and brush,
// keeping the start and dummy tiles clear.
func (o *orchestrator) seedLabGrid() *world.Grid {
	grid := world.NewGrid(labGridSize, labGridSize)
	for i := 0; i < labObstacleCount; i++ {
		x := o.roller.Intn(labGridSize)
		y := o.roller.Intn(labGridSize)
		if (x == playerStartX && y == playerStartY) || (x == dummyX && y == dummyY) {
			continue
		}
		if o.roller.Chance(0.5) {
			grid.SetWall(x, y)
		} else {
			grid.Cells[y][x] = world.TileDifficult
			grid.SetTerrain(x, y, world.TerrainDifficult)
		}
	}
	return grid
}

// State implements Service.
func (o *orchestrator) State(_ context.Context, _ *StateInput) (*StateOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active == nil {
		return &StateOutput{Active: false}, nil
	}

	out := &StateOutput{
		Active: true,
		Grid:   o.active.Grid(),
		Round:  o.active.Round(),
		Log:    o.active.ReplayLog(),
	}
	for _, c := range o.active.Combatants() {
		view := CombatantView{
			ID:     c.ID,
			Name:   c.Name,
			Vitals: c.Vitals,
			Tags:   c.Tags.List(),
		}
		if c.Position != nil {
			view.X, view.Y = c.Position.X, c.Position.Y
		}
		if c.Renderable != nil {
			view.Sprite = c.Renderable.Sprite
		}
		out.Combatants = append(out.Combatants, view)
	}
	return out, nil
}

// Action implements Service. The request is shaped into an intent and
// routed through the engine on behalf of the hero.
func (o *orchestrator) Action(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil || input.Action == "" {
		return nil, errors.InvalidArgument("action is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active == nil {
		return nil, errors.FailedPrecondition("no active combat")
	}
	hero := o.hero()
	if hero == nil {
		return nil, errors.FailedPrecondition("player not found in combat")
	}

	intent := &entities.Intent{
		Action:  entities.Action(strings.ToUpper(input.Action)),
		Target:  input.TargetID,
		SkillID: input.SkillName,
		Parameters: map[string]interface{}{
			"dx": input.DX, "dy": input.DY,
			"x": input.X, "y": input.Y,
		},
	}
	if !intent.Action.Valid() {
		return nil, errors.InvalidArgumentf("unknown action %q", input.Action)
	}
	if intent.Action == entities.ActionMove && input.X == 0 && input.Y == 0 && hero.Position != nil {
		intent.Parameters["x"] = hero.Position.X + input.DX
		intent.Parameters["y"] = hero.Position.Y + input.DY
	}

	result := o.active.ProcessIntent(ctx, hero, intent)
	return &ActionOutput{
		Narrative: strings.Join(result.Logs, " "),
		Updates:   o.active.PendingUpdates(),
	}, nil
}

// EndTurn implements Service: the AI side acts, then the round rolls
// over with regen and status ticks.
func (o *orchestrator) EndTurn(ctx context.Context, _ *EndTurnInput) (*EndTurnOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active == nil {
		return nil, errors.FailedPrecondition("no active combat")
	}

	o.active.RunAITurn(ctx)
	updates := o.active.PendingUpdates()
	o.active.NextRound()

	return &EndTurnOutput{Round: o.active.Round(), Updates: updates}, nil
}

// Export implements Service. The replay summary persists as an entity
// so past battles survive restarts; the live engine is then dropped.
func (o *orchestrator) Export(ctx context.Context, _ *ExportInput) (*ExportOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active == nil {
		return nil, errors.FailedPrecondition("no active combat")
	}

	log := o.active.ReplayLog()
	rounds := o.active.Round()

	replay, err := o.registry.AddEntity(ctx, &entities.Entity{
		Type: "replay",
		Name: "Battle Replay",
		Metadata: map[string]interface{}{
			"rounds":      rounds,
			"log":         log,
			"exported_at": o.clock.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, err
	}

	o.active.Close()
	o.active = nil

	slog.InfoContext(ctx, "combat exported",
		"replay_id", replay.ID,
		"rounds", rounds,
		"log_lines", len(log),
	)
	return &ExportOutput{ReplayID: replay.ID, Rounds: rounds, LogLines: len(log)}, nil
}

// Saves implements Service.
func (o *orchestrator) Saves(_ context.Context, _ *SavesInput) (*SavesOutput, error) {
	names, err := o.saves.List()
	if err != nil {
		return nil, err
	}
	return &SavesOutput{Names: names}, nil
}

func (o *orchestrator) hero() *entities.Entity {
	for _, c := range o.active.Combatants() {
		if c.Tags.Has("hero") || c.Tags.Has("player") {
			return c
		}
	}
	return nil
}
