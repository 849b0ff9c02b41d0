// Package tactical runs wilderness encounters: generated battle maps
// seeded from the campaign, a live combat session, and the system
// actions that bypass the narrative pipeline.
package tactical

//go:generate mockgen -destination=mock/mock_service.go -package=tacticalmock github.com/sagaforge/saga-api/internal/orchestrators/tactical Service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
	combatengine "github.com/sagaforge/saga-api/internal/combat"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/sim"
	"github.com/sagaforge/saga-api/internal/world"
)

const (
	mapSize       = 20
	wallChance    = 0.1
	playerSpawnX  = 5
	playerSpawnY  = 5
	chestLootDraw = 2

	// POIs within this Chebyshev range of the encounter are pulled
	// onto the map and marked discovered.
	poiRange = 50

	// Hours burned by a map transition or a camp rest.
	travelHours = 8

	worldCenterX = 500
	worldCenterY = 500

	itemHeal = 20
)

// Marker icons by role.
const (
	iconObject  = "sheet:5074"
	iconPerson  = "sheet:3"
	iconMonster = "sheet:5076"
	iconCorpse  = "sheet:14"
	iconItem    = "sheet:6"
	iconHero    = "sheet:115"
)

// Service defines the interface for tactical encounter operations.
type Service interface {
	// Generate builds a fresh encounter map at a world position and
	// opens a combat session on it.
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)

	// State snapshots the live session.
	State(ctx context.Context, input *StateInput) (*StateOutput, error)

	// Char looks a character up by name, live entities first, save
	// files second.
	Char(ctx context.Context, input *CharInput) (*CharOutput, error)

	// Feedback records an encounter outcome.
	Feedback(ctx context.Context, input *FeedbackInput) (*FeedbackOutput, error)

	// Travel advances time and regenerates the map at the next
	// undiscovered objective.
	Travel(ctx context.Context, input *TravelInput) (*GenerateOutput, error)

	// Action executes a hard-coded system action in the live session.
	Action(ctx context.Context, input *ActionInput) (*ActionOutput, error)
}

// Config holds the dependencies for the tactical orchestrator.
type Config struct {
	Registry *ecs.Registry
	Saves    *external.SaveStore
	Roller   combatengine.Roller

	// Optional. Clock burns hours on travel and camp; Campaign seeds
	// quest markers onto generated maps.
	Clock    *sim.Manager
	Campaign *campaign.Generator

	// Character restored onto generated maps. Defaults to "Burt".
	DefaultCharacter string
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
	registry    *ecs.Registry
	saves       *external.SaveStore
	roller      combatengine.Roller
	clock       *sim.Manager
	campaign    *campaign.Generator
	defaultChar string

	mu     sync.Mutex
	active *combatengine.Engine
}

// NewOrchestrator creates a tactical orchestrator with the provided
// dependencies.
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	name := cfg.DefaultCharacter
	if name == "" {
		name = "Burt"
	}
	return &orchestrator{
		registry:    cfg.Registry,
		saves:       cfg.Saves,
		roller:      cfg.Roller,
		clock:       cfg.Clock,
		campaign:    cfg.Campaign,
		defaultChar: name,
	}, nil
}

// ActiveEngine exposes the running session for the workflow's combat
// source. Nil outside an encounter.
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

// Generate implements Service.
func (o *orchestrator) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	x, y := o.resolveWorldPos(input)
	return o.generateLocked(ctx, x, y)
}

// generateLocked does the actual map build. Callers hold o.mu.
func (o *orchestrator) generateLocked(ctx context.Context, x, y int) (*GenerateOutput, error) {
	if o.active != nil {
		o.active.Close()
		o.active = nil
	}

	grid := o.seedWildernessGrid()
	engine, err := combatengine.NewEngine(&combatengine.Config{
		Grid:   grid,
		Roller: o.roller,
	})
	if err != nil {
		return nil, err
	}

	out := &GenerateOutput{
		Title:       "Wilderness Encounter",
		Description: "You scan the tactical area...",
		WorldX:      x,
		WorldY:      y,
		Biome:       "forest",
		Grid:        grid,
		Log:         []string{"Tactical simulation initiated."},
	}

	// Standing world entities appear as markers.
	for _, e := range o.worldEntities() {
		out.Entities = append(out.Entities, entityMarker(e))
	}

	hero, err := o.saves.Restore(ctx, o.registry, o.defaultChar, playerSpawnX, playerSpawnY)
	if err != nil {
		engine.Close()
		return nil, err
	}
	hero.Tags.Add("hero")
	if err := engine.AddCombatant(hero); err != nil {
		engine.Close()
		return nil, err
	}
	out.Entities = append(out.Entities, heroMarker(hero))

	chest, err := o.placeChest(ctx)
	if err != nil {
		engine.Close()
		return nil, err
	}
	out.Entities = append(out.Entities, entityMarker(chest))

	if err := o.seedCampaignPOIs(ctx, engine, x, y, out); err != nil {
		engine.Close()
		return nil, err
	}

	o.active = engine
	slog.InfoContext(ctx, "tactical map generated",
		"world_x", x,
		"world_y", y,
		"markers", len(out.Entities),
	)
	return out, nil
}

// resolveWorldPos picks the encounter's world position: explicit
// coordinates, else the campaign's first plot point, else the world
// center.
func (o *orchestrator) resolveWorldPos(input *GenerateInput) (int, int) {
	if input != nil && (input.X != 0 || input.Y != 0) {
		return input.X, input.Y
	}
	if o.campaign != nil {
		if c := o.campaign.Current(); c != nil && len(c.PlotPoints) > 0 {
			return c.PlotPoints[0].X, c.PlotPoints[0].Y
		}
	}
	return worldCenterX, worldCenterY
}

// seedWildernessGrid builds a bordered map with scattered interior
// walls.
func (o *orchestrator) seedWildernessGrid() *world.Grid {
	grid := world.NewGrid(mapSize, mapSize)
	for gy := 0; gy < mapSize; gy++ {
		for gx := 0; gx < mapSize; gx++ {
			border := gx == 0 || gy == 0 || gx == mapSize-1 || gy == mapSize-1
			if border || o.roller.Chance(wallChance) {
				grid.SetWall(gx, gy)
			}
		}
	}
	grid.ClearWall(playerSpawnX, playerSpawnY)
	return grid
}

// worldEntities returns positioned registry entities in stable order.
func (o *orchestrator) worldEntities() []*entities.Entity {
	all := o.registry.EntitiesWith(entities.KindPosition)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// placeChest drops a lootable chest in the far corner.
func (o *orchestrator) placeChest(ctx context.Context) (*entities.Entity, error) {
	loot := make([]string, 0, chestLootDraw)
	for i := 0; i < chestLootDraw; i++ {
		loot = append(loot, o.lootDraw())
	}
	return o.registry.AddEntity(ctx, &entities.Entity{
		Type:      "object",
		Name:      "Ancient Chest",
		Position:  &entities.Position{X: mapSize - 3, Y: 3},
		Renderable: &entities.Renderable{Sprite: iconItem},
		Inventory: &entities.Inventory{Items: loot},
		Tags:      entities.NewTagSet("lootable", "openable", "container"),
	})
}

func (o *orchestrator) lootDraw() string {
	switch draw := o.roller.Intn(100); {
	case draw >= 80:
		return "Gold Coin"
	case draw >= 40:
		return "Minor Health Potion"
	default:
		return "Scrap Materials"
	}
}

// seedCampaignPOIs pulls undiscovered campaign markers near the
// encounter onto the map. Hostile seeds become live combatants.
func (o *orchestrator) seedCampaignPOIs(ctx context.Context, engine *combatengine.Engine, x, y int, out *GenerateOutput) error {
	if o.campaign == nil {
		return nil
	}
	current := o.campaign.Current()
	if current == nil {
		return nil
	}

	for i := range current.POIs {
		poi := &current.POIs[i]
		if poi.Discovered || abs(poi.X-x) >= poiRange || abs(poi.Y-y) >= poiRange {
			continue
		}
		poi.Discovered = true

		lx := o.roller.Intn(mapSize-4) + 2
		ly := o.roller.Intn(mapSize-4) + 2

		if poi.Kind == entities.POIMonster {
			monster, err := o.spawnQuestMonster(ctx, engine, poi.ID, poi.Description, lx, ly)
			if err != nil {
				return err
			}
			out.Entities = append(out.Entities, entityMarker(monster))
			continue
		}

		seed, err := o.registry.AddEntity(ctx, o.poiEntity(poi, lx, ly))
		if err != nil {
			return err
		}
		out.Entities = append(out.Entities, entityMarker(seed))
	}
	return nil
}

// poiEntity shapes a non-hostile quest seed as a world entity.
func (o *orchestrator) poiEntity(poi *entities.POI, lx, ly int) *entities.Entity {
	icon, etype := iconObject, "object"
	tags := []string{"poi", "interactable"}

	switch poi.Kind {
	case entities.POIPerson:
		icon, etype = iconPerson, "npc"
		tags = append(tags, "talkable")
	case entities.POICorpse:
		icon = iconCorpse
		tags = append(tags, "searchable")
	case entities.POIItem:
		icon, etype = iconItem, "item"
		tags = append(tags, "lootable")
	}

	return &entities.Entity{
		Type:       etype,
		Name:       fmt.Sprintf("%s (Quest Seed)", poi.Kind),
		Position:   &entities.Position{X: lx, Y: ly},
		Renderable: &entities.Renderable{Sprite: icon},
		Tags:       entities.NewTagSet(tags...),
		Metadata:   map[string]interface{}{"description": poi.Description, "poi_id": poi.ID},
	}
}

// spawnQuestMonster creates a hostile seed as a real combatant.
func (o *orchestrator) spawnQuestMonster(ctx context.Context, engine *combatengine.Engine, poiID, desc string, lx, ly int) (*entities.Entity, error) {
	monster, err := o.registry.CreateCharacter(ctx, &ecs.CharacterRecord{
		Name:   "Gore-Beast",
		Sprite: iconMonster,
		Team:   "Enemy",
		Stats: map[string]int{
			entities.AttrMight:     12,
			entities.AttrVitality:  12,
			entities.AttrFortitude: 10,
			entities.AttrEndurance: 10,
			entities.AttrReflexes:  8,
		},
		X: lx,
		Y: ly,
	})
	if err != nil {
		return nil, err
	}
	monster.Tags.Add("poi")
	monster.Tags.Add("interactable")
	monster.Tags.Add("hostile")
	if monster.Metadata == nil {
		monster.Metadata = map[string]interface{}{}
	}
	monster.Metadata["description"] = desc
	monster.Metadata["poi_id"] = poiID

	if err := engine.AddCombatant(monster); err != nil {
		return nil, err
	}
	return monster, nil
}

// State implements Service.
func (o *orchestrator) State(_ context.Context, _ *StateInput) (*StateOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active == nil {
		return nil, errors.NotFound("no active session")
	}
	hero := o.hero()
	if hero == nil {
		return nil, errors.NotFound("player not found")
	}

	out := &StateOutput{Round: o.active.Round()}
	for _, c := range o.active.TurnOrder() {
		out.TurnOrder = append(out.TurnOrder, c.Name)
	}

	out.Player = PlayerView{
		Name:       hero.Name,
		Health:     Gauge{Current: hero.Vitals.HP, Max: hero.Vitals.MaxHP},
		Stamina:    Gauge{Current: hero.Vitals.SP, Max: hero.Vitals.MaxSP},
		Focus:      Gauge{Current: hero.Vitals.FP, Max: hero.Vitals.MaxFP},
		Composure:  Gauge{Current: hero.Vitals.CMP, Max: hero.Vitals.MaxCMP},
		Attributes: hero.Stats,
	}
	if hero.Position != nil {
		out.Player.X, out.Player.Y = hero.Position.X, hero.Position.Y
	}

	for _, c := range o.active.Combatants() {
		if c.ID == hero.ID || c.Faction == nil || c.Faction.Faction != "Enemy" {
			continue
		}
		view := EnemyView{
			ID:     c.ID,
			Name:   c.Name,
			Health: Gauge{Current: c.Vitals.HP, Max: c.Vitals.MaxHP},
		}
		if c.Position != nil {
			view.X, view.Y = c.Position.X, c.Position.Y
		}
		out.Enemies = append(out.Enemies, view)
	}
	return out, nil
}

// Char implements Service.
func (o *orchestrator) Char(_ context.Context, input *CharInput) (*CharOutput, error) {
	if input == nil || input.Name == "" {
		return nil, errors.InvalidArgument("name is required")
	}

	for _, e := range o.worldEntities() {
		if strings.EqualFold(e.Name, input.Name) {
			return &CharOutput{Entity: e}, nil
		}
	}

	record, err := o.saves.Load(input.Name)
	if err != nil {
		return nil, errors.NotFoundf("character %s", input.Name)
	}
	return &CharOutput{Record: record}, nil
}

// Feedback implements Service.
func (o *orchestrator) Feedback(ctx context.Context, input *FeedbackInput) (*FeedbackOutput, error) {
	if input == nil || input.Outcome == "" {
		return nil, errors.InvalidArgument("outcome is required")
	}
	slog.InfoContext(ctx, "encounter feedback",
		"outcome", input.Outcome,
		"enemies_killed", len(input.EnemiesKilled),
		"loot_taken", len(input.LootTaken),
	)
	return &FeedbackOutput{
		Message: fmt.Sprintf("Combat outcome: %s recorded.", input.Outcome),
	}, nil
}

// Travel implements Service. Eight hours pass and the map regenerates
// at the next undiscovered objective.
func (o *orchestrator) Travel(ctx context.Context, _ *TravelInput) (*GenerateOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	x, y := o.nextObjective()
	if o.clock != nil {
		if err := o.clock.AdvanceTime(ctx, travelHours, float64(x), float64(y)); err != nil {
			slog.WarnContext(ctx, "travel clock advance failed", "error", err.Error())
		}
	}
	return o.generateLocked(ctx, x, y)
}

// nextObjective picks the first undiscovered POI, then the upcoming
// plot point, then the world center.
func (o *orchestrator) nextObjective() (int, int) {
	if o.campaign == nil {
		return worldCenterX, worldCenterY
	}
	current := o.campaign.Current()
	if current == nil {
		return worldCenterX, worldCenterY
	}
	for i := range current.POIs {
		if !current.POIs[i].Discovered {
			return current.POIs[i].X, current.POIs[i].Y
		}
	}
	idx := current.CurrentStepIndex + 1
	if idx < len(current.PlotPoints) {
		return current.PlotPoints[idx].X, current.PlotPoints[idx].Y
	}
	return worldCenterX, worldCenterY
}

// Action implements Service.
func (o *orchestrator) Action(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil || input.ActionType == "" {
		return nil, errors.InvalidArgument("action type is required")
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

	var (
		msg     string
		updates []entities.VisualUpdate
	)
	switch input.ActionType {
	case "skill":
		target, ok := o.active.Combatant(input.TargetID)
		if !ok {
			msg = fmt.Sprintf("Target not valid for %s.", input.SkillID)
			break
		}
		result := o.active.AttackTarget(ctx, hero, target, input.SkillID)
		msg = fmt.Sprintf("You cast %s! %s", input.SkillID, strings.Join(result.Logs, " "))
		updates = append(updates,
			entities.AnimationUpdate("MAGIC", target.ID),
			entities.HPUpdate(target.ID, target.Vitals.HP),
		)
		updates = append(updates, o.active.PendingUpdates()...)

	case "item":
		hero.Vitals.HP = min(hero.Vitals.MaxHP, hero.Vitals.HP+itemHeal)
		msg = fmt.Sprintf("You used %s. Restored %d HP!", input.ItemID, itemHeal)
		updates = append(updates, entities.HPUpdate(hero.ID, hero.Vitals.HP))

	case "camp":
		msg = "You set up camp. 8 hours pass. Vitals restored."
		if o.clock != nil && hero.Position != nil {
			if err := o.clock.AdvanceTime(ctx, travelHours, float64(hero.Position.X), float64(hero.Position.Y)); err != nil {
				slog.WarnContext(ctx, "camp clock advance failed", "error", err.Error())
			}
		}
		hero.Vitals.HP = hero.Vitals.MaxHP
		hero.Vitals.SP = hero.Vitals.MaxSP
		updates = append(updates, entities.HPUpdate(hero.ID, hero.Vitals.HP))

	default:
		return nil, errors.InvalidArgumentf("unknown action type %q", input.ActionType)
	}

	return &ActionOutput{
		Narrative: fmt.Sprintf("[SYSTEM] %s", msg),
		Updates:   updates,
	}, nil
}

// entityMarker shapes a world entity as a map marker.
func entityMarker(e *entities.Entity) EntityView {
	view := EntityView{
		ID:   e.ID,
		Name: e.Name,
		Type: "object",
		Icon: iconObject,
		Tags: e.Tags.List(),
	}
	if e.Tags.Has("faction") || e.Tags.Has("hostile") {
		view.Type = "enemy"
	} else if e.Type != "" {
		view.Type = e.Type
	}
	if e.Position != nil {
		view.X, view.Y = e.Position.X, e.Position.Y
	}
	if e.Vitals != nil {
		view.HP, view.MaxHP = e.Vitals.HP, e.Vitals.MaxHP
	}
	if e.Renderable != nil && e.Renderable.Sprite != "" {
		view.Icon = e.Renderable.Sprite
	}
	if e.Inventory != nil {
		view.Inventory = e.Inventory.Items
	}
	if desc, ok := e.Metadata["description"].(string); ok {
		view.Description = desc
	}
	return view
}

func heroMarker(hero *entities.Entity) EntityView {
	view := entityMarker(hero)
	view.Type = "player"
	view.Tags = []string{"hero"}
	if view.Icon == iconObject {
		view.Icon = iconHero
	}
	return view
}

func (o *orchestrator) hero() *entities.Entity {
	for _, c := range o.active.Combatants() {
		if c.Tags.Has("hero") || c.Tags.Has("player") {
			return c
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
