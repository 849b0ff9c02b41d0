// Package campaign generates and runs the twelve-stage hero's journey:
// plot points flavored by simulation context, path-seeded points of
// interest, and reactive side quests.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	campaignrepo "github.com/sagaforge/saga-api/internal/repositories/campaign"
)

// DefaultTheme is used when campaign creation is given none.
const DefaultTheme = "Classic High Fantasy"

const (
	pathPOICount      = 3
	localSeedCount    = 2
	poiJitter         = 50
	plotCoordMin      = 100
	plotCoordMax      = 900
	richWealthFloor   = 1000.0
	ruggedInfraCeil   = 0.2
	assassinationHint = 2000.0
)

// journeyStages is the fixed twelve-step arc, in order.
var journeyStages = []struct {
	Name string
	Desc string
}{
	{"The Ordinary World", "Introduce the hero in their normal life."},
	{"The Call to Adventure", "Something disrupts the status quo."},
	{"Refusal of the Call", "The hero hesitates or fears the unknown."},
	{"Meeting the Mentor", "The hero receives guidance or a magical gift."},
	{"Crossing the Threshold", "The hero leaves the ordinary world for the special world."},
	{"Tests, Allies, Enemies", "The hero explores the new world, facing minor challenges."},
	{"Approach to the Inmost Cave", "The hero prepares for the main danger."},
	{"The Ordeal", "The central life-or-death crisis."},
	{"Reward (Seizing the Sword)", "The hero claims the prize of the ordeal."},
	{"The Road Back", "The hero must return home, often chased."},
	{"The Resurrection", "The final test where the hero is reborn."},
	{"Return with the Elixir", "The hero returns home changed, bringing power/knowledge."},
}

// StageCount is the length of the journey arc.
const StageCount = 12

// LocalContext is what the simulation knows about a map position,
// consumed for description flavoring.
type LocalContext struct {
	LandmarkName string
	LandmarkType string
	Territory    string
	Wealth       float64
	Infra        float64
}

// ContextSource answers local-context queries; the world graph backs
// the production implementation.
type ContextSource interface {
	ContextAt(x, y float64) (*LocalContext, bool)
}

// Rand supplies the random draws generation needs.
type Rand interface {
	Intn(n int) int
}

// Generator creates campaigns and drives their reactive quest runtime.
type Generator struct {
	repo    campaignrepo.Repository
	source  ContextSource
	rand    Rand
	current *entities.Campaign
}

// Config holds the Generator dependencies.
type Config struct {
	Repository campaignrepo.Repository
	Context    ContextSource
	Rand       Rand
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Repository == nil {
		return errors.InvalidArgument("repository cannot be nil")
	}
	if cfg.Context == nil {
		return errors.InvalidArgument("context source cannot be nil")
	}
	if cfg.Rand == nil {
		return errors.InvalidArgument("rand cannot be nil")
	}
	return nil
}

// New creates a Generator.
func New(cfg *Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		repo:   cfg.Repository,
		source: cfg.Context,
		rand:   cfg.Rand,
	}, nil
}

// Current returns the campaign in play, nil before creation or load.
func (g *Generator) Current() *entities.Campaign {
	return g.current
}

// CreateCampaign builds a full twelve-stage campaign, seeds the first
// path segment with points of interest, and persists it as active.
func (g *Generator) CreateCampaign(ctx context.Context, id, heroName, theme string) (*entities.Campaign, error) {
	if id == "" {
		return nil, errors.InvalidArgument("campaign id is required")
	}
	if heroName == "" {
		return nil, errors.InvalidArgument("hero name is required")
	}
	if theme == "" {
		theme = DefaultTheme
	}

	c := &entities.Campaign{
		ID:       id,
		HeroName: heroName,
		Theme:    theme,
	}

	for i, stage := range journeyStages {
		x := g.plotCoord()
		y := g.plotCoord()

		desc := stage.Desc
		targetID := ""
		if lc, ok := g.source.ContextAt(float64(x), float64(y)); ok {
			desc = flavorPlotDescription(stage.Desc, lc)
			targetID = lc.LandmarkName
		}

		kind := stageQuestKind(stage.Name)
		c.PlotPoints = append(c.PlotPoints, entities.PlotPoint{
			ID:          fmt.Sprintf("step_%d", i),
			StageName:   stage.Name,
			Description: desc,
			X:           x,
			Y:           y,
			IsMajor:     true,
			Quests: []entities.QuestStep{{
				StepID:           fmt.Sprintf("q_main_%d", i),
				Title:            fmt.Sprintf("%s: %s Task", stage.Name, kind),
				Description:      desc,
				Kind:             kind,
				Status:           entities.QuestActive,
				TargetLocationID: targetID,
			}},
		})
	}

	first := c.PlotPoints[0]
	second := c.PlotPoints[1]
	c.POIs = g.pathPOIs(first.X, first.Y, second.X, second.Y, theme, pathPOICount)

	if err := g.save(ctx, c); err != nil {
		return nil, err
	}
	g.current = c

	slog.InfoContext(ctx, "campaign created",
		"campaign_id", c.ID,
		"hero", heroName,
		"theme", theme,
		"poi_count", len(c.POIs),
	)
	return c, nil
}

// Load restores the active campaign from the repository.
func (g *Generator) Load(ctx context.Context) (*entities.Campaign, error) {
	out, err := g.repo.GetActive(ctx, campaignrepo.GetActiveInput{})
	if err != nil {
		return nil, err
	}
	g.current = out.Campaign
	return g.current, nil
}

// TriggerSideQuest promotes a point of interest into a quest step on
// the current plot point and marks the POI discovered.
func (g *Generator) TriggerSideQuest(ctx context.Context, poiID string) (*entities.QuestStep, error) {
	if g.current == nil {
		return nil, errors.FailedPrecondition("no campaign in play")
	}
	poi := g.current.FindPOI(poiID)
	if poi == nil {
		return nil, errors.NotFoundf("poi %s not found", poiID)
	}

	poi.Discovered = true
	kind := poiQuestKind(poi.Kind)

	flavor := fmt.Sprintf("Following the %s: %s", poi.Kind, poi.Description)
	if lc, ok := g.source.ContextAt(float64(poi.X), float64(poi.Y)); ok {
		if lc.Wealth > assassinationHint && kind == entities.QuestRevenge {
			flavor += " This death in such a prosperous area smells of calculated assassination."
		}
	}

	step := entities.QuestStep{
		StepID:           fmt.Sprintf("side_%s", poiID),
		Title:            fmt.Sprintf("The %s Secret", poi.Kind),
		Description:      flavor,
		Kind:             kind,
		Status:           entities.QuestActive,
		TargetLocationID: poi.LocationID,
	}

	if pp := g.current.CurrentPlotPoint(); pp != nil {
		pp.Quests = append(pp.Quests, step)
	}
	if err := g.save(ctx, g.current); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "side quest triggered",
		"poi_id", poiID,
		"kind", kind,
	)
	return &step, nil
}

// GenerateLocalSeeds injects new points of interest between the player
// and the next plot point. Returns how many were added.
func (g *Generator) GenerateLocalSeeds(ctx context.Context, px, py int) (int, error) {
	if g.current == nil {
		return 0, errors.FailedPrecondition("no campaign in play")
	}
	idx := g.current.CurrentStepIndex
	if idx+1 >= len(g.current.PlotPoints) {
		return 0, nil
	}
	next := g.current.PlotPoints[idx+1]

	seeds := g.pathPOIs(px, py, next.X, next.Y, g.current.Theme, localSeedCount)
	g.current.POIs = append(g.current.POIs, seeds...)
	if err := g.save(ctx, g.current); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "local seeds injected",
		"count", len(seeds),
		"toward", next.StageName,
	)
	return len(seeds), nil
}

// CurrentObjective returns the first active quest step of the current
// plot point, nil when none remain.
func (g *Generator) CurrentObjective() *entities.QuestStep {
	if g.current == nil {
		return nil
	}
	pp := g.current.CurrentPlotPoint()
	if pp == nil {
		return nil
	}
	for i := range pp.Quests {
		if pp.Quests[i].Status == entities.QuestActive {
			return &pp.Quests[i]
		}
	}
	return nil
}

// AdvancePlot completes the current plot point and moves to the next.
func (g *Generator) AdvancePlot(ctx context.Context) error {
	if g.current == nil {
		return errors.FailedPrecondition("no campaign in play")
	}
	if pp := g.current.CurrentPlotPoint(); pp != nil {
		pp.Completed = true
	}
	g.current.CurrentStepIndex++
	return g.save(ctx, g.current)
}

func (g *Generator) save(ctx context.Context, c *entities.Campaign) error {
	_, err := g.repo.Save(ctx, campaignrepo.SaveInput{Campaign: c})
	return err
}

// pathPOIs interpolates count points along the segment with a little
// jitter, flavored by the campaign theme.
func (g *Generator) pathPOIs(sx, sy, ex, ey int, theme string, count int) []entities.POI {
	pois := make([]entities.POI, 0, count)
	for i := 1; i <= count; i++ {
		t := float64(i) / float64(count+1)
		px := sx + int(t*float64(ex-sx)) + g.jitter()
		py := sy + int(t*float64(ey-sy)) + g.jitter()

		kind := entities.POIKinds[g.rand.Intn(len(entities.POIKinds))]

		var lc *LocalContext
		if c, ok := g.source.ContextAt(float64(px), float64(py)); ok {
			lc = c
		}

		pois = append(pois, entities.POI{
			ID:          fmt.Sprintf("poi_path_%d_%d", px, py),
			Kind:        kind,
			Description: flavorByTheme(kind, theme, lc),
			X:           px,
			Y:           py,
		})
	}
	return pois
}

func (g *Generator) plotCoord() int {
	return plotCoordMin + g.rand.Intn(plotCoordMax-plotCoordMin+1)
}

func (g *Generator) jitter() int {
	return g.rand.Intn(2*poiJitter+1) - poiJitter
}

// stageQuestKind maps a journey stage to a gameplay quest kind.
func stageQuestKind(stage string) entities.QuestKind {
	switch {
	case strings.Contains(stage, "Enemies"),
		strings.Contains(stage, "Ordeal"),
		strings.Contains(stage, "Resurrection"):
		return entities.QuestHostile
	case strings.Contains(stage, "Mentor"),
		strings.Contains(stage, "Ordinary"):
		return entities.QuestSocial
	case strings.Contains(stage, "Approach"),
		strings.Contains(stage, "Road Back"):
		return entities.QuestExploration
	case strings.Contains(stage, "Reward"):
		return entities.QuestPuzzle
	default:
		return entities.QuestHunt
	}
}

// poiQuestKind maps a point-of-interest kind to the quest it spawns.
func poiQuestKind(kind entities.POIKind) entities.QuestKind {
	switch kind {
	case entities.POIMonster:
		return entities.QuestHunt
	case entities.POICorpse:
		return entities.QuestRevenge
	case entities.POIPerson:
		return entities.QuestSocial
	case entities.POIItem:
		return entities.QuestPuzzle
	default:
		return entities.QuestExploration
	}
}

func flavorPlotDescription(desc string, lc *LocalContext) string {
	switch {
	case lc.Wealth > richWealthFloor:
		return fmt.Sprintf("%s Inside the prosperous %s of %s, where wealth flows like water.",
			desc, lc.LandmarkType, lc.LandmarkName)
	case lc.Infra < ruggedInfraCeil:
		return fmt.Sprintf("%s In the rugged, undeveloped territory of %s, where roads are few and danger is constant.",
			desc, lc.Territory)
	default:
		return fmt.Sprintf("%s Near %s, a significant junction in %s.",
			desc, lc.LandmarkName, lc.Territory)
	}
}

func flavorByTheme(kind entities.POIKind, theme string, lc *LocalContext) string {
	landmark := "the wildlands"
	if lc != nil && lc.LandmarkName != "" {
		landmark = lc.LandmarkName
	}

	if strings.Contains(theme, "Conspiracy") || strings.Contains(theme, "Assassination") {
		switch kind {
		case entities.POICorpse:
			return fmt.Sprintf("A dead courier from %s, their throat slit by a professional blade. A hidden message is clutched in their hand.", landmark)
		case entities.POIPerson:
			return fmt.Sprintf("A nervous scout from %s who keeps checking over their shoulder. They seem to be looking for a collaborator.", landmark)
		case entities.POIItem:
			return fmt.Sprintf("A list of names dropped in the dirt near %s. Some names are crossed out in blood.", landmark)
		case entities.POIMonster:
			return fmt.Sprintf("A trained war-hound bearing the mark of a secret society, prowling near %s.", landmark)
		}
	}

	if strings.Contains(theme, "War") {
		switch kind {
		case entities.POICorpse:
			return fmt.Sprintf("A fallen soldier near %s, their armor stripped. They were part of a scouting party.", landmark)
		case entities.POIMonster:
			return fmt.Sprintf("A group of deserting mercenaries making camp near %s.", landmark)
		}
	}

	return fmt.Sprintf("A %s found in the area.", kind)
}
