package entities

// QuestKind classifies the gameplay shape of a quest step.
type QuestKind string

// Quest kinds
const (
	QuestHostile     QuestKind = "Hostile"
	QuestSocial      QuestKind = "Social"
	QuestPuzzle      QuestKind = "Puzzle"
	QuestHunt        QuestKind = "Hunt"
	QuestRevenge     QuestKind = "Revenge"
	QuestExploration QuestKind = "Exploration"
)

// QuestStep is a single task attached to a plot point.
type QuestStep struct {
	StepID           string      `json:"step_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Kind             QuestKind   `json:"kind"`
	Status           QuestStatus `json:"status"`
	TargetLocationID string      `json:"target_location_id,omitempty"`
	TargetNPCID      string      `json:"target_npc_id,omitempty"`
}

// PlotPoint is one stage of the twelve-step campaign arc.
type PlotPoint struct {
	ID          string      `json:"id"`
	StageName   string      `json:"stage_name"`
	Description string      `json:"description"`
	X           int         `json:"x"`
	Y           int         `json:"y"`
	IsMajor     bool        `json:"is_major"`
	Quests      []QuestStep `json:"quests"`
	Completed   bool        `json:"completed"`
}

// POIKind classifies a seeded point of interest.
type POIKind string

// POI kinds
const (
	POIPerson   POIKind = "Person"
	POICorpse   POIKind = "Corpse"
	POIItem     POIKind = "Item"
	POIMonster  POIKind = "Hostile Monster"
	POILandmark POIKind = "Minor Landmark"
	POIDream    POIKind = "Ethereal Dream"
)

// POIKinds lists every kind, in a fixed order for deterministic picks.
var POIKinds = []POIKind{POIPerson, POICorpse, POIItem, POIMonster, POILandmark, POIDream}

// POI is a seeded map marker that may be promoted to a side quest.
type POI struct {
	ID          string  `json:"id"`
	Kind        POIKind `json:"kind"`
	Description string  `json:"description"`
	LocationID  string  `json:"location_id,omitempty"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Discovered  bool    `json:"discovered"`
}

// Campaign is the full hero's-journey state for one run.
type Campaign struct {
	ID               string                 `json:"campaign_id"`
	HeroName         string                 `json:"hero_name"`
	Theme            string                 `json:"theme"`
	CurrentStepIndex int                    `json:"current_step_index"`
	PlotPoints       []PlotPoint            `json:"plot_points"`
	POIs             []POI                  `json:"pois"`
	GlobalMeta       map[string]interface{} `json:"global_meta,omitempty"`
}

// CurrentPlotPoint returns the active plot point, nil past the end.
func (c *Campaign) CurrentPlotPoint() *PlotPoint {
	if c.CurrentStepIndex < 0 || c.CurrentStepIndex >= len(c.PlotPoints) {
		return nil
	}
	return &c.PlotPoints[c.CurrentStepIndex]
}

// FindPOI returns the POI with the given id, nil when absent.
func (c *Campaign) FindPOI(id string) *POI {
	for i := range c.POIs {
		if c.POIs[i].ID == id {
			return &c.POIs[i]
		}
	}
	return nil
}
