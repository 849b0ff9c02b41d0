package entities

// Action is a player intent verb.
type Action string

// The allowed action set.
const (
	ActionAttack   Action = "ATTACK"
	ActionMove     Action = "MOVE"
	ActionSearch   Action = "SEARCH"
	ActionTalk     Action = "TALK"
	ActionInteract Action = "INTERACT"
	ActionUse      Action = "USE"
	ActionRest     Action = "REST"
	ActionSkill    Action = "SKILL"
	ActionItem     Action = "ITEM"
)

// Actions lists every valid action verb.
var Actions = []Action{
	ActionAttack, ActionMove, ActionSearch, ActionTalk,
	ActionInteract, ActionUse, ActionRest, ActionSkill, ActionItem,
}

// Valid reports whether the verb is in the allowed set.
func (a Action) Valid() bool {
	for _, v := range Actions {
		if a == v {
			return true
		}
	}
	return false
}

// Intent is a structured player action resolved from natural language.
type Intent struct {
	Action          Action                 `json:"action"`
	Target          string                 `json:"target,omitempty"`
	ItemID          string                 `json:"item_id,omitempty"`
	SkillID         string                 `json:"skill_id,omitempty"`
	Parameters      map[string]interface{} `json:"parameters,omitempty"`
	NarrativeFlavor string                 `json:"narrative_flavor,omitempty"`
}

// FallbackIntent is what malformed input degrades to.
func FallbackIntent() *Intent {
	return &Intent{Action: ActionTalk, NarrativeFlavor: "confused"}
}

// IntParam reads an integer parameter, tolerating the float64 shape
// JSON decoding produces.
func (in *Intent) IntParam(name string) int {
	if in.Parameters == nil {
		return 0
	}
	switch v := in.Parameters[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
