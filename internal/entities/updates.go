package entities

// UpdateType tags a client-bound visual delta.
type UpdateType string

// Visual update types
const (
	UpdateHP            UpdateType = "UPDATE_HP"
	UpdateSP            UpdateType = "UPDATE_SP"
	UpdateMoveToken     UpdateType = "MOVE_TOKEN"
	UpdateMovePlayer    UpdateType = "MOVE_PLAYER"
	UpdateGrid          UpdateType = "GRID_UPDATE"
	UpdateShake         UpdateType = "SHAKE"
	UpdateFCT           UpdateType = "FCT"
	UpdateActionStart   UpdateType = "ACTION_START"
	UpdateDestroyEntity UpdateType = "DESTROY_ENTITY"
	UpdateSpawnLoot     UpdateType = "SPAWN_LOOT"
	UpdateDamageAOE     UpdateType = "DAMAGE_AOE"
	UpdatePlayAnimation UpdateType = "PLAY_ANIMATION"
	UpdateSocialDamage  UpdateType = "SOCIAL_DMG"
)

// FCT styles
const (
	FCTStyleCrit  = "crit"
	FCTStyleDmg   = "dmg"
	FCTStyleMiss  = "miss"
	FCTStyleReact = "react"
)

// VisualUpdate is one client delta: a type tag plus a free payload.
type VisualUpdate struct {
	Type    UpdateType             `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// NewUpdate builds an update with the given payload fields.
func NewUpdate(t UpdateType, payload map[string]interface{}) VisualUpdate {
	return VisualUpdate{Type: t, Payload: payload}
}

// FCTUpdate builds a floating-combat-text delta anchored to an entity.
func FCTUpdate(entityID, text, style string) VisualUpdate {
	return VisualUpdate{Type: UpdateFCT, Payload: map[string]interface{}{
		"id":    entityID,
		"text":  text,
		"style": style,
	}}
}

// HPUpdate builds a hit-point delta.
func HPUpdate(entityID string, hp int) VisualUpdate {
	return VisualUpdate{Type: UpdateHP, Payload: map[string]interface{}{
		"id": entityID,
		"hp": hp,
	}}
}

// SPUpdate builds a stamina delta.
func SPUpdate(entityID string, sp int) VisualUpdate {
	return VisualUpdate{Type: UpdateSP, Payload: map[string]interface{}{
		"id": entityID,
		"sp": sp,
	}}
}

// MoveTokenUpdate builds a token movement delta.
func MoveTokenUpdate(entityID string, x, y int) VisualUpdate {
	return VisualUpdate{Type: UpdateMoveToken, Payload: map[string]interface{}{
		"id":  entityID,
		"pos": []int{x, y},
	}}
}

// AnimationUpdate builds an animation trigger delta.
func AnimationUpdate(name, target string) VisualUpdate {
	return VisualUpdate{Type: UpdatePlayAnimation, Payload: map[string]interface{}{
		"name":   name,
		"target": target,
	}}
}
