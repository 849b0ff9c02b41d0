package narrator

import (
	"github.com/sagaforge/saga-api/internal/entities"
)

// ActionInput is a raw player utterance. PlayerID is optional; when
// empty the orchestrator acts for the first entity tagged "player".
type ActionInput struct {
	Message  string
	PlayerID string
}

// ActionOutput is the full turn result: prose plus the mechanical
// trail the client needs to animate it.
type ActionOutput struct {
	Narrative     string
	Intent        *entities.Intent
	MechanicsLog  []string
	QuestNotices  []string
	Updates       []entities.VisualUpdate
	PartialFailed bool
}

// QuestsInput requests the active quest log.
type QuestsInput struct{}

// QuestsOutput carries the quests currently in progress.
type QuestsOutput struct {
	Quests []*entities.Quest
}

// StatusInput requests a liveness probe of the narrative stack.
type StatusInput struct{}

// StatusOutput reports which turn-pipeline dependencies are wired.
type StatusOutput struct {
	Ready       bool
	HistoryLen  int
	QuestsKnown int
}
