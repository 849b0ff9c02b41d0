package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
)

// NarrativeNode asks the external generator for the player-facing
// prose. Narrative is strictly downstream of mechanics: a timeout or
// provider failure leaves the narrative empty and the turn returns on
// its mechanical log alone.
type NarrativeNode struct {
	provider external.NarrativeProvider
	quests   *campaign.QuestManager
}

// NewNarrativeNode builds the narrative node. The quest manager is
// optional and only feeds quest titles into the prompt context.
func NewNarrativeNode(provider external.NarrativeProvider, quests *campaign.QuestManager) *NarrativeNode {
	return &NarrativeNode{provider: provider, quests: quests}
}

// Name implements Node.
func (n *NarrativeNode) Name() string { return "narrative" }

// Run implements Node.
func (n *NarrativeNode) Run(ctx context.Context, state *GraphState) error {
	req := &external.NarrativeRequest{
		PlayerInput:  state.Input,
		Intent:       state.Intent,
		MechanicsLog: state.MechanicalLog,
		Lore:         state.Lore,
		History:      state.History,
		ChaosLevel:   state.ChaosLevel,
	}
	if state.Player != nil && state.Player.Position != nil {
		req.Position = fmt.Sprintf("(%d, %d)", state.Player.Position.X, state.Player.Position.Y)
	}
	if n.quests != nil {
		for _, q := range n.quests.ActiveQuests() {
			req.ActiveQuests = append(req.ActiveQuests, q.Title)
		}
	}

	text, err := n.provider.Narrate(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "narrative generation failed, returning mechanics only",
			"error", err,
		)
		return nil
	}
	state.Narrative = text
	return nil
}
