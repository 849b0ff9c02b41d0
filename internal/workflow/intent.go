package workflow

import (
	"context"
	"log/slog"

	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/entities"
)

// IntentNode parses free-form player input into a structured intent.
// Parse failures degrade to the fallback intent rather than breaking
// the chain; a confused turn still produces a narrative.
type IntentNode struct {
	provider external.NarrativeProvider
}

// NewIntentNode builds the intent parsing node.
func NewIntentNode(provider external.NarrativeProvider) *IntentNode {
	return &IntentNode{provider: provider}
}

// Name implements Node.
func (n *IntentNode) Name() string { return "intent" }

// Run implements Node. A pre-resolved intent on the state skips the
// provider call entirely.
func (n *IntentNode) Run(ctx context.Context, state *GraphState) error {
	if state.Intent != nil {
		return nil
	}

	intent, err := n.provider.ResolveIntent(ctx, state.Input)
	if err != nil {
		slog.WarnContext(ctx, "intent resolution failed, falling back",
			"input", state.Input,
			"error", err,
		)
		state.Intent = entities.FallbackIntent()
		return nil
	}

	state.Intent = intent
	return nil
}
