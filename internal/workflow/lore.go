package workflow

import (
	"context"
	"log/slog"

	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/errors"
)

// DefaultLoreTopK is how many lore chunks one turn retrieves.
const DefaultLoreTopK = 3

// LoreNode gathers context for the narrative generator: semantic lore
// matches for the raw input plus the rolling interaction history.
// Retrieval failures degrade to an empty lore section; the turn
// proceeds on mechanics alone.
type LoreNode struct {
	retriever external.Retriever
	memory    *external.MemoryManager
	topK      int
}

// NewLoreNode builds the retrieval node. Both dependencies are
// optional; a nil retriever or memory manager skips that source.
func NewLoreNode(retriever external.Retriever, memory *external.MemoryManager, topK int) *LoreNode {
	if topK <= 0 {
		topK = DefaultLoreTopK
	}
	return &LoreNode{retriever: retriever, memory: memory, topK: topK}
}

// Name implements Node.
func (n *LoreNode) Name() string { return "lore" }

// Run implements Node.
func (n *LoreNode) Run(ctx context.Context, state *GraphState) error {
	if n.retriever != nil {
		chunks, err := n.retriever.Query(ctx, state.Input, n.topK)
		if err != nil {
			logFn := slog.ErrorContext
			if errors.IsTransient(err) {
				logFn = slog.WarnContext
			}
			logFn(ctx, "lore retrieval failed, continuing without",
				"input", state.Input,
				"error", err,
			)
		}
		for _, c := range chunks {
			state.Lore = append(state.Lore, c.Content)
		}
	}

	if n.memory != nil {
		state.History = n.memory.FullContext()
	}
	return nil
}
