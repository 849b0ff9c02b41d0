package workflow

import (
	"context"
	"log/slog"
)

// Node is one processing step in the turn pipeline.
type Node interface {
	Name() string
	Run(ctx context.Context, state *GraphState) error
}

// Runtime executes nodes in registration order. The chain is linear:
// a node that returns an error stops the run, and the final state
// still carries everything produced up to that point.
type Runtime struct {
	nodes []Node
}

// NewRuntime builds a runtime over the given nodes.
func NewRuntime(nodes ...Node) *Runtime {
	return &Runtime{nodes: nodes}
}

// AddNode appends a node to the chain.
func (r *Runtime) AddNode(n Node) {
	r.nodes = append(r.nodes, n)
}

// Execute runs the chain over the state and returns it.
func (r *Runtime) Execute(ctx context.Context, state *GraphState) *GraphState {
	for _, n := range r.nodes {
		slog.DebugContext(ctx, "workflow node starting", "node", n.Name())
		if err := n.Run(ctx, state); err != nil {
			state.Err = err.Error()
			slog.ErrorContext(ctx, "workflow node failed",
				"node", n.Name(),
				"error", err,
			)
			break
		}
	}
	return state
}
