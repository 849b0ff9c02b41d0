// Package worldnode provides the interface for world-graph node persistence
package worldnode

//go:generate mockgen -destination=mock/mock_repository.go -package=worldnodemock github.com/sagaforge/saga-api/internal/repositories/worldnode Repository

import (
	"context"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Repository defines the interface for world-graph node persistence
type Repository interface {
	// Get retrieves a node by ID
	// Returns errors.NotFound if the node doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// SyncNodes batch-upserts nodes. Idempotent by id; a failed batch
	// may leave some rows updated and can simply be re-run.
	SyncNodes(ctx context.Context, input SyncNodesInput) (*SyncNodesOutput, error)

	// ListAll returns every stored node in unspecified order
	ListAll(ctx context.Context, input ListAllInput) (*ListAllOutput, error)
}

// GetInput defines the input for getting a node
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a node
type GetOutput struct {
	Node *entities.WorldNode
}

// SyncNodesInput defines the input for batch-upserting nodes
type SyncNodesInput struct {
	Nodes []*entities.WorldNode
}

// SyncNodesOutput defines the output for batch-upserting nodes
type SyncNodesOutput struct {
	Count int
}

// ListAllInput defines the input for listing all nodes
type ListAllInput struct{}

// ListAllOutput defines the output for listing all nodes
type ListAllOutput struct {
	Nodes []*entities.WorldNode
}
