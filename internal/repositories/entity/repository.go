// Package entity provides the interface for entity persistence
package entity

//go:generate mockgen -destination=mock/mock_repository.go -package=entitymock github.com/sagaforge/saga-api/internal/repositories/entity Repository

import (
	"context"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Repository defines the interface for entity persistence. Save is an
// upsert: the row is replaced wholesale so the ECS mirror stays
// idempotent by id.
type Repository interface {
	// Save creates or replaces an entity row
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves an entity by ID
	// Returns errors.NotFound if the entity doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes an entity row and its index entries
	// Returns errors.NotFound if the entity doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListAll returns every stored entity in unspecified order.
	// A single pass suffices to rebuild the ECS.
	ListAll(ctx context.Context, input ListAllInput) (*ListAllOutput, error)

	// ListByLayer returns entities bound to a hierarchy layer
	ListByLayer(ctx context.Context, input ListByLayerInput) (*ListByLayerOutput, error)
}

// SaveInput defines the input for saving an entity
type SaveInput struct {
	Entity *entities.Entity
}

// SaveOutput defines the output for saving an entity
type SaveOutput struct {
	Entity *entities.Entity
}

// GetInput defines the input for getting an entity
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an entity
type GetOutput struct {
	Entity *entities.Entity
}

// DeleteInput defines the input for deleting an entity
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an entity
type DeleteOutput struct{}

// ListAllInput defines the input for listing all entities
type ListAllInput struct{}

// ListAllOutput defines the output for listing all entities
type ListAllOutput struct {
	Entities []*entities.Entity
}

// ListByLayerInput defines the input for listing entities by layer
type ListByLayerInput struct {
	LayerID string
}

// ListByLayerOutput defines the output for listing entities by layer
type ListByLayerOutput struct {
	Entities []*entities.Entity
}
