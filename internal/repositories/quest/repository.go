// Package quest provides the interface for quest persistence
package quest

//go:generate mockgen -destination=mock/mock_repository.go -package=questmock github.com/sagaforge/saga-api/internal/repositories/quest Repository

import (
	"context"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Repository defines the interface for quest persistence
type Repository interface {
	// Save creates or replaces a quest row
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves a quest by ID
	// Returns errors.NotFound if the quest doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListAll returns every stored quest
	ListAll(ctx context.Context, input ListAllInput) (*ListAllOutput, error)

	// Delete removes a quest row
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// SaveInput defines the input for saving a quest
type SaveInput struct {
	Quest *entities.Quest
}

// SaveOutput defines the output for saving a quest
type SaveOutput struct {
	Quest *entities.Quest
}

// GetInput defines the input for getting a quest
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a quest
type GetOutput struct {
	Quest *entities.Quest
}

// ListAllInput defines the input for listing quests
type ListAllInput struct{}

// ListAllOutput defines the output for listing quests
type ListAllOutput struct {
	Quests []*entities.Quest
}

// DeleteInput defines the input for deleting a quest
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a quest
type DeleteOutput struct{}
