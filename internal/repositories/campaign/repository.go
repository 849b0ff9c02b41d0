// Package campaign provides persistence for the active campaign state
package campaign

//go:generate mockgen -destination=mock/mock_repository.go -package=campaignmock github.com/sagaforge/saga-api/internal/repositories/campaign Repository

import (
	"context"

	"github.com/sagaforge/saga-api/internal/entities"
)

// Repository defines the interface for campaign persistence. One
// campaign is active at a time; older campaigns remain addressable by id.
type Repository interface {
	// Save stores the campaign and marks it active
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves a campaign by ID
	// Returns errors.NotFound if the campaign doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetActive retrieves the currently active campaign
	// Returns errors.NotFound when no campaign is active
	GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error)
}

// SaveInput defines the input for saving a campaign
type SaveInput struct {
	Campaign *entities.Campaign
}

// SaveOutput defines the output for saving a campaign
type SaveOutput struct {
	Campaign *entities.Campaign
}

// GetInput defines the input for getting a campaign
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a campaign
type GetOutput struct {
	Campaign *entities.Campaign
}

// GetActiveInput defines the input for getting the active campaign
type GetActiveInput struct{}

// GetActiveOutput defines the output for getting the active campaign
type GetActiveOutput struct {
	Campaign *entities.Campaign
}
