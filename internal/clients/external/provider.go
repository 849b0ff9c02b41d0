// Package external holds the clients for everything outside the
// engine: the narrative generator, the lore retriever, and the rolling
// interaction memory built on top of them.
package external

//go:generate mockgen -destination=mock/mock_provider.go -package=externalmock github.com/sagaforge/saga-api/internal/clients/external NarrativeProvider,Retriever

import (
	"context"

	"github.com/sagaforge/saga-api/internal/entities"
)

// NarrativeRequest is the composite context handed to the narrative
// generator. Narrative output is free text and never mutates state.
type NarrativeRequest struct {
	PlayerInput  string
	Intent       *entities.Intent
	MechanicsLog []string
	Lore         []string
	History      string
	ActiveQuests []string
	ChaosLevel   float64
	Position     string
}

// NarrativeProvider defines the interface for the external text
// generator.
type NarrativeProvider interface {
	// ResolveIntent parses free-form player input into a structured
	// intent against the allowed action set
	ResolveIntent(ctx context.Context, input string) (*entities.Intent, error)

	// Narrate produces the player-facing prose for one resolved turn
	Narrate(ctx context.Context, req *NarrativeRequest) (string, error)

	// Summarize distills an interaction transcript into one dense
	// paragraph
	Summarize(ctx context.Context, existingSummary, transcript string) (string, error)
}

// LoreChunk is one retrieved lore document fragment.
type LoreChunk struct {
	ID       string
	Content  string
	Source   string
	Distance float64
}

// Retriever defines the interface for semantic lore lookup.
type Retriever interface {
	// Query returns the topK chunks most similar to the input text
	Query(ctx context.Context, text string, topK int) ([]LoreChunk, error)
}
