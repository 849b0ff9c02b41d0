// Package workflow runs a player input through the turn pipeline:
// intent parsing, lore retrieval, mechanical resolution, narrative
// generation. The pipeline is a linear chain over one shared state;
// mechanics always resolve before any narrative text is requested.
package workflow

import (
	"github.com/sagaforge/saga-api/internal/entities"
)

// GraphState is the shared state threaded through the pipeline nodes.
// Each node reads what earlier nodes produced and writes its own
// section; nothing is mutated after the chain finishes.
type GraphState struct {
	// Inputs
	Input      string
	Player     *entities.Entity
	ChaosLevel float64

	// Intermediate products
	Intent  *entities.Intent
	Lore    []string
	History string

	// Mechanical outcome. Deterministic given the same intent and
	// engine state.
	MechanicalLog []string
	Updates       []entities.VisualUpdate
	QuestNotices  []string

	// Final output. Narrative is free text and never feeds back into
	// game state.
	Narrative string
	Err       string
}

// Failed reports whether a node broke the chain.
func (s *GraphState) Failed() bool {
	return s.Err != ""
}
