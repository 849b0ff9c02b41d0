// Package narrator exposes the turn pipeline as a service: one player
// utterance in, one narrated turn out.
package narrator

//go:generate mockgen -destination=mock/mock_service.go -package=mocknarrator github.com/sagaforge/saga-api/internal/orchestrators/narrator Service

import (
	"context"
	"sort"
	"strings"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/workflow"
)

// Service resolves narrated turns.
type Service interface {
	// Action runs one player input through the full turn pipeline.
	Action(ctx context.Context, input *ActionInput) (*ActionOutput, error)

	// Quests returns the quests currently in progress.
	Quests(ctx context.Context, input *QuestsInput) (*QuestsOutput, error)

	// Status reports whether the narrative stack is ready to serve.
	Status(ctx context.Context, input *StatusInput) (*StatusOutput, error)
}

// Config holds the narrator dependencies.
type Config struct {
	Pipeline *workflow.Pipeline
	Registry *ecs.Registry

	// Optional. Memory and Quests only feed the status probe and the
	// quest log; a nil value degrades those reads, not Action.
	Memory *external.MemoryManager
	Quests *campaign.QuestManager
}

// Validate checks required fields.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Pipeline == nil {
		vb.RequiredField("Pipeline")
	}
	if cfg.Registry == nil {
		vb.RequiredField("Registry")
	}
	return vb.Build()
}

type orchestrator struct {
	pipeline *workflow.Pipeline
	registry *ecs.Registry
	memory   *external.MemoryManager
	quests   *campaign.QuestManager
}

// NewOrchestrator creates a narrator orchestrator.
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &orchestrator{
		pipeline: cfg.Pipeline,
		registry: cfg.Registry,
		memory:   cfg.Memory,
		quests:   cfg.Quests,
	}, nil
}

// Action implements Service.
func (o *orchestrator) Action(ctx context.Context, input *ActionInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, errors.InvalidArgument("message is required")
	}

	player, err := o.player(input.PlayerID)
	if err != nil {
		return nil, err
	}

	state := o.pipeline.ProcessTurn(ctx, input.Message, player)
	if state.Failed() {
		return nil, errors.Internalf("turn pipeline: %s", state.Err)
	}

	return &ActionOutput{
		Narrative:    state.Narrative,
		Intent:       state.Intent,
		MechanicsLog: state.MechanicalLog,
		QuestNotices: state.QuestNotices,
		Updates:      state.Updates,
	}, nil
}

// Quests implements Service.
func (o *orchestrator) Quests(_ context.Context, _ *QuestsInput) (*QuestsOutput, error) {
	if o.quests == nil {
		return &QuestsOutput{}, nil
	}
	return &QuestsOutput{Quests: o.quests.ActiveQuests()}, nil
}

// Status implements Service.
func (o *orchestrator) Status(_ context.Context, _ *StatusInput) (*StatusOutput, error) {
	out := &StatusOutput{Ready: true}
	if o.memory != nil {
		out.HistoryLen = o.memory.HistoryLen()
	}
	if o.quests != nil {
		out.QuestsKnown = len(o.quests.ActiveQuests())
	}
	return out, nil
}

// player resolves the acting entity. With no explicit ID the first
// entity tagged "player" (by ID order) acts.
func (o *orchestrator) player(id string) (*entities.Entity, error) {
	if id != "" {
		e, ok := o.registry.GetEntity(id)
		if !ok {
			return nil, errors.NotFoundf("entity %s", id)
		}
		return e, nil
	}

	all := o.registry.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	for _, e := range all {
		if e.Tags.Has("player") {
			return e, nil
		}
	}
	return nil, errors.NotFound("no player entity is loaded")
}
