package narrator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/orchestrators/narrator"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	"github.com/sagaforge/saga-api/internal/pkg/roller"
	"github.com/sagaforge/saga-api/internal/repositories/entity"
	questrepo "github.com/sagaforge/saga-api/internal/repositories/quest"
	"github.com/sagaforge/saga-api/internal/testutils"
	"github.com/sagaforge/saga-api/internal/workflow"
)

// cannedProvider speaks in fixed phrases.
type cannedProvider struct {
	intent    *entities.Intent
	narration string
}

func (p *cannedProvider) ResolveIntent(_ context.Context, _ string) (*entities.Intent, error) {
	return p.intent, nil
}

func (p *cannedProvider) Narrate(_ context.Context, _ *external.NarrativeRequest) (string, error) {
	return p.narration, nil
}

func (p *cannedProvider) Summarize(_ context.Context, _, _ string) (string, error) {
	return "a summary", nil
}

type NarratorOrchestratorSuite struct {
	suite.Suite
	registry *ecs.Registry
	memory   *external.MemoryManager
	quests   *campaign.QuestManager
	service  narrator.Service
	cleanup  func()
	ctx      context.Context
}

func TestNarratorOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(NarratorOrchestratorSuite))
}

func (s *NarratorOrchestratorSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()

	repo, err := entity.NewRedis(&entity.RedisConfig{Client: client})
	s.Require().NoError(err)

	registry, err := ecs.New(&ecs.Config{
		Repository:  repo,
		IDGenerator: idgen.NewSequential("ent_"),
	})
	s.Require().NoError(err)
	s.registry = registry

	provider := &cannedProvider{
		intent:    &entities.Intent{Action: entities.ActionSearch},
		narration: "The Oracle considers your words.",
	}

	memory, err := external.NewMemoryManager(&external.MemoryConfig{
		Provider:     provider,
		HistoryLimit: 5,
	})
	s.Require().NoError(err)
	s.memory = memory

	qrepo, err := questrepo.NewRedis(&questrepo.RedisConfig{Client: client})
	s.Require().NoError(err)
	quests, err := campaign.NewQuestManager(&campaign.QuestManagerConfig{
		Repository:  qrepo,
		IDGenerator: idgen.NewSequential("quest_"),
	})
	s.Require().NoError(err)
	s.quests = quests

	pipeline, err := workflow.New(&workflow.Config{
		Provider: provider,
		Registry: registry,
		Roller:   roller.NewSeeded(11),
		Memory:   memory,
		Quests:   quests,
	})
	s.Require().NoError(err)

	svc, err := narrator.NewOrchestrator(&narrator.Config{
		Pipeline: pipeline,
		Registry: registry,
		Memory:   memory,
		Quests:   quests,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *NarratorOrchestratorSuite) TearDownTest() {
	s.cleanup()
}

func (s *NarratorOrchestratorSuite) addPlayer() *entities.Entity {
	stats := entities.Stats{
		entities.AttrMight:    12,
		entities.AttrVitality: 12,
	}
	added, err := s.registry.AddEntity(s.ctx, &entities.Entity{
		ID:       "player_1",
		Type:     "character",
		Name:     "Burt",
		Position: &entities.Position{X: 500, Y: 500},
		Stats:    stats,
		Vitals:   entities.DeriveVitals(stats),
		Tags:     entities.NewTagSet("player"),
	})
	s.Require().NoError(err)
	return added
}

func (s *NarratorOrchestratorSuite) TestActionRunsFullTurn() {
	s.addPlayer()

	out, err := s.service.Action(s.ctx, &narrator.ActionInput{Message: "I search the ruins"})
	s.Require().NoError(err)

	s.Equal("The Oracle considers your words.", out.Narrative)
	s.Require().NotNil(out.Intent)
	s.Equal(entities.ActionSearch, out.Intent.Action)
	s.NotEmpty(out.MechanicsLog)
	s.Equal(1, s.memory.HistoryLen(), "the exchange lands in memory")
}

func (s *NarratorOrchestratorSuite) TestActionByExplicitPlayerID() {
	player := s.addPlayer()

	out, err := s.service.Action(s.ctx, &narrator.ActionInput{
		Message:  "I look around",
		PlayerID: player.ID,
	})
	s.Require().NoError(err)
	s.NotEmpty(out.Narrative)

	_, err = s.service.Action(s.ctx, &narrator.ActionInput{
		Message:  "I look around",
		PlayerID: "ghost",
	})
	s.Require().Error(err)
}

func (s *NarratorOrchestratorSuite) TestActionRequiresMessage() {
	_, err := s.service.Action(s.ctx, &narrator.ActionInput{Message: "   "})
	s.Require().Error(err)
}

func (s *NarratorOrchestratorSuite) TestActionWithoutPlayerLoaded() {
	_, err := s.service.Action(s.ctx, &narrator.ActionInput{Message: "hello"})
	s.Require().Error(err)
}

func (s *NarratorOrchestratorSuite) TestQuestsReflectQuestLog() {
	out, err := s.service.Quests(s.ctx, &narrator.QuestsInput{})
	s.Require().NoError(err)
	s.Empty(out.Quests)

	_, err = s.quests.AddQuest(s.ctx, &entities.Quest{
		Title:  "Clear the Mill",
		Status: entities.QuestActive,
	})
	s.Require().NoError(err)

	out, err = s.service.Quests(s.ctx, &narrator.QuestsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Quests, 1)
	s.Equal("Clear the Mill", out.Quests[0].Title)
}

func (s *NarratorOrchestratorSuite) TestStatusCountsContext() {
	s.addPlayer()

	status, err := s.service.Status(s.ctx, &narrator.StatusInput{})
	s.Require().NoError(err)
	s.True(status.Ready)
	s.Zero(status.HistoryLen)

	_, err = s.service.Action(s.ctx, &narrator.ActionInput{Message: "I search"})
	s.Require().NoError(err)

	status, err = s.service.Status(s.ctx, &narrator.StatusInput{})
	s.Require().NoError(err)
	s.Equal(1, status.HistoryLen)
}
