package campaign_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/campaign"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	"github.com/sagaforge/saga-api/internal/pkg/roller"
	campaignrepo "github.com/sagaforge/saga-api/internal/repositories/campaign"
	questrepo "github.com/sagaforge/saga-api/internal/repositories/quest"
	"github.com/sagaforge/saga-api/internal/testutils"
	"github.com/sagaforge/saga-api/internal/world"
)

type GeneratorTestSuite struct {
	suite.Suite
	gen     *campaign.Generator
	repo    campaignrepo.Repository
	cleanup func()
	ctx     context.Context
}

func (s *GeneratorTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := campaignrepo.NewRedis(&campaignrepo.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo

	capital := &entities.WorldNode{ID: "capital", Name: "Highkeep", X: 500, Y: 500}
	capital.SetMetric("wealth", 5000)
	capital.SetMetric("infra", 0.8)
	graph := world.NewGraph([]*entities.WorldNode{capital})

	source, err := campaign.NewGraphContext(graph)
	s.Require().NoError(err)

	gen, err := campaign.New(&campaign.Config{
		Repository: repo,
		Context:    source,
		Rand:       roller.NewSeeded(42),
	})
	s.Require().NoError(err)
	s.gen = gen

	s.ctx = context.Background()
}

func (s *GeneratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *GeneratorTestSuite) TestCreateCampaignBootstrap() {
	c, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric the Bold", "")
	s.Require().NoError(err)

	s.Require().Len(c.PlotPoints, campaign.StageCount)

	stages := make(map[string]struct{})
	for _, pp := range c.PlotPoints {
		stages[pp.StageName] = struct{}{}
		s.True(pp.IsMajor)
		s.Require().Len(pp.Quests, 1)
		s.Equal(entities.QuestActive, pp.Quests[0].Status)
		s.GreaterOrEqual(pp.X, 100)
		s.LessOrEqual(pp.X, 900)
	}
	s.Len(stages, campaign.StageCount, "every stage name is distinct")

	s.GreaterOrEqual(len(c.POIs), 3, "the first path segment is seeded")

	// Stage-to-kind mapping is fixed.
	s.Equal(entities.QuestSocial, c.PlotPoints[0].Quests[0].Kind)
	s.Equal(entities.QuestHostile, c.PlotPoints[7].Quests[0].Kind)
	s.Equal(entities.QuestPuzzle, c.PlotPoints[8].Quests[0].Kind)
	s.Equal(entities.QuestExploration, c.PlotPoints[9].Quests[0].Kind)
}

func (s *GeneratorTestSuite) TestCreateCampaignValidation() {
	_, err := s.gen.CreateCampaign(s.ctx, "", "Alaric", "")
	s.Error(err)

	_, err = s.gen.CreateCampaign(s.ctx, "camp_1", "", "")
	s.Error(err)
}

func (s *GeneratorTestSuite) TestCampaignPersistsAsActive() {
	created, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "")
	s.Require().NoError(err)

	out, err := s.repo.GetActive(s.ctx, campaignrepo.GetActiveInput{})
	s.Require().NoError(err)
	s.Equal(created.ID, out.Campaign.ID)
	s.Len(out.Campaign.PlotPoints, campaign.StageCount)
}

func (s *GeneratorTestSuite) TestTriggerSideQuestKinds() {
	c, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "")
	s.Require().NoError(err)

	c.POIs = append(c.POIs,
		entities.POI{ID: "poi_m", Kind: entities.POIMonster, Description: "a beast", X: 400, Y: 400},
		entities.POI{ID: "poi_c", Kind: entities.POICorpse, Description: "a body", X: 410, Y: 400},
		entities.POI{ID: "poi_p", Kind: entities.POIPerson, Description: "a stranger", X: 420, Y: 400},
		entities.POI{ID: "poi_i", Kind: entities.POIItem, Description: "a trinket", X: 430, Y: 400},
		entities.POI{ID: "poi_l", Kind: entities.POILandmark, Description: "a cairn", X: 440, Y: 400},
	)

	cases := map[string]entities.QuestKind{
		"poi_m": entities.QuestHunt,
		"poi_c": entities.QuestRevenge,
		"poi_p": entities.QuestSocial,
		"poi_i": entities.QuestPuzzle,
		"poi_l": entities.QuestExploration,
	}
	for poiID, want := range cases {
		step, err := s.gen.TriggerSideQuest(s.ctx, poiID)
		s.Require().NoError(err, "poi %s", poiID)
		s.Equal(want, step.Kind, "poi %s", poiID)
		s.True(c.FindPOI(poiID).Discovered)
	}

	quests := c.CurrentPlotPoint().Quests
	s.Len(quests, 1+len(cases), "side quests attach to the current plot point")
}

func (s *GeneratorTestSuite) TestTriggerSideQuestUnknownPOI() {
	_, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "")
	s.Require().NoError(err)

	_, err = s.gen.TriggerSideQuest(s.ctx, "poi_missing")
	s.Error(err)
}

func (s *GeneratorTestSuite) TestGenerateLocalSeeds() {
	c, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "Assassination Conspiracy")
	s.Require().NoError(err)

	before := len(c.POIs)
	added, err := s.gen.GenerateLocalSeeds(s.ctx, 500, 500)
	s.Require().NoError(err)
	s.Equal(2, added)
	s.Len(c.POIs, before+2)
}

func (s *GeneratorTestSuite) TestLocalSeedsStopAtFinalStage() {
	c, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "")
	s.Require().NoError(err)

	c.CurrentStepIndex = campaign.StageCount - 1
	added, err := s.gen.GenerateLocalSeeds(s.ctx, 500, 500)
	s.Require().NoError(err)
	s.Zero(added)
}

func (s *GeneratorTestSuite) TestAdvancePlot() {
	c, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "")
	s.Require().NoError(err)

	s.Require().NoError(s.gen.AdvancePlot(s.ctx))
	s.True(c.PlotPoints[0].Completed)
	s.Equal(1, c.CurrentStepIndex)

	obj := s.gen.CurrentObjective()
	s.Require().NotNil(obj)
	s.Equal("q_main_1", obj.StepID)
}

func (s *GeneratorTestSuite) TestLoadRestoresActive() {
	created, err := s.gen.CreateCampaign(s.ctx, "camp_1", "Alaric", "")
	s.Require().NoError(err)

	loaded, err := s.gen.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(created.ID, loaded.ID)
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

type QuestManagerTestSuite struct {
	suite.Suite
	manager *campaign.QuestManager
	repo    questrepo.Repository
	cleanup func()
	ctx     context.Context
}

func (s *QuestManagerTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := questrepo.NewRedis(&questrepo.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo

	manager, err := campaign.NewQuestManager(&campaign.QuestManagerConfig{
		Repository:  repo,
		IDGenerator: idgen.NewSequential("quest_"),
	})
	s.Require().NoError(err)
	s.manager = manager

	s.ctx = context.Background()
}

func (s *QuestManagerTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *QuestManagerTestSuite) huntQuest() *entities.Quest {
	return &entities.Quest{
		Title:       "Cull the Vermin",
		Description: "The cellars crawl with rats.",
		Objectives: []entities.QuestObjective{
			{Slug: "kill_rat", Description: "Slay 3 rats", TargetCount: 3},
			{Slug: "report_back", Description: "Report to the steward", TargetCount: 1},
		},
	}
}

func (s *QuestManagerTestSuite) TestAddQuestGeneratesID() {
	q, err := s.manager.AddQuest(s.ctx, s.huntQuest())
	s.Require().NoError(err)
	s.NotEmpty(q.ID)
	s.Equal(entities.QuestActive, q.Status)

	got, err := s.repo.Get(s.ctx, questrepo.GetInput{ID: q.ID})
	s.Require().NoError(err)
	s.Equal(q.Title, got.Quest.Title)
}

func (s *QuestManagerTestSuite) TestUpdateObjectiveProgressAndCompletion() {
	q, err := s.manager.AddQuest(s.ctx, s.huntQuest())
	s.Require().NoError(err)

	s.Empty(s.manager.UpdateObjective(s.ctx, "kill_rat", 2), "partial progress is silent")
	s.Equal(2, q.Objectives[0].CurrentCount)

	notices := s.manager.UpdateObjective(s.ctx, "kill_rat", 1)
	s.Require().Len(notices, 1)
	s.Contains(notices[0], "Objective Complete")
	s.Equal(entities.QuestActive, q.Status, "one open objective remains")

	notices = s.manager.UpdateObjective(s.ctx, "report_back", 1)
	s.Require().Len(notices, 2)
	s.Contains(notices[1], "QUEST COMPLETE")
	s.Equal(entities.QuestCompleted, q.Status)
}

func (s *QuestManagerTestSuite) TestUpdateObjectiveZeroDeltaNoop() {
	q, err := s.manager.AddQuest(s.ctx, s.huntQuest())
	s.Require().NoError(err)

	s.Empty(s.manager.UpdateObjective(s.ctx, "kill_rat", 0))
	s.Equal(0, q.Objectives[0].CurrentCount)
}

func (s *QuestManagerTestSuite) TestUpdateObjectiveSkipsCompletedQuests() {
	q, err := s.manager.AddQuest(s.ctx, s.huntQuest())
	s.Require().NoError(err)
	q.Status = entities.QuestCompleted

	s.Empty(s.manager.UpdateObjective(s.ctx, "kill_rat", 3))
	s.Equal(0, q.Objectives[0].CurrentCount)
}

func (s *QuestManagerTestSuite) TestActiveQuestsAndLoad() {
	_, err := s.manager.AddQuest(s.ctx, s.huntQuest())
	s.Require().NoError(err)

	done := s.huntQuest()
	done.Title = "Old Business"
	doneQuest, err := s.manager.AddQuest(s.ctx, done)
	s.Require().NoError(err)
	doneQuest.Status = entities.QuestCompleted

	s.Len(s.manager.ActiveQuests(), 1)

	fresh, err := campaign.NewQuestManager(&campaign.QuestManagerConfig{
		Repository:  s.repo,
		IDGenerator: idgen.NewSequential("quest_"),
	})
	s.Require().NoError(err)

	count, err := fresh.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func TestQuestManagerSuite(t *testing.T) {
	suite.Run(t, new(QuestManagerTestSuite))
}
