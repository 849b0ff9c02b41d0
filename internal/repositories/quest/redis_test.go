package quest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/repositories/quest"
	"github.com/sagaforge/saga-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    quest.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := quest.NewRedis(&quest.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) testQuest() *entities.Quest {
	return &entities.Quest{
		ID:          "quest_rats",
		Title:       "Cellar Trouble",
		Description: "Clear the rats out of the tavern cellar.",
		Status:      entities.QuestActive,
		Objectives: []entities.QuestObjective{
			{Slug: "kill_rats", Description: "Defeat the rats", TargetCount: 3},
		},
		Rewards: entities.QuestRewards{Gold: 25, XP: 50},
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetRoundTrip() {
	original := s.testQuest()

	_, err := s.repo.Save(s.ctx, quest.SaveInput{Quest: original})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, quest.GetInput{ID: original.ID})
	s.Require().NoError(err)

	s.Equal(original.ID, got.Quest.ID)
	s.Equal(original.Title, got.Quest.Title)
	s.Equal(original.Status, got.Quest.Status)
	s.Equal(original.Objectives, got.Quest.Objectives)
	s.Equal(original.Rewards, got.Quest.Rewards)
}

func (s *RedisRepositoryTestSuite) TestSaveReplacesExisting() {
	q := s.testQuest()
	_, err := s.repo.Save(s.ctx, quest.SaveInput{Quest: q})
	s.Require().NoError(err)

	q.Objectives[0].Advance(3)
	q.CheckCompletion()
	_, err = s.repo.Save(s.ctx, quest.SaveInput{Quest: q})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, quest.GetInput{ID: q.ID})
	s.Require().NoError(err)
	s.Equal(entities.QuestCompleted, got.Quest.Status)

	all, err := s.repo.ListAll(s.ctx, quest.ListAllInput{})
	s.Require().NoError(err)
	s.Len(all.Quests, 1)
}

func (s *RedisRepositoryTestSuite) TestSaveValidation() {
	s.Run("nil quest", func() {
		_, err := s.repo.Save(s.ctx, quest.SaveInput{Quest: nil})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("empty ID", func() {
		_, err := s.repo.Save(s.ctx, quest.SaveInput{Quest: &entities.Quest{Title: "untitled"}})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, quest.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDeleteRemovesRowAndIndex() {
	q := s.testQuest()
	_, err := s.repo.Save(s.ctx, quest.SaveInput{Quest: q})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, quest.DeleteInput{ID: q.ID})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, quest.GetInput{ID: q.ID})
	s.True(errors.IsNotFound(err))

	all, err := s.repo.ListAll(s.ctx, quest.ListAllInput{})
	s.Require().NoError(err)
	s.Empty(all.Quests)
}

func (s *RedisRepositoryTestSuite) TestListAllReturnsEverything() {
	for _, id := range []string{"a", "b", "c"} {
		q := s.testQuest()
		q.ID = "quest_" + id
		_, err := s.repo.Save(s.ctx, quest.SaveInput{Quest: q})
		s.Require().NoError(err)
	}

	all, err := s.repo.ListAll(s.ctx, quest.ListAllInput{})
	s.Require().NoError(err)
	s.Len(all.Quests, 3)
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
