package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/pkg/idgen"
	questrepo "github.com/sagaforge/saga-api/internal/repositories/quest"
)

// QuestManager tracks objective-counted quests independent of the
// campaign arc and persists them through the quest repository.
type QuestManager struct {
	repo   questrepo.Repository
	idGen  idgen.Generator
	quests map[string]*entities.Quest
}

// QuestManagerConfig holds the QuestManager dependencies.
type QuestManagerConfig struct {
	Repository  questrepo.Repository
	IDGenerator idgen.Generator
}

// Validate validates the QuestManagerConfig.
func (cfg *QuestManagerConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Repository == nil {
		return errors.InvalidArgument("repository cannot be nil")
	}
	if cfg.IDGenerator == nil {
		return errors.InvalidArgument("id generator cannot be nil")
	}
	return nil
}

// NewQuestManager creates a QuestManager.
func NewQuestManager(cfg *QuestManagerConfig) (*QuestManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &QuestManager{
		repo:   cfg.Repository,
		idGen:  cfg.IDGenerator,
		quests: make(map[string]*entities.Quest),
	}, nil
}

// AddQuest registers a quest, generating an id when absent, and
// persists it.
func (m *QuestManager) AddQuest(ctx context.Context, q *entities.Quest) (*entities.Quest, error) {
	if q == nil {
		return nil, errors.InvalidArgument("quest cannot be nil")
	}
	if q.Title == "" {
		return nil, errors.InvalidArgument("quest title is required")
	}
	if q.ID == "" {
		q.ID = m.idGen.Generate()
	}
	if q.Status == "" {
		q.Status = entities.QuestActive
	}

	m.quests[q.ID] = q
	if _, err := m.repo.Save(ctx, questrepo.SaveInput{Quest: q}); err != nil {
		return nil, errors.Wrapf(err, "failed to save quest %s", q.ID)
	}

	slog.InfoContext(ctx, "quest added", "quest_id", q.ID, "title", q.Title)
	return q, nil
}

// UpdateObjective advances every active objective matching slug and
// returns completion notices. A zero delta is a no-op.
func (m *QuestManager) UpdateObjective(ctx context.Context, slug string, delta int) []string {
	if slug == "" || delta == 0 {
		return nil
	}

	var notices []string
	for _, q := range m.sorted() {
		if q.Status != entities.QuestActive {
			continue
		}
		touched := false
		for i := range q.Objectives {
			obj := &q.Objectives[i]
			if obj.Slug != slug {
				continue
			}
			touched = true
			if obj.Advance(delta) {
				notices = append(notices, fmt.Sprintf("Objective Complete: %s", obj.Description))
				if q.CheckCompletion() {
					notices = append(notices, fmt.Sprintf("QUEST COMPLETE: %s", q.Title))
				}
			}
		}
		if touched {
			if _, err := m.repo.Save(ctx, questrepo.SaveInput{Quest: q}); err != nil {
				slog.WarnContext(ctx, "failed to persist quest progress",
					"quest_id", q.ID,
					"error", err,
				)
			}
		}
	}
	return notices
}

// ActiveQuests returns active quests in id order.
func (m *QuestManager) ActiveQuests() []*entities.Quest {
	var out []*entities.Quest
	for _, q := range m.sorted() {
		if q.Status == entities.QuestActive {
			out = append(out, q)
		}
	}
	return out
}

// Quest returns a tracked quest by id.
func (m *QuestManager) Quest(id string) (*entities.Quest, bool) {
	q, ok := m.quests[id]
	return q, ok
}

// Load replaces the tracked set with every persisted quest.
func (m *QuestManager) Load(ctx context.Context) (int, error) {
	out, err := m.repo.ListAll(ctx, questrepo.ListAllInput{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to list quests")
	}
	m.quests = make(map[string]*entities.Quest, len(out.Quests))
	for _, q := range out.Quests {
		m.quests[q.ID] = q
	}
	slog.InfoContext(ctx, "quests loaded", "count", len(m.quests))
	return len(m.quests), nil
}

func (m *QuestManager) sorted() []*entities.Quest {
	out := make([]*entities.Quest, 0, len(m.quests))
	for _, q := range m.quests {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
