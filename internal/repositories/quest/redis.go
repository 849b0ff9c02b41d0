package quest

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	redisclient "github.com/sagaforge/saga-api/internal/redis"
)

const (
	questKeyPrefix = "quest:"
	allIndexKey    = "quest:all"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis quest repository.
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed quest repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Quest == nil {
		return nil, errors.InvalidArgument("quest cannot be nil")
	}
	if input.Quest.ID == "" {
		return nil, errors.InvalidArgument("quest ID cannot be empty")
	}

	data, err := json.Marshal(input.Quest)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal quest %s", input.Quest.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, questKeyPrefix+input.Quest.ID, data, 0)
	pipe.SAdd(ctx, allIndexKey, input.Quest.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save quest %s", input.Quest.ID)
	}

	return &SaveOutput{Quest: input.Quest}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("quest ID cannot be empty")
	}

	result, err := r.client.Get(ctx, questKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("quest with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get quest %s", input.ID)
	}

	var q entities.Quest
	if err := json.Unmarshal([]byte(result), &q); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal quest %s", input.ID)
	}

	return &GetOutput{Quest: &q}, nil
}

func (r *redisRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	ids, err := r.client.SMembers(ctx, allIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read quest index")
	}

	quests := make([]*entities.Quest, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, allIndexKey, id)
				continue
			}
			return nil, err
		}
		quests = append(quests, getOutput.Quest)
	}

	return &ListAllOutput{Quests: quests}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("quest ID cannot be empty")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, questKeyPrefix+input.ID)
	pipe.SRem(ctx, allIndexKey, input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete quest %s", input.ID)
	}

	return &DeleteOutput{}, nil
}
