package campaign

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	redisclient "github.com/sagaforge/saga-api/internal/redis"
)

const (
	campaignKeyPrefix = "campaign:"
	activeKey         = "campaign:active"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis campaign repository.
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

// NewRedis creates a new Redis-backed campaign repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Campaign == nil {
		return nil, errors.InvalidArgument("campaign cannot be nil")
	}
	if input.Campaign.ID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	data, err := json.Marshal(input.Campaign)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal campaign %s", input.Campaign.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, campaignKeyPrefix+input.Campaign.ID, data, 0)
	pipe.Set(ctx, activeKey, input.Campaign.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save campaign %s", input.Campaign.ID)
	}

	return &SaveOutput{Campaign: input.Campaign}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	result, err := r.client.Get(ctx, campaignKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("campaign %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get campaign %s", input.ID)
	}

	var c entities.Campaign
	if err := json.Unmarshal([]byte(result), &c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal campaign %s", input.ID)
	}

	return &GetOutput{Campaign: &c}, nil
}

func (r *redisRepository) GetActive(ctx context.Context, _ GetActiveInput) (*GetActiveOutput, error) {
	id, err := r.client.Get(ctx, activeKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("no active campaign")
		}
		return nil, errors.Wrapf(err, "failed to read active campaign pointer")
	}

	getOutput, err := r.Get(ctx, GetInput{ID: id})
	if err != nil {
		return nil, err
	}

	return &GetActiveOutput{Campaign: getOutput.Campaign}, nil
}
