package entity

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	redisclient "github.com/sagaforge/saga-api/internal/redis"
)

const (
	entityKeyPrefix  = "entity:"
	allIndexKey      = "entity:all"
	layerIndexPrefix = "entity:layer:"

	errEntityNil     = "entity cannot be nil"
	errEntityIDEmpty = "entity ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis entity repository.
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

// NewRedis creates a new Redis-backed entity repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Entity == nil {
		return nil, errors.InvalidArgument(errEntityNil)
	}
	if input.Entity.ID == "" {
		return nil, errors.InvalidArgument(errEntityIDEmpty)
	}

	key := entityKeyPrefix + input.Entity.ID

	// Fetch the previous row so a moved entity leaves its old layer index
	var previousLayer string
	result, err := r.client.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		// new row
	case err != nil:
		return nil, errors.Wrapf(err, "failed to check existing entity %s", input.Entity.ID)
	default:
		var existing entities.Entity
		if err := json.Unmarshal([]byte(result), &existing); err == nil {
			previousLayer = existing.LayerID
		}
	}

	data, err := json.Marshal(input.Entity)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal entity %s", input.Entity.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, allIndexKey, input.Entity.ID)

	if previousLayer != input.Entity.LayerID {
		if previousLayer != "" {
			pipe.SRem(ctx, layerIndexPrefix+previousLayer, input.Entity.ID)
		}
		if input.Entity.LayerID != "" {
			pipe.SAdd(ctx, layerIndexPrefix+input.Entity.LayerID, input.Entity.ID)
		}
	} else if input.Entity.LayerID != "" {
		pipe.SAdd(ctx, layerIndexPrefix+input.Entity.LayerID, input.Entity.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save entity %s", input.Entity.ID)
	}

	return &SaveOutput{Entity: input.Entity}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errEntityIDEmpty)
	}

	result, err := r.client.Get(ctx, entityKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("entity with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get entity %s", input.ID)
	}

	var ent entities.Entity
	if err := json.Unmarshal([]byte(result), &ent); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal entity %s", input.ID)
	}

	return &GetOutput{Entity: &ent}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errEntityIDEmpty)
	}

	getOutput, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, entityKeyPrefix+input.ID)
	pipe.SRem(ctx, allIndexKey, input.ID)
	if getOutput.Entity.LayerID != "" {
		pipe.SRem(ctx, layerIndexPrefix+getOutput.Entity.LayerID, input.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete entity %s", input.ID)
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	list, err := r.listByIndex(ctx, allIndexKey)
	if err != nil {
		return nil, err
	}
	return &ListAllOutput{Entities: list}, nil
}

func (r *redisRepository) ListByLayer(ctx context.Context, input ListByLayerInput) (*ListByLayerOutput, error) {
	if input.LayerID == "" {
		return nil, errors.InvalidArgument("layer ID cannot be empty")
	}

	list, err := r.listByIndex(ctx, layerIndexPrefix+input.LayerID)
	if err != nil {
		return nil, err
	}
	return &ListByLayerOutput{Entities: list}, nil
}

func (r *redisRepository) listByIndex(ctx context.Context, indexKey string) ([]*entities.Entity, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", indexKey)
	}

	list := make([]*entities.Entity, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "entity missing, cleaning up index",
					"entity_id", id,
					"index_key", indexKey)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, err
		}
		list = append(list, getOutput.Entity)
	}

	return list, nil
}
