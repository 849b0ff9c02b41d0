package worldnode

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
	nodeKeyPrefix = "worldnode:"
	allIndexKey   = "worldnode:all"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis node repository.
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

// NewRedis creates a new Redis-backed world-node repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("node ID cannot be empty")
	}

	result, err := r.client.Get(ctx, nodeKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("node with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get node %s", input.ID)
	}

	var node entities.WorldNode
	if err := json.Unmarshal([]byte(result), &node); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal node %s", input.ID)
	}

	return &GetOutput{Node: &node}, nil
}

func (r *redisRepository) SyncNodes(ctx context.Context, input SyncNodesInput) (*SyncNodesOutput, error) {
	if len(input.Nodes) == 0 {
		return &SyncNodesOutput{}, nil
	}

	pipe := r.client.TxPipeline()
	count := 0
	for _, node := range input.Nodes {
		if node == nil || node.ID == "" {
			return nil, errors.InvalidArgument("nodes must be non-nil with IDs")
		}
		data, err := json.Marshal(node)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal node %s", node.ID)
		}
		pipe.Set(ctx, nodeKeyPrefix+node.ID, data, 0)
		pipe.SAdd(ctx, allIndexKey, node.ID)
		count++
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to sync %d nodes", count)
	}

	slog.DebugContext(ctx, "synced world nodes", "count", count)
	return &SyncNodesOutput{Count: count}, nil
}

func (r *redisRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	ids, err := r.client.SMembers(ctx, allIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read node index")
	}

	nodes := make([]*entities.WorldNode, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, allIndexKey, id)
				continue
			}
			return nil, err
		}
		nodes = append(nodes, getOutput.Node)
	}

	return &ListAllOutput{Nodes: nodes}, nil
}
