package hierarchy

import (
	"context"
	"encoding/json"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	redisclient "github.com/sagaforge/saga-api/internal/redis"
)

const (
	regionKeyPrefix    = "region:"
	regionIndexKey     = "region:all"
	zoneKeyPrefix      = "zone:"
	zoneRegionPrefix   = "zone:region:"
	playerMapKeyPrefix = "playermap:"
	playerMapZonePfx   = "playermap:zone:"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis hierarchy repository.
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

// NewRedis creates a new Redis-backed hierarchy repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) SaveRegion(ctx context.Context, input SaveRegionInput) (*SaveRegionOutput, error) {
	if input.Region == nil {
		return nil, errors.InvalidArgument("region cannot be nil")
	}

	data, err := json.Marshal(input.Region)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal region %d", input.Region.ID)
	}

	id := strconv.Itoa(input.Region.ID)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, regionKeyPrefix+id, data, 0)
	pipe.SAdd(ctx, regionIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save region %d", input.Region.ID)
	}

	return &SaveRegionOutput{Region: input.Region}, nil
}

func (r *redisRepository) GetRegion(ctx context.Context, input GetRegionInput) (*GetRegionOutput, error) {
	result, err := r.client.Get(ctx, regionKeyPrefix+strconv.Itoa(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("region %d not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get region %d", input.ID)
	}

	var region entities.GlobalRegion
	if err := json.Unmarshal([]byte(result), &region); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal region %d", input.ID)
	}

	return &GetRegionOutput{Region: &region}, nil
}

func (r *redisRepository) ListRegions(ctx context.Context, _ ListRegionsInput) (*ListRegionsOutput, error) {
	ids, err := r.client.SMembers(ctx, regionIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read region index")
	}

	regions := make([]*entities.GlobalRegion, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		getOutput, err := r.GetRegion(ctx, GetRegionInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, regionIndexKey, raw)
				continue
			}
			return nil, err
		}
		regions = append(regions, getOutput.Region)
	}

	return &ListRegionsOutput{Regions: regions}, nil
}

func (r *redisRepository) SaveZone(ctx context.Context, input SaveZoneInput) (*SaveZoneOutput, error) {
	if input.Zone == nil || input.Zone.ID == "" {
		return nil, errors.InvalidArgument("zone must be non-nil with an ID")
	}

	data, err := json.Marshal(input.Zone)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal zone %s", input.Zone.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, zoneKeyPrefix+input.Zone.ID, data, 0)
	pipe.SAdd(ctx, zoneRegionPrefix+strconv.Itoa(input.Zone.GlobalRegionID), input.Zone.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save zone %s", input.Zone.ID)
	}

	return &SaveZoneOutput{Zone: input.Zone}, nil
}

func (r *redisRepository) GetZone(ctx context.Context, input GetZoneInput) (*GetZoneOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("zone ID cannot be empty")
	}

	result, err := r.client.Get(ctx, zoneKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("zone %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get zone %s", input.ID)
	}

	var zone entities.LocalZone
	if err := json.Unmarshal([]byte(result), &zone); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal zone %s", input.ID)
	}

	return &GetZoneOutput{Zone: &zone}, nil
}

func (r *redisRepository) ListZonesByRegion(ctx context.Context, input ListZonesByRegionInput) (*ListZonesByRegionOutput, error) {
	ids, err := r.client.SMembers(ctx, zoneRegionPrefix+strconv.Itoa(input.RegionID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read zone index for region %d", input.RegionID)
	}

	zones := make([]*entities.LocalZone, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.GetZone(ctx, GetZoneInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, zoneRegionPrefix+strconv.Itoa(input.RegionID), id)
				continue
			}
			return nil, err
		}
		zones = append(zones, getOutput.Zone)
	}

	return &ListZonesByRegionOutput{Zones: zones}, nil
}

func (r *redisRepository) SavePlayerMap(ctx context.Context, input SavePlayerMapInput) (*SavePlayerMapOutput, error) {
	if input.PlayerMap == nil || input.PlayerMap.ID == "" {
		return nil, errors.InvalidArgument("player map must be non-nil with an ID")
	}

	data, err := json.Marshal(input.PlayerMap)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal player map %s", input.PlayerMap.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, playerMapKeyPrefix+input.PlayerMap.ID, data, 0)
	pipe.SAdd(ctx, playerMapZonePfx+input.PlayerMap.LocalZoneID, input.PlayerMap.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save player map %s", input.PlayerMap.ID)
	}

	return &SavePlayerMapOutput{PlayerMap: input.PlayerMap}, nil
}

func (r *redisRepository) GetPlayerMap(ctx context.Context, input GetPlayerMapInput) (*GetPlayerMapOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("player map ID cannot be empty")
	}

	result, err := r.client.Get(ctx, playerMapKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("player map %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get player map %s", input.ID)
	}

	var pm entities.PlayerMap
	if err := json.Unmarshal([]byte(result), &pm); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal player map %s", input.ID)
	}

	return &GetPlayerMapOutput{PlayerMap: &pm}, nil
}

func (r *redisRepository) ListPlayerMapsByZone(ctx context.Context, input ListPlayerMapsByZoneInput) (*ListPlayerMapsByZoneOutput, error) {
	if input.ZoneID == "" {
		return nil, errors.InvalidArgument("zone ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, playerMapZonePfx+input.ZoneID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read player map index for zone %s", input.ZoneID)
	}

	maps := make([]*entities.PlayerMap, 0, len(ids))
	for _, id := range ids {
		getOutput, err := r.GetPlayerMap(ctx, GetPlayerMapInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, playerMapZonePfx+input.ZoneID, id)
				continue
			}
			return nil, err
		}
		maps = append(maps, getOutput.PlayerMap)
	}

	return &ListPlayerMapsByZoneOutput{PlayerMaps: maps}, nil
}
