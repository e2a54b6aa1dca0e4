package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"counselor_recommend/logger"
	"counselor_recommend/metrics"
	"counselor_recommend/models"
)

const hotListKey = "hot_list"

// CandidateSource 咨询师资料数据源，由 CounselorRepository 实现
type CandidateSource interface {
	GetAllActiveCandidates(ctx context.Context) ([]models.Candidate, error)
	SearchCandidatesByKeywords(ctx context.Context, keywords []string, sort models.SortMode) ([]models.Candidate, error)
	GetCandidatesByIDs(ctx context.Context, ids []int64) ([]models.Candidate, error)
	GetWorkSchedule(ctx context.Context, counselorID int64) (*models.WorkSchedule, error)
}

// HotListCache 在 Redis 中缓存热门咨询师列表，其余查询直接透传。
// 缓存读写失败只记录日志，回退到数据库。
type HotListCache struct {
	CandidateSource
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewHotListCache(source CandidateSource, client *redis.Client, prefix string, ttl time.Duration) *HotListCache {
	return &HotListCache{
		CandidateSource: source,
		client:          client,
		key:             prefix + hotListKey,
		ttl:             ttl,
	}
}

// GetAllActiveCandidates 优先读缓存，未命中时查库并回填
func (c *HotListCache) GetAllActiveCandidates(ctx context.Context) ([]models.Candidate, error) {
	cached, err := c.load(ctx)
	switch {
	case err == nil:
		metrics.HotListCacheHits.Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
		metrics.HotListCacheMisses.Inc()
	default:
		metrics.HotListCacheErrors.Inc()
		logger.Warn("读取热门咨询师缓存失败", "key", c.key, "error", err)
	}

	list, err := c.CandidateSource.GetAllActiveCandidates(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, list); err != nil {
		metrics.HotListCacheErrors.Inc()
		logger.Warn("写入热门咨询师缓存失败", "key", c.key, "error", err)
	}
	return list, nil
}

// Refresh 从数据库重新加载并覆盖缓存，返回缓存的条数
func (c *HotListCache) Refresh(ctx context.Context) (int, error) {
	list, err := c.CandidateSource.GetAllActiveCandidates(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.store(ctx, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// Invalidate 删除缓存
func (c *HotListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (c *HotListCache) load(ctx context.Context) ([]models.Candidate, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, err
	}
	var list []models.Candidate
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode hot list: %w", err)
	}
	return list, nil
}

func (c *HotListCache) store(ctx context.Context, list []models.Candidate) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode hot list: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
