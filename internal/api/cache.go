package api

import (
	"context"
	"encoding/json"
	"time"

	"medzone/internal/logger"
	"medzone/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// 文档注释：Redis 结果缓存
// 背景：热点坐标的分类与附近搜索结果跨实例共享；进程内 LRU 之外的第二层。
// 约束：rc 为空时全部操作为空操作；读写失败只记录日志，不影响主流程。
type resultCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func (c resultCache) get(ctx context.Context, key string, out any) bool {
	if c.rc == nil {
		return false
	}
	s, err := c.rc.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.L().Debug("redis_get_error", "key", key, "err", err)
		}
		metrics.RedisMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		metrics.RedisMissesTotal.Inc()
		return false
	}
	metrics.RedisHitsTotal.Inc()
	return true
}

func (c resultCache) set(ctx context.Context, key string, v any) {
	if c.rc == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ttl := c.ttl
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := c.rc.Set(ctx, key, string(b), ttl).Err(); err != nil {
		logger.L().Debug("redis_set_error", "key", key, "err", err)
	}
}

const nearbyGenKey = "mz:nearby:gen"

// generation 附近搜索缓存代号，跨实例共享；读取失败按 "0" 处理
func (c resultCache) generation(ctx context.Context) string {
	if c.rc == nil {
		return "0"
	}
	v, err := c.rc.Get(ctx, nearbyGenKey).Result()
	if err != nil {
		return "0"
	}
	return v
}

// bumpGeneration 使全部附近搜索缓存失效，旧键随 TTL 自然过期
func (c resultCache) bumpGeneration(ctx context.Context) {
	if c.rc == nil {
		return
	}
	if err := c.rc.Incr(ctx, nearbyGenKey).Err(); err != nil {
		logger.L().Debug("redis_incr_error", "key", nearbyGenKey, "err", err)
	}
}
