package zone

import (
	"strconv"
	"time"

	"medzone/internal/geo"
	"medzone/internal/logger"
	"medzone/internal/metrics"
)

// 文档注释：分类服务（对外 ClassifyPoint 入口）
// 背景：组合快照持有器与进程内 LRU；校验坐标后在当前快照上执行首个命中判定。
// 返回：命中区域与是否命中；坐标非法返回 geo.ErrInvalidPoint，未加载目录返回 ErrNoCatalog。
type Classifier struct {
	holder *Holder
	cache  *LRU
}

func NewClassifier(h *Holder, cache *LRU) *Classifier {
	return &Classifier{holder: h, cache: cache}
}

func (c *Classifier) Classify(p geo.Point) (Zone, bool, error) {
	if err := geo.ValidatePoint(p); err != nil {
		return Zone{}, false, err
	}
	snap := c.holder.Load()
	if snap == nil {
		return Zone{}, false, ErrNoCatalog
	}
	t0 := time.Now()
	key := cacheKey(snap.Version, p)
	if c.cache != nil {
		if h, ok := c.cache.Get(key); ok {
			metrics.ClassifyCacheHitsTotal.Inc()
			metrics.ClassifyTotal.WithLabelValues(resultLabel(h.Matched)).Inc()
			return h.Zone, h.Matched, nil
		}
	}
	z, ok := snap.Classify(&p)
	if c.cache != nil {
		c.cache.Set(key, hit{Zone: z, Matched: ok})
	}
	metrics.ClassifyTotal.WithLabelValues(resultLabel(ok)).Inc()
	metrics.ClassifyDurationMs.Observe(float64(time.Since(t0).Microseconds()) / 1000)
	logger.L().Debug("zone_classify", "lat", p.Lat, "lng", p.Lng, "zone_id", z.ID, "matched", ok)
	return z, ok, nil
}

func cacheKey(version string, p geo.Point) string {
	return version + ":" + strconv.FormatFloat(p.Lat, 'f', -1, 64) + ":" + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func resultLabel(matched bool) string {
	if matched {
		return "hit"
	}
	return "miss"
}
