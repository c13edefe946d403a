// 包 nearby：按大圆距离对可定位记录做半径过滤与排序
package nearby

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"medzone/internal/geo"
	"medzone/internal/metrics"
	"medzone/internal/record"
)

// DefaultMaxRadiusKm 半径上限缺省值
const DefaultMaxRadiusKm = 500.0

var ErrInvalidRadius = errors.New("invalid radius")

// Result 单条命中；DistanceKm 用于排序，DisplayKm 仅用于展示
type Result struct {
	Record     record.Record `json:"record"`
	DistanceKm float64       `json:"-"`
	DisplayKm  float64       `json:"distance_km"`
}

// Source 记录集合来源
type Source interface {
	ListLocatableRecords(ctx context.Context, f record.Filter) ([]record.Record, error)
}

// ValidateRadius 半径须为有限正数且不超过 maxKm；maxKm<=0 时取缺省上限
func ValidateRadius(r, maxKm float64) error {
	if maxKm <= 0 {
		maxKm = DefaultMaxRadiusKm
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, r)
	}
	if r > maxKm {
		return fmt.Errorf("%w: %v exceeds %v km", ErrInvalidRadius, r, maxKm)
	}
	return nil
}

// 文档注释：按距离排序
// 背景：仅已审核且坐标合法的记录参与；过滤与排序都使用未取整距离，避免取整边界处的顺序翻转。
// 约束：稳定排序，同距离保持输入顺序；空结果是合法输出。参数校验由调用方完成。
func Rank(origin geo.Point, records []record.Record, radiusKm float64) []Result {
	out := make([]Result, 0)
	for _, r := range records {
		// 坐标非法的记录不可定位；NaN 距离与任何半径比较都为假，必须先排除
		if r.Point == nil || !r.Verified || geo.ValidatePoint(*r.Point) != nil {
			continue
		}
		d := geo.HaversineKm(origin, *r.Point)
		if d > radiusKm {
			continue
		}
		out = append(out, Result{Record: r, DistanceKm: d, DisplayKm: geo.RoundKm(d)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// 文档注释：附近搜索（FindNearby）
// 背景：先用半径外接包围盒让存储层粗筛，再在内存中做精确距离判定。
// 约束：输入非法时返回 ErrInvalidPoint / ErrInvalidRadius，与“无结果”严格区分。
func Search(ctx context.Context, src Source, origin geo.Point, radiusKm, maxRadiusKm float64) ([]Result, error) {
	if err := geo.ValidatePoint(origin); err != nil {
		return nil, err
	}
	if err := ValidateRadius(radiusKm, maxRadiusKm); err != nil {
		return nil, err
	}
	start := time.Now()
	metrics.NearbyRequestsTotal.Inc()
	box := geo.BBoxAround(origin, radiusKm)
	recs, err := src.ListLocatableRecords(ctx, record.Filter{VerifiedOnly: true, BBox: &box})
	if err != nil {
		return nil, err
	}
	res := Rank(origin, recs, radiusKm)
	metrics.NearbyResults.Observe(float64(len(res)))
	metrics.NearbyDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	return res, nil
}
