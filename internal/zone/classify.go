package zone

import "medzone/internal/geo"

// 文档注释：点所属区域判定（首个命中）
// 背景：按目录顺序逐个判定，圆形用 Haversine 距离 ≤ 半径，多边形用包围盒过滤后射线法。
// 约束：重叠区域只按目录顺序裁决，不做“面积最小优先”；点为空或无命中返回 false，不视为错误。
func ClassifyPoint(p *geo.Point, zones []Zone) (Zone, bool) {
	if p == nil {
		return Zone{}, false
	}
	for i := range zones {
		if zones[i].Contains(*p) {
			return zones[i], true
		}
	}
	return Zone{}, false
}
