package geo

// 文档注释：点入多边形判定（Even-Odd 射线法）
// 背景：以经度为 x、纬度为 y，自点向 +x 方向发射水平射线并统计与边的交点，奇数为内。
// 约束：顶点顺/逆时针均可；首尾重复顶点无影响；少于 3 个顶点返回 false，调用方不得依赖退化多边形的结果。
func PointInPolygon(p Point, vertices []Point) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}
	inside := false
	x := p.Lng
	y := p.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := vertices[i].Lng, vertices[i].Lat
		xj, yj := vertices[j].Lng, vertices[j].Lat
		// (yi > y) != (yj > y) 已排除水平边，分母不为零
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// 包围盒（度）
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// BBoxOf 计算顶点集合的包围盒，用于射线判定前的快速过滤
func BBoxOf(vertices []Point) BBox {
	b := BBox{MinLat: 90, MinLng: 180, MaxLat: -90, MaxLng: -180}
	for _, v := range vertices {
		if v.Lng < b.MinLng {
			b.MinLng = v.Lng
		}
		if v.Lat < b.MinLat {
			b.MinLat = v.Lat
		}
		if v.Lng > b.MaxLng {
			b.MaxLng = v.Lng
		}
		if v.Lat > b.MaxLat {
			b.MaxLat = v.Lat
		}
	}
	return b
}

// Contains 边界视为命中
func (b BBox) Contains(p Point) bool {
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}
