package geo

import "math"

// 文档注释：以圆心与半径求外接包围盒
// 背景：近邻搜索先按包围盒在库内粗筛，再用 Haversine 精确过滤；包围盒必须是圆的超集。
// 约束：经度跨度按圆心纬度 asin(sin(d)/cos(lat)) 求得；覆盖极点或跨越 ±180° 时退化为全经度。
func BBoxAround(center Point, radiusKm float64) BBox {
	d := radiusKm / EarthRadiusKm
	latRad := center.Lat * math.Pi / 180
	dLat := d * 180 / math.Pi
	// 浮点边界留余量
	const pad = 1e-9
	b := BBox{
		MinLat: center.Lat - dLat - pad,
		MaxLat: center.Lat + dLat + pad,
		MinLng: -180,
		MaxLng: 180,
	}
	if b.MinLat <= -90 || b.MaxLat >= 90 {
		b.MinLat = math.Max(b.MinLat, -90)
		b.MaxLat = math.Min(b.MaxLat, 90)
		return b
	}
	s := math.Sin(d) / math.Cos(latRad)
	if s >= 1 {
		return b
	}
	dLng := math.Asin(s)*180/math.Pi + pad
	if center.Lng-dLng < -180 || center.Lng+dLng > 180 {
		return b
	}
	b.MinLng = center.Lng - dLng
	b.MaxLng = center.Lng + dLng
	return b
}
