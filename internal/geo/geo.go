// 包 geo：几何内核，纯函数无状态；点入多边形、球面距离与坐标校验
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm 平均地球半径（千米），所有距离计算共用
const EarthRadiusKm = 6371.0

// ErrInvalidPoint 坐标非有限数或越界
var ErrInvalidPoint = errors.New("invalid point")

// 点坐标（WGS84，度）
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// 文档注释：坐标合法性校验
// 约束：纬度 [-90,90]，经度 [-180,180]，拒绝 NaN/Inf；不做静默修正。
func ValidatePoint(p Point) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return ErrInvalidPoint
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidPoint
	}
	return nil
}

// 文档注释：球面距离（Haversine），返回千米
// 约束：公式与半径固定，测试夹具依赖逐位一致；NaN/Inf 输入行为未定义。
func HaversineKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundKm 展示用两位小数；排序与过滤必须使用未取整值
func RoundKm(v float64) float64 {
	return math.Round(v*100) / 100
}
