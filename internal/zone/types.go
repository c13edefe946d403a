// 包 zone：区域目录（圆形/多边形）、快照与首个命中分类
package zone

import (
	"errors"
	"fmt"
	"math"

	"medzone/internal/geo"
)

// 区域几何类型
const (
	TypeCircle  = "circle"
	TypePolygon = "polygon"
)

var (
	// ErrInvalidZone 区域几何不可用于分类（多边形少于 3 个顶点、半径非法等）
	ErrInvalidZone = errors.New("invalid zone")
	// ErrNoCatalog 目录快照尚未加载
	ErrNoCatalog = errors.New("zone catalog not loaded")
)

// 文档注释：行政区域
// 背景：由外部管理端维护，本模块只读；Color/Description 仅用于展示，几何逻辑不读取。
// 约束：圆形使用 Center+RadiusKm；多边形使用 Coordinates（按顺序的顶点，首尾可重复）。
type Zone struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Center      geo.Point   `json:"center"`
	RadiusKm    float64     `json:"radius_km"`
	Coordinates []geo.Point `json:"coordinates,omitempty"`
	Color       string      `json:"color,omitempty"`
	Description string      `json:"description,omitempty"`
	IsActive    bool        `json:"is_active"`

	bbox geo.BBox
}

// Validate 返回包装 ErrInvalidZone 的错误
func (z Zone) Validate() error {
	switch z.Type {
	case TypeCircle:
		if err := geo.ValidatePoint(z.Center); err != nil {
			return fmt.Errorf("%w: zone %d center: %v", ErrInvalidZone, z.ID, err)
		}
		if math.IsNaN(z.RadiusKm) || math.IsInf(z.RadiusKm, 0) || z.RadiusKm < 0 {
			return fmt.Errorf("%w: zone %d radius %v", ErrInvalidZone, z.ID, z.RadiusKm)
		}
	case TypePolygon:
		if distinctVertices(z.Coordinates) < 3 {
			return fmt.Errorf("%w: zone %d has %d vertices", ErrInvalidZone, z.ID, len(z.Coordinates))
		}
		for _, p := range z.Coordinates {
			if err := geo.ValidatePoint(p); err != nil {
				return fmt.Errorf("%w: zone %d vertex: %v", ErrInvalidZone, z.ID, err)
			}
		}
	default:
		return fmt.Errorf("%w: zone %d type %q", ErrInvalidZone, z.ID, z.Type)
	}
	return nil
}

// 闭合环的末尾重复顶点不计入
func distinctVertices(vs []geo.Point) int {
	n := len(vs)
	if n > 1 && vs[0] == vs[n-1] {
		n--
	}
	return n
}

// Contains 判断点是否属于该区域；快照内的多边形已预计算包围盒
func (z Zone) Contains(p geo.Point) bool {
	switch z.Type {
	case TypeCircle:
		return geo.HaversineKm(p, z.Center) <= z.RadiusKm
	case TypePolygon:
		b := z.bbox
		if b == (geo.BBox{}) {
			b = geo.BBoxOf(z.Coordinates)
		}
		if !b.Contains(p) {
			return false
		}
		return geo.PointInPolygon(p, z.Coordinates)
	}
	return false
}
