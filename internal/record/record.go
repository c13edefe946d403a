// 包 record：可定位记录（医生档案）的最小视图与入口归一化
package record

import (
	"strings"

	"medzone/internal/geo"
)

// ZoneRef 最近一次分类结果的冗余引用（id + 名称快照），不保证指向仍启用的区域
type ZoneRef struct {
	ID   int64  `json:"id" db:"zone_id"`
	Name string `json:"name" db:"zone_name"`
}

// 文档注释：可定位记录
// 背景：医生档案由外部系统维护；本模块只读取坐标、地址、审核状态，并回写区域引用。
// 约束：Point 为空表示“不可定位”，属于合法终态而非错误；Address 已在入口处完成字段归一化。
type Record struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	Point        *geo.Point `json:"point,omitempty"`
	Address      string     `json:"address,omitempty"`
	AssignedZone *ZoneRef   `json:"assigned_zone,omitempty"`
	Verified     bool       `json:"verified"`
}

// Filter 记录集合查询条件；BBox 非空时由存储层做粗筛
type Filter struct {
	VerifiedOnly bool
	BBox         *geo.BBox
}

// ResolveAddress 新字段 formattedAddress 优先，旧字段 ubicacion 兜底；仅在入口调用一次
func ResolveAddress(formattedAddress, ubicacion string) string {
	if s := strings.TrimSpace(formattedAddress); s != "" {
		return s
	}
	return strings.TrimSpace(ubicacion)
}

// PointFrom 经纬度任一缺失即视为不可定位
func PointFrom(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lng: *lng}
}
