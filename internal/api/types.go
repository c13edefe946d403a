package api

import (
	"medzone/internal/geo"
	"medzone/internal/record"
)

// 文档注释：对外返回结构
// 背景：统一对外序列化模型，仅包含必要字段；Redis 缓存直接存储这些结构的 JSON。
// 约束：字段稳定；新增字段需评估兼容性与前端依赖。
type classifyResult struct {
	ZoneID   *int64 `json:"zone_id"`
	ZoneName string `json:"zone_name,omitempty"`
	Matched  bool   `json:"matched"`
}

type addressResult struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
}

type nearbyItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Address    string          `json:"address,omitempty"`
	Point      geo.Point       `json:"point"`
	DistanceKm float64         `json:"distance_km"`
	Zone       *record.ZoneRef `json:"zone,omitempty"`
}

type nearbyResult struct {
	Origin     geo.Point    `json:"origin"`
	OriginFrom string       `json:"origin_from"`
	RadiusKm   float64      `json:"radius_km"`
	Count      int          `json:"count"`
	Results    []nearbyItem `json:"results"`
}

type reloadResult struct {
	Zones    int    `json:"zones"`
	Rejected int    `json:"rejected"`
	Version  string `json:"version"`
}

type errorBody struct {
	Error string `json:"error"`
}
