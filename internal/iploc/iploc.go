// 包 iploc：基于 MaxMind 格式离线库的 IP 粗定位，用作附近搜索缺少坐标时的起点兜底
package iploc

import (
	"net"
	"os"
	"strings"

	"medzone/internal/geo"
	"medzone/internal/logger"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
	"github.com/pkg/errors"
)

// 文档注释：离线定位器
// 背景：优先使用 GeoIP2/GeoLite2 City 库；其他带 location 字段的 mmdb（如 DB-IP City Lite 兼容布局）走原始查找。
// 约束：只读，可并发查询；库中没有坐标或坐标精度过粗（0,0）时视为未命中。
type Locator struct {
	city   *geoip2.Reader
	raw    *maxminddb.Reader
	dbType string
}

type rawRecord struct {
	Location struct {
		Latitude       float64 `maxminddb:"latitude"`
		Longitude      float64 `maxminddb:"longitude"`
		AccuracyRadius uint16  `maxminddb:"accuracy_radius"`
	} `maxminddb:"location"`
}

// Open 按库类型选择解析方式；path 为空返回 nil 定位器（Lookup 恒未命中）
func Open(path string) (*Locator, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read mmdb")
	}
	mm, err := maxminddb.FromBytes(b)
	if err != nil {
		return nil, errors.Wrap(err, "open mmdb")
	}
	l := &Locator{dbType: mm.Metadata.DatabaseType}
	if strings.Contains(l.dbType, "City") {
		_ = mm.Close()
		c, err := geoip2.FromBytes(b)
		if err != nil {
			return nil, errors.Wrap(err, "open geoip2")
		}
		l.city = c
	} else {
		l.raw = mm
	}
	logger.L().Info("iploc_open_ok", "path", path, "type", l.dbType, "geoip2", l.city != nil)
	return l, nil
}

func (l *Locator) DatabaseType() string {
	if l == nil {
		return ""
	}
	return l.dbType
}

// Lookup 返回 IP 对应的近似坐标
func (l *Locator) Lookup(ip string) (geo.Point, bool) {
	if l == nil {
		return geo.Point{}, false
	}
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return geo.Point{}, false
	}
	var p geo.Point
	if l.city != nil {
		c, err := l.city.City(addr)
		if err != nil {
			logger.L().Debug("iploc_lookup_error", "err", err)
			return geo.Point{}, false
		}
		p = geo.Point{Lat: c.Location.Latitude, Lng: c.Location.Longitude}
	} else {
		var rec rawRecord
		if err := l.raw.Lookup(addr, &rec); err != nil {
			logger.L().Debug("iploc_lookup_error", "err", err)
			return geo.Point{}, false
		}
		p = geo.Point{Lat: rec.Location.Latitude, Lng: rec.Location.Longitude}
	}
	if p.Lat == 0 && p.Lng == 0 {
		return geo.Point{}, false
	}
	if geo.ValidatePoint(p) != nil {
		return geo.Point{}, false
	}
	return p, true
}

func (l *Locator) Close() error {
	if l == nil {
		return nil
	}
	if l.city != nil {
		return l.city.Close()
	}
	if l.raw != nil {
		return l.raw.Close()
	}
	return nil
}
