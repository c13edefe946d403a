package zone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"medzone/internal/geo"
	"medzone/internal/logger"
)

// ErrBadFeature 要素无法按原样转换为区域（几何类型不支持、坐标或半径非数值、顶点不完整）
var ErrBadFeature = errors.New("bad geojson feature")

// 文档注释：从 GeoJSON 或区域数组加载目录
// 背景：支持管理端导出的 FeatureCollection（Polygon 为多边形区域，Point + radius_km 为圆形区域），也支持直接序列化的 []Zone。
// 约束：GeoJSON 坐标为 [lng, lat]；仅取 Polygon 外环，洞忽略；缺省 id 按出现顺序从 1 编号。
// 返回：坏要素不做任何修正，逐个包装 ErrBadFeature 后合并返回，同时返回其余可用区域；由调用方决定整批拒绝还是跳过。
func LoadGeoJSON(r io.Reader) ([]Zone, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var zs []Zone
		if err := json.Unmarshal(b, &zs); err != nil {
			return nil, err
		}
		return zs, nil
	}
	var gj map[string]any
	if err := json.Unmarshal(b, &gj); err != nil {
		return nil, err
	}
	var feats []any
	switch strings.ToLower(getStr(gj, "type")) {
	case "featurecollection":
		feats, _ = gj["features"].([]any)
	case "feature":
		feats = []any{gj}
	default:
		return nil, fmt.Errorf("unsupported geojson type %q", getStr(gj, "type"))
	}
	var out []Zone
	var errs []error
	for i, it := range feats {
		f, ok := it.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: feature %d is not an object", ErrBadFeature, i+1))
			continue
		}
		z, err := parseFeature(f, int64(i+1))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, z)
	}
	return out, errors.Join(errs...)
}

func parseFeature(f map[string]any, seq int64) (Zone, error) {
	bad := func(format string, a ...any) (Zone, error) {
		return Zone{}, fmt.Errorf("%w: feature %d: %s", ErrBadFeature, seq, fmt.Sprintf(format, a...))
	}
	z := Zone{ID: seq, IsActive: true}
	props, _ := f["properties"].(map[string]any)
	if props != nil {
		if v, ok := toInt(props["id"]); ok {
			z.ID = v
		}
		z.Name = getStr(props, "name")
		z.Color = getStr(props, "color")
		z.Description = getStr(props, "description")
		if v, ok := props["active"].(bool); ok {
			z.IsActive = v
		}
	}
	g, ok := f["geometry"].(map[string]any)
	if !ok {
		return bad("missing geometry")
	}
	switch gt := strings.ToLower(getStr(g, "type")); gt {
	case "point":
		c, ok := g["coordinates"].([]any)
		if !ok {
			return bad("point without coordinates")
		}
		p, err := toPoint(c)
		if err != nil {
			return bad("point: %v", err)
		}
		r, ok := toFloat(props["radius_km"])
		if !ok {
			return bad("point needs numeric radius_km, got %v", props["radius_km"])
		}
		z.Type = TypeCircle
		z.Center = p
		z.RadiusKm = r
	case "polygon":
		rings, ok := g["coordinates"].([]any)
		if !ok || len(rings) == 0 {
			return bad("polygon without rings")
		}
		outer, ok := rings[0].([]any)
		if !ok {
			return bad("polygon outer ring is not an array")
		}
		for i, v := range outer {
			vv, _ := v.([]any)
			p, err := toPoint(vv)
			if err != nil {
				return bad("vertex %d: %v", i, err)
			}
			z.Coordinates = append(z.Coordinates, p)
		}
		z.Type = TypePolygon
	default:
		return bad("unsupported geometry %q", gt)
	}
	return z, nil
}

// toPoint 解析 [lng, lat]；额外维度（海拔）忽略
func toPoint(c []any) (geo.Point, error) {
	if len(c) < 2 {
		return geo.Point{}, fmt.Errorf("need [lng, lat], got %d values", len(c))
	}
	lng, ok1 := toFloat(c[0])
	lat, ok2 := toFloat(c[1])
	if !ok1 || !ok2 {
		return geo.Point{}, fmt.Errorf("non-numeric coordinate %v", c[:2])
	}
	return geo.Point{Lat: lat, Lng: lng}, nil
}

// 文档注释：文件目录来源
// 背景：无数据库的部署或测试环境直接读取区域文件；每次调用重新读取，保证外层操作拿到最新快照。
type FileProvider struct{ Path string }

func (p FileProvider) ListActiveZones(ctx context.Context) ([]Zone, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	zs, err := LoadGeoJSON(f)
	switch {
	case errors.Is(err, ErrBadFeature):
		// 服务端读取时坏要素只跳过，其余区域照常生效；导入工具会整批拒绝
		logger.L().Warn("zone_feature_skipped", "path", p.Path, "err", err)
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", p.Path, err)
	}
	out := zs[:0]
	for _, z := range zs {
		if z.IsActive {
			out = append(out, z)
		}
	}
	return out, nil
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

// toFloat 接受 JSON 数字与数字字符串；其他类型返回 ok=false，不回退为 0
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
