package zone

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"medzone/internal/geo"
)

// Provider 区域目录来源（数据库或文件）；返回顺序即目录插入顺序
type Provider interface {
	ListActiveZones(ctx context.Context) ([]Zone, error)
}

// Rejected 构建快照时被剔除的非法区域
type Rejected struct {
	Zone Zone
	Err  error
}

// 文档注释：区域目录快照（只读）
// 背景：替代进程级单例缓存；每次外层操作（一次批处理、一次请求）取一个快照并全程持有，保证分类确定性。
// 约束：构建后不可修改；仅包含启用且几何合法的区域，顺序与输入一致（分类的唯一并列裁决依据）。
type Snapshot struct {
	zones    []Zone
	Rejected []Rejected
	Version  string
	BuiltAt  time.Time
}

// NewSnapshot 过滤停用区域并校验几何；非法区域进入 Rejected，不参与分类
func NewSnapshot(zones []Zone) *Snapshot {
	s := &Snapshot{BuiltAt: time.Now()}
	h := sha1.New()
	for _, z := range zones {
		if !z.IsActive {
			continue
		}
		if err := z.Validate(); err != nil {
			s.Rejected = append(s.Rejected, Rejected{Zone: z, Err: err})
			continue
		}
		z.Coordinates = append([]geo.Point(nil), z.Coordinates...)
		if z.Type == TypePolygon {
			z.bbox = geo.BBoxOf(z.Coordinates)
		}
		s.zones = append(s.zones, z)
		hashZone(h, z)
	}
	s.Version = hex.EncodeToString(h.Sum(nil))[:12]
	return s
}

func hashZone(h hash.Hash, z Zone) {
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(z.ID))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(z.Name))
	_, _ = h.Write([]byte(z.Type))
	put(z.Center.Lat)
	put(z.Center.Lng)
	put(z.RadiusKm)
	for _, p := range z.Coordinates {
		put(p.Lat)
		put(p.Lng)
	}
}

// ListActiveZones 返回有序的启用区域视图（副本）
func (s *Snapshot) ListActiveZones() []Zone {
	if s == nil {
		return nil
	}
	return append([]Zone(nil), s.zones...)
}

// Len 启用区域数量
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.zones)
}

// Classify 在该快照上执行首个命中分类
func (s *Snapshot) Classify(p *geo.Point) (Zone, bool) {
	if s == nil {
		return Zone{}, false
	}
	return ClassifyPoint(p, s.zones)
}

// Load 从 Provider 读取并构建新快照
func Load(ctx context.Context, p Provider) (*Snapshot, error) {
	zs, err := p.ListActiveZones(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(zs), nil
}
