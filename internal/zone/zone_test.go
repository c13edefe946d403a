package zone

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"medzone/internal/geo"

	"github.com/stretchr/testify/require"
)

var (
	obelisco = geo.Point{Lat: -34.6037, Lng: -58.3816}

	microcentro  = Zone{ID: 1, Name: "Microcentro", Type: TypeCircle, Center: obelisco, RadiusKm: 2, IsActive: true}
	centroAmplio = Zone{ID: 2, Name: "Centro ampliado", Type: TypeCircle, Center: obelisco, RadiusKm: 10, IsActive: true}

	palermo = Zone{
		ID: 3, Name: "Palermo", Type: TypePolygon, IsActive: true,
		Coordinates: []geo.Point{
			{Lat: -34.570, Lng: -58.440},
			{Lat: -34.570, Lng: -58.400},
			{Lat: -34.600, Lng: -58.400},
			{Lat: -34.600, Lng: -58.440},
		},
	}
)

func TestClassifyFirstMatchWins(t *testing.T) {
	zones := []Zone{microcentro, centroAmplio}
	p := obelisco
	for i := 0; i < 20; i++ {
		z, ok := ClassifyPoint(&p, zones)
		require.True(t, ok)
		require.Equal(t, int64(1), z.ID)
	}
	// 顺序调换后结果随目录顺序变化
	z, ok := ClassifyPoint(&p, []Zone{centroAmplio, microcentro})
	require.True(t, ok)
	require.Equal(t, int64(2), z.ID)
}

func TestClassifyPolygonAndCircle(t *testing.T) {
	zones := []Zone{palermo, microcentro}
	inPalermo := geo.Point{Lat: -34.585, Lng: -58.420}
	z, ok := ClassifyPoint(&inPalermo, zones)
	require.True(t, ok)
	require.Equal(t, "Palermo", z.Name)

	// 距离中心 5km 仅落在大圆内
	far := geo.Point{Lat: -34.6487, Lng: -58.3816}
	_, ok = ClassifyPoint(&far, zones)
	require.False(t, ok)
	z, ok = ClassifyPoint(&far, []Zone{microcentro, centroAmplio})
	require.True(t, ok)
	require.Equal(t, int64(2), z.ID)
}

func TestClassifyNoPoint(t *testing.T) {
	_, ok := ClassifyPoint(nil, []Zone{centroAmplio})
	require.False(t, ok)
	_, ok = ClassifyPoint(&obelisco, nil)
	require.False(t, ok)
}

func TestCircleBoundaryInclusive(t *testing.T) {
	p := geo.Point{Lat: -34.6, Lng: -58.38}
	z := Zone{ID: 9, Type: TypeCircle, Center: obelisco, RadiusKm: geo.HaversineKm(p, obelisco), IsActive: true}
	require.True(t, z.Contains(p))
	z.RadiusKm = 0
	require.True(t, z.Contains(obelisco))
}

func TestSnapshotFiltersAndRejects(t *testing.T) {
	inactive := centroAmplio
	inactive.ID = 4
	inactive.IsActive = false
	broken := Zone{ID: 5, Name: "Roto", Type: TypePolygon, IsActive: true, Coordinates: []geo.Point{obelisco, {Lat: -34.5, Lng: -58.3}, obelisco}}
	negative := Zone{ID: 6, Type: TypeCircle, Center: obelisco, RadiusKm: -1, IsActive: true}

	s := NewSnapshot([]Zone{palermo, inactive, broken, microcentro, negative})
	got := s.ListActiveZones()
	require.Len(t, got, 2)
	require.Equal(t, int64(3), got[0].ID)
	require.Equal(t, int64(1), got[1].ID)
	require.Len(t, s.Rejected, 2)
	for _, r := range s.Rejected {
		require.ErrorIs(t, r.Err, ErrInvalidZone)
	}
	require.NotEmpty(t, s.Version)
}

func TestSnapshotVersionTracksGeometry(t *testing.T) {
	a := NewSnapshot([]Zone{microcentro})
	b := NewSnapshot([]Zone{microcentro})
	require.Equal(t, a.Version, b.Version)
	moved := microcentro
	moved.RadiusKm = 3
	c := NewSnapshot([]Zone{moved})
	require.NotEqual(t, a.Version, c.Version)
}

func TestNilSnapshot(t *testing.T) {
	var s *Snapshot
	require.Equal(t, 0, s.Len())
	_, ok := s.Classify(&obelisco)
	require.False(t, ok)
}

type staticProvider struct {
	zones []Zone
	err   error
}

func (p staticProvider) ListActiveZones(ctx context.Context) ([]Zone, error) {
	return p.zones, p.err
}

func TestClassifierServiceAndCache(t *testing.T) {
	var h Holder
	c := NewClassifier(&h, NewLRU(16, time.Minute))

	_, _, err := c.Classify(obelisco)
	require.ErrorIs(t, err, ErrNoCatalog)

	_, err = h.Reload(context.Background(), staticProvider{zones: []Zone{microcentro}})
	require.NoError(t, err)

	_, _, err = c.Classify(geo.Point{Lat: 120, Lng: 0})
	require.ErrorIs(t, err, geo.ErrInvalidPoint)

	z, ok, err := c.Classify(obelisco)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), z.ID)
	require.Equal(t, 1, c.cache.Len())

	// 目录切换后缓存键随版本失效
	_, err = h.Reload(context.Background(), staticProvider{zones: []Zone{centroAmplio}})
	require.NoError(t, err)
	z, ok, err = c.Classify(obelisco)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), z.ID)
}

func TestHolderKeepsOldSnapshotOnError(t *testing.T) {
	var h Holder
	_, err := h.Reload(context.Background(), staticProvider{zones: []Zone{microcentro}})
	require.NoError(t, err)
	_, err = h.Reload(context.Background(), staticProvider{err: os.ErrNotExist})
	require.Error(t, err)
	require.Equal(t, 1, h.Load().Len())
}

func TestLRUEvictionAndTTL(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", hit{Matched: true})
	c.Set("b", hit{})
	_, _ = c.Get("a")
	c.Set("c", hit{})
	_, ok := c.Get("b")
	require.False(t, ok)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.True(t, v.Matched)

	exp := NewLRU(2, -time.Second)
	exp.Set("x", hit{})
	_, ok = exp.Get("x")
	require.False(t, ok)
}

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"id": 10, "name": "Palermo", "color": "#3388ff"},
     "geometry": {"type": "Polygon", "coordinates": [[[-58.44,-34.57],[-58.40,-34.57],[-58.40,-34.60],[-58.44,-34.60],[-58.44,-34.57]]]}},
    {"type": "Feature", "properties": {"id": "11", "name": "Centro", "radius_km": 2.5},
     "geometry": {"type": "Point", "coordinates": [-58.3816,-34.6037]}},
    {"type": "Feature", "properties": {"name": "Lineal"},
     "geometry": {"type": "LineString", "coordinates": [[-58.4,-34.6],[-58.3,-34.6]]}},
    {"type": "Feature", "properties": {"id": 12, "name": "Baja", "active": false, "radius_km": 1},
     "geometry": {"type": "Point", "coordinates": [-58.5,-34.7]}}
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	zs, err := LoadGeoJSON(strings.NewReader(sampleGeoJSON))
	// LineString 要素被报告，其余要素照常返回
	require.ErrorIs(t, err, ErrBadFeature)
	require.Contains(t, err.Error(), "linestring")
	require.Len(t, zs, 3)

	require.Equal(t, int64(10), zs[0].ID)
	require.Equal(t, TypePolygon, zs[0].Type)
	require.Len(t, zs[0].Coordinates, 5)
	require.Equal(t, geo.Point{Lat: -34.57, Lng: -58.44}, zs[0].Coordinates[0])
	require.Equal(t, "#3388ff", zs[0].Color)

	require.Equal(t, int64(11), zs[1].ID)
	require.Equal(t, TypeCircle, zs[1].Type)
	require.Equal(t, 2.5, zs[1].RadiusKm)
	require.Equal(t, obelisco, zs[1].Center)

	require.False(t, zs[2].IsActive)

	p := geo.Point{Lat: -34.585, Lng: -58.42}
	z, ok := NewSnapshot(zs).Classify(&p)
	require.True(t, ok)
	require.Equal(t, "Palermo", z.Name)
}

func TestLoadGeoJSONRejectsMalformedFeatures(t *testing.T) {
	cases := map[string]string{
		"non-numeric vertex": `{"type":"Polygon","coordinates":[[[-58.5,-34.5],[-58.4,"oops"],[-58.4,-34.6],[-58.5,-34.6]]]}`,
		"short vertex":       `{"type":"Polygon","coordinates":[[[-58.5,-34.5],[-58.45],[-58.4,-34.6],[-58.5,-34.6]]]}`,
		"multipolygon":       `{"type":"MultiPolygon","coordinates":[[[[-58.5,-34.5],[-58.4,-34.5],[-58.4,-34.6]]]]}`,
		"point bad coords":   `{"type":"Point","coordinates":["bad","bad"]}`,
	}
	for name, geom := range cases {
		t.Run(name, func(t *testing.T) {
			doc := `{"type":"Feature","properties":{"id":1,"radius_km":1},"geometry":` + geom + `}`
			zs, err := LoadGeoJSON(strings.NewReader(doc))
			require.ErrorIs(t, err, ErrBadFeature)
			require.Empty(t, zs)
		})
	}

	noGeom := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"id":1}}, 7]}`
	zs, err := LoadGeoJSON(strings.NewReader(noGeom))
	require.ErrorIs(t, err, ErrBadFeature)
	require.Contains(t, err.Error(), "missing geometry")
	require.Contains(t, err.Error(), "not an object")
	require.Empty(t, zs)

	for _, radius := range []string{``, `,"radius_km":"lejos"`, `,"radius_km":null`} {
		doc := `{"type":"Feature","properties":{"id":2` + radius + `},"geometry":{"type":"Point","coordinates":[-58.38,-34.60]}}`
		zs, err := LoadGeoJSON(strings.NewReader(doc))
		require.ErrorIs(t, err, ErrBadFeature, radius)
		require.Empty(t, zs, radius)
	}

	// 数字字符串视为合法数值
	zs, err = LoadGeoJSON(strings.NewReader(`{"type":"Feature","properties":{"id":3,"radius_km":"1.5"},"geometry":{"type":"Point","coordinates":["-58.38","-34.60"]}}`))
	require.NoError(t, err)
	require.Len(t, zs, 1)
	require.Equal(t, 1.5, zs[0].RadiusKm)
	require.Equal(t, geo.Point{Lat: -34.60, Lng: -58.38}, zs[0].Center)
}

func TestLoadZoneArray(t *testing.T) {
	zs, err := LoadGeoJSON(strings.NewReader(`[{"id":1,"name":"A","type":"circle","center":{"lat":-34.6,"lng":-58.4},"radius_km":1,"is_active":true}]`))
	require.NoError(t, err)
	require.Len(t, zs, 1)
	require.Equal(t, TypeCircle, zs[0].Type)
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeoJSON), 0o644))
	zs, err := FileProvider{Path: path}.ListActiveZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zs, 2)

	_, err = FileProvider{Path: filepath.Join(dir, "missing.json")}.ListActiveZones(context.Background())
	require.Error(t, err)
}
