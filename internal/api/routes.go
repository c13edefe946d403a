// 包 api：HTTP 路由，暴露点分类、地址分类、附近搜索与批量分配
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medzone/internal/assign"
	"medzone/internal/barrio"
	"medzone/internal/geo"
	"medzone/internal/health"
	"medzone/internal/iploc"
	"medzone/internal/logger"
	"medzone/internal/nearby"
	"medzone/internal/record"
	"medzone/internal/zone"

	"github.com/redis/go-redis/v9"
)

const defaultNearbyRadiusKm = 10.0

// 文档注释：路由依赖
// 背景：主入口组装后一次性注入；可选依赖（Redis、IP 库、批量编排器）为空时对应能力降级而非报错。
// 约束：Holder 与 Classifier 必须非空；Zones 为空时 /reload-zones 返回 503。
type Deps struct {
	Holder      *zone.Holder
	Classifier  *zone.Classifier
	Zones       zone.Provider
	Records     nearby.Source
	Batch       *assign.Orchestrator
	Health      *health.Manager
	Locator     *iploc.Locator
	Redis       *redis.Client
	// CacheTTL Redis 结果缓存有效期。附近搜索缓存在批量分配成功后整体失效；
	// 外部系统新审核或移动的医生不会触发失效，最长 CacheTTL 后才可见。
	CacheTTL    time.Duration
	AdminToken  string
	MaxRadiusKm float64
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	h := &handlers{Deps: d, cache: resultCache{rc: d.Redis, ttl: d.CacheTTL}}
	mux := http.NewServeMux()
	mux.HandleFunc("/classify", h.classify)
	mux.HandleFunc("/classify-address", h.classifyAddress)
	mux.HandleFunc("/nearby", h.nearby)
	mux.HandleFunc("/neighborhoods", h.neighborhoods)
	mux.HandleFunc("/assign", h.admin(h.assign))
	mux.HandleFunc("/reload-zones", h.admin(h.reloadZones))
	mux.HandleFunc("/healthz", h.healthz)
	return mux
}

type handlers struct {
	Deps
	cache resultCache
}

// admin 校验 x-admin-token；未配置令牌时管理端接口一律拒绝
func (h *handlers) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if h.AdminToken == "" || subtle.ConstantTimeCompare([]byte(t), []byte(h.AdminToken)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	}
}

// 文档注释：点分类
// 背景：先查 Redis（键含目录版本），再走进程内 LRU 与首个命中分类。
// 约束：无命中返回 200 + matched=false；坐标缺失或非法返回 400；目录未加载返回 503。
func (h *handlers) classify(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, ok, err := pointParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	if err := geo.ValidatePoint(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := h.Holder.Load()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, zone.ErrNoCatalog.Error())
		return
	}
	ctx := r.Context()
	key := "mz:classify:" + snap.Version + ":" + fmtCoord(p.Lat) + ":" + fmtCoord(p.Lng)
	var out classifyResult
	if h.cache.get(ctx, key, &out) {
		writeJSON(w, http.StatusOK, out)
		return
	}
	z, matched, err := h.Classifier.Classify(p)
	switch {
	case errors.Is(err, zone.ErrNoCatalog):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out.Matched = matched
	if matched {
		id := z.ID
		out.ZoneID = &id
		out.ZoneName = z.Name
	}
	h.cache.set(ctx, key, out)
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) classifyAddress(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	text := r.URL.Query().Get("text")
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
		if strings.HasPrefix(r.Header.Get("content-type"), "application/json") {
			var in struct {
				Text string `json:"text"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "invalid json body")
				return
			}
			text = in.Text
		} else {
			text = r.FormValue("text")
		}
	}
	m := barrio.ClassifyDetail(text)
	writeJSON(w, http.StatusOK, addressResult{Label: m.Label, Tier: m.Tier})
}

// 文档注释：附近搜索
// 背景：坐标缺失时按 ip 参数或客户端 IP 在离线库中粗定位，作为搜索起点。
// 约束：半径缺省 10km，超过上限或非正数返回 400；无结果返回 200 + count=0；无法确定起点返回 400。
func (h *handlers) nearby(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	origin, ok, err := pointParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from := "query"
	if !ok {
		ip := iploc.ClientIP(r)
		p, found := h.Locator.Lookup(ip)
		if !found {
			writeError(w, http.StatusBadRequest, "could not determine location")
			return
		}
		origin, from = p, "ip"
	}
	radius := defaultNearbyRadiusKm
	if v, present, err := parseFloatParam(r, "radius_km"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if present {
		radius = v
	}

	ctx := r.Context()
	key := fmt.Sprintf("mz:nearby:%s:%s:%s:%s", h.cache.generation(ctx), fmtCoord(origin.Lat), fmtCoord(origin.Lng), fmtCoord(radius))
	var out nearbyResult
	if h.cache.get(ctx, key, &out) {
		out.OriginFrom = from
		writeJSON(w, http.StatusOK, out)
		return
	}
	res, err := nearby.Search(ctx, h.Records, origin, radius, h.MaxRadiusKm)
	switch {
	case errors.Is(err, geo.ErrInvalidPoint), errors.Is(err, nearby.ErrInvalidRadius):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.L().Error("nearby_error", "err", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	out = nearbyResult{Origin: origin, OriginFrom: from, RadiusKm: radius, Count: len(res), Results: make([]nearbyItem, 0, len(res))}
	for _, it := range res {
		out.Results = append(out.Results, nearbyItem{
			ID:         it.Record.ID,
			Name:       it.Record.Name,
			Address:    it.Record.Address,
			Point:      *it.Record.Point,
			DistanceKm: it.DisplayKm,
			Zone:       it.Record.AssignedZone,
		})
	}
	h.cache.set(ctx, key, out)
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) neighborhoods(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	recs, err := h.Records.ListLocatableRecords(r.Context(), record.Filter{VerifiedOnly: true})
	if err != nil {
		logger.L().Error("neighborhoods_error", "err", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	groups := record.GroupByNeighborhood(recs)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(groups), "groups": groups})
}

// 文档注释：手动触发批量分配
// 约束：逐条错误随 200 返回；提交失败返回 500；已有批次在运行返回 409。
func (h *handlers) assign(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if h.Batch == nil {
		writeError(w, http.StatusServiceUnavailable, "batch assignment not configured")
		return
	}
	res, err := h.Batch.Run(r.Context())
	switch {
	case errors.Is(err, assign.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, assign.ErrCommit):
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// 分配结果随附近搜索一起返回，提交后旧缓存不再可信
	h.cache.bumpGeneration(r.Context())
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) reloadZones(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if h.Zones == nil {
		writeError(w, http.StatusServiceUnavailable, "zone source not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	s, err := h.Holder.Reload(ctx, h.Zones)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reloadResult{Zones: s.Len(), Rejected: len(s.Rejected), Version: s.Version})
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		writeJSON(w, http.StatusOK, health.Report{Healthy: true, Probes: []health.Status{}})
		return
	}
	rep := h.Health.Report()
	code := http.StatusOK
	if !rep.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, rep)
}

// pointParams 读取 lat/lng；两者都缺失时 ok=false，只给一个视为错误
func pointParams(r *http.Request) (geo.Point, bool, error) {
	lat, hasLat, err := parseFloatParam(r, "lat")
	if err != nil {
		return geo.Point{}, false, err
	}
	lng, hasLng, err := parseFloatParam(r, "lng")
	if err != nil {
		return geo.Point{}, false, err
	}
	if hasLat != hasLng {
		return geo.Point{}, false, errors.New("lat and lng must be given together")
	}
	return geo.Point{Lat: lat, Lng: lng}, hasLat, nil
}

func fmtCoord(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
