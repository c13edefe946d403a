// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"medzone/internal/api"
	"medzone/internal/assign"
	"medzone/internal/health"
	"medzone/internal/ingest"
	"medzone/internal/iploc"
	"medzone/internal/logger"
	"medzone/internal/metrics"
	"medzone/internal/middleware"
	"medzone/internal/migrate"
	"medzone/internal/store"
	"medzone/internal/utils"
	"medzone/internal/zone"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup("medzone-api")
	l.Debug("log_init_ok")
	apiBase := utils.Env("API_BASE", "/api")
	l.Debug("config_api_base", "base", apiBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	l.Info("db_open_ok")
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	// 区域目录来源：缺省读数据库，ZONES_SOURCE=file 时读 GeoJSON 文件
	var zones zone.Provider = st
	if utils.Env("ZONES_SOURCE", "db") == "file" {
		zones = zone.FileProvider{Path: utils.Env("ZONES_FILE", filepath.Join("data", "zones.geojson"))}
	}
	l.Debug("config_zones_source", "source", utils.Env("ZONES_SOURCE", "db"))
	var holder zone.Holder
	if _, err := holder.Reload(ctx, zones); err != nil {
		// 背景：目录加载失败不阻断启动，分类接口返回 503，刷新协程稍后重试
		l.Error("zone_initial_load_error", "err", err)
	}
	holder.StartRefresh(ctx, zones, utils.EnvSeconds("ZONE_REFRESH_S", 300*time.Second))

	classifier := zone.NewClassifier(&holder, zone.NewLRU(
		utils.EnvInt("CLASSIFY_CACHE_SIZE", 4096),
		utils.EnvSeconds("CLASSIFY_CACHE_TTL_S", time.Hour),
	))

	batch := &assign.Orchestrator{
		Zones:         zones,
		Records:       st,
		Sink:          st,
		Workers:       utils.EnvInt("ASSIGN_WORKERS", assign.DefaultWorkers),
		CommitTimeout: utils.EnvSeconds("ASSIGN_COMMIT_TIMEOUT_S", assign.DefaultCommitTimeout),
	}
	if utils.EnvBool("AUTO_ASSIGN_ENABLE", true) {
		loc, err := time.LoadLocation(utils.Env("AUTO_ASSIGN_TZ", "America/Argentina/Buenos_Aires"))
		if err != nil {
			l.Warn("auto_assign_tz_error", "err", err)
			loc = time.Local
		}
		hour := 3
		if h, ok := envHour("AUTO_ASSIGN_HOUR"); ok {
			hour = h
		}
		ingest.StartDaily(ctx, loc, hour, func(ctx context.Context) error {
			_, err := batch.Run(ctx)
			return err
		})
	}

	locator, err := iploc.Open(os.Getenv("GEOIP_DB_PATH"))
	if err != nil {
		l.Error("iploc_open_error", "err", err)
	} else if locator != nil {
		l.Info("nearby_ip_fallback_on", "type", locator.DatabaseType())
	}
	defer locator.Close()

	// 文档注释：探针管理器初始化
	// 背景：数据库与目录为关键依赖；Redis 失败只降级缓存，不影响健康判定。
	hm := health.NewManager(utils.EnvSeconds("HEALTH_INTERVAL_S", 10*time.Second))
	hm.Register(health.FuncProbe{ProbeName: "postgres", IsCritical: true, Fn: st.Ping})
	hm.Register(health.FuncProbe{ProbeName: "catalog", IsCritical: true, Fn: func(ctx context.Context) error {
		if holder.Load() == nil {
			return zone.ErrNoCatalog
		}
		return nil
	}})
	if rc != nil {
		hm.Register(health.FuncProbe{ProbeName: "redis", Fn: func(ctx context.Context) error { return rc.Ping(ctx).Err() }})
	}
	hm.Start(ctx)

	apiMux := api.BuildRoutes(api.Deps{
		Holder:      &holder,
		Classifier:  classifier,
		Zones:       zones,
		Records:     st,
		Batch:       batch,
		Health:      hm,
		Locator:     locator,
		Redis:       rc,
		CacheTTL:    utils.EnvSeconds("REDIS_CACHE_TTL_S", time.Minute),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		MaxRadiusKm: utils.EnvFloat("MAX_RADIUS_KM", 500),
	})
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := utils.Env("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_ok")
}

// envHour 读取 0-23 的整点；0 是合法值，不能用 EnvInt
func envHour(k string) (int, bool) {
	h, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
