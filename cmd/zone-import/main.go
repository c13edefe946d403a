package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"medzone/internal/logger"
	"medzone/internal/migrate"
	"medzone/internal/store"
	"medzone/internal/utils"
	"medzone/internal/zone"

	"github.com/joho/godotenv"
)

// 文档注释：导入区域文件到 zones 表
// 背景：区域由外部管理端维护并导出为 GeoJSON；本工具负责校验并落库，服务端按刷新周期读取。
// 约束：任一区域几何非法时整批拒绝（不做部分导入）；-prune 停用文件中未出现的区域；-dry-run 只校验不写库。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup("medzone-import")
	file := flag.String("file", utils.Env("ZONES_FILE", ""), "GeoJSON FeatureCollection or JSON zone array")
	prune := flag.Bool("prune", false, "deactivate zones missing from the file")
	dry := flag.Bool("dry-run", false, "validate only")
	flag.Parse()
	if *file == "" {
		l.Error("zone_file_missing")
		os.Exit(2)
	}
	f, err := os.Open(*file)
	if err != nil {
		l.Error("zone_file_open_error", "err", err)
		os.Exit(1)
	}
	zones, err := zone.LoadGeoJSON(f)
	_ = f.Close()
	if err != nil {
		l.Error("zone_file_parse_error", "err", err)
		os.Exit(1)
	}
	if err := validate(zones); err != nil {
		l.Error("zone_file_invalid", "err", err)
		os.Exit(1)
	}
	l.Info("zone_file_ok", "zones", len(zones), "version", zone.NewSnapshot(zones).Version)
	if *dry {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	if err := store.AttachDB(db).UpsertZones(ctx, zones, *prune); err != nil {
		l.Error("zone_import_error", "err", err)
		os.Exit(1)
	}
}

// validate 检查重复 id 与几何；停用区域同样要求几何合法，避免日后启用时才暴露
func validate(zones []zone.Zone) error {
	if len(zones) == 0 {
		return errors.New("no zones in file")
	}
	seen := make(map[int64]bool, len(zones))
	var errs []error
	for _, z := range zones {
		if seen[z.ID] {
			errs = append(errs, fmt.Errorf("duplicate zone id %d", z.ID))
		}
		seen[z.ID] = true
		if err := z.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
