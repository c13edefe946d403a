package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medzone/internal/assign"
	"medzone/internal/logger"
	"medzone/internal/migrate"
	"medzone/internal/store"
	"medzone/internal/utils"
	"medzone/internal/zone"

	"github.com/joho/godotenv"
)

// 文档注释：单次执行批量区域分配
// 背景：供 cron 或运维手动调用，与服务内的每日任务使用同一编排器；结果 JSON 写到标准输出。
// 约束：提交失败或读取失败时退出码为 1；逐条记录错误不影响退出码，只体现在输出的 errors 中。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup("medzone-assign")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	st := store.AttachDB(db)

	var zones zone.Provider = st
	if p := os.Getenv("ZONES_FILE"); p != "" && utils.Env("ZONES_SOURCE", "db") == "file" {
		zones = zone.FileProvider{Path: p}
	}
	o := &assign.Orchestrator{
		Zones:         zones,
		Records:       st,
		Sink:          st,
		Workers:       utils.EnvInt("ASSIGN_WORKERS", assign.DefaultWorkers),
		CommitTimeout: utils.EnvSeconds("ASSIGN_COMMIT_TIMEOUT_S", assign.DefaultCommitTimeout),
	}
	start := time.Now()
	res, err := o.Run(ctx)
	if err != nil {
		l.Error("assign_error", "err", err, "dur_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
