package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"medzone/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv 由 PG_* 组装连接串；PG_DSN 存在时直接使用
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	host := Env("PG_HOST", "localhost")
	port := Env("PG_PORT", "5432")
	user := Env("PG_USER", "postgres")
	pass := os.Getenv("PG_PASSWORD")
	db := Env("PG_DB", "medzone")
	ssl := Env("PG_SSLMODE", "disable")
	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + host + ":" + port + "/" + db + "?sslmode=" + ssl
	return dsn
}

// 文档注释：从环境变量打开连接池并做一次连通性探测
// 约束：PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 解析失败时回退缺省；探测超时 5s，失败返回错误而非 panic。
func OpenPostgresFromEnv(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	maxOpen := 50
	maxIdle := 25
	if v := os.Getenv("PG_MAX_OPEN_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxOpen = n
		}
	}
	if v := os.Getenv("PG_MAX_IDLE_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxIdle = n
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.L().Debug("pg_open_ok", "max_open", maxOpen, "max_idle", maxIdle)
	return db, nil
}
