package migrate

import (
	"context"

	"medzone/internal/logger"

	"github.com/jmoiron/sqlx"
)

// 背景：首次运行自动创建区域表与医生表的分配列，保障导入与批量分配可直接执行
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；doctors 由外部系统维护，这里只补齐本模块读写的列
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS zones (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('circle','polygon')),
            center_lat DOUBLE PRECISION,
            center_lng DOUBLE PRECISION,
            radius_km DOUBLE PRECISION,
            coordinates JSONB NOT NULL DEFAULT '[]'::jsonb,
            color TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            position INT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_zones_active_position ON zones(is_active, position, id)`,
		`CREATE TABLE IF NOT EXISTS doctors (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            latitude DOUBLE PRECISION,
            longitude DOUBLE PRECISION,
            formatted_address TEXT,
            ubicacion TEXT,
            verified BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`ALTER TABLE doctors ADD COLUMN IF NOT EXISTS zone_id BIGINT`,
		`ALTER TABLE doctors ADD COLUMN IF NOT EXISTS zone_name TEXT`,
		`ALTER TABLE doctors ADD COLUMN IF NOT EXISTS zone_assigned_at TIMESTAMPTZ`,
		`CREATE INDEX IF NOT EXISTS idx_doctors_verified_latlng ON doctors(verified, latitude, longitude)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
