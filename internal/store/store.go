// 包 store: 提供与 PostgreSQL 的数据访问层，包含区域目录读取、医生记录查询与分配结果回写
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"medzone/internal/assign"
	"medzone/internal/geo"
	"medzone/internal/logger"
	"medzone/internal/record"
	"medzone/internal/zone"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Store: 数据库访问入口，持有连接池；同时实现 zone.Provider、assign.RecordSource、assign.CommitSink
type Store struct {
	db *sqlx.DB
}

func AttachDB(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

type zoneRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Type        string          `db:"type"`
	CenterLat   sql.NullFloat64 `db:"center_lat"`
	CenterLng   sql.NullFloat64 `db:"center_lng"`
	RadiusKm    sql.NullFloat64 `db:"radius_km"`
	Coordinates string          `db:"coordinates"`
	Color       string          `db:"color"`
	Description string          `db:"description"`
	IsActive    bool            `db:"is_active"`
	Position    int             `db:"position"`
}

func (r zoneRow) toZone() (zone.Zone, error) {
	z := zone.Zone{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		Center:      geo.Point{Lat: r.CenterLat.Float64, Lng: r.CenterLng.Float64},
		RadiusKm:    r.RadiusKm.Float64,
		Color:       r.Color,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
	if r.Coordinates != "" {
		if err := json.Unmarshal([]byte(r.Coordinates), &z.Coordinates); err != nil {
			return z, errors.Wrapf(err, "zone %d coordinates", r.ID)
		}
	}
	return z, nil
}

func rowFromZone(z zone.Zone, position int) (zoneRow, error) {
	coords := z.Coordinates
	if coords == nil {
		coords = []geo.Point{}
	}
	b, err := json.Marshal(coords)
	if err != nil {
		return zoneRow{}, err
	}
	r := zoneRow{
		ID:          z.ID,
		Name:        z.Name,
		Type:        z.Type,
		Coordinates: string(b),
		Color:       z.Color,
		Description: z.Description,
		IsActive:    z.IsActive,
		Position:    position,
	}
	if z.Type == zone.TypeCircle {
		r.CenterLat = sql.NullFloat64{Float64: z.Center.Lat, Valid: true}
		r.CenterLng = sql.NullFloat64{Float64: z.Center.Lng, Valid: true}
		r.RadiusKm = sql.NullFloat64{Float64: z.RadiusKm, Valid: true}
	}
	return r, nil
}

const selectZones = `SELECT id, name, type, center_lat, center_lng, radius_km, coordinates, color, description, is_active, position
FROM zones WHERE is_active = TRUE ORDER BY position, id`

// ListActiveZones: 按目录顺序读取启用区域；坐标 JSON 损坏的行记录日志后跳过，不影响其余区域
func (s *Store) ListActiveZones(ctx context.Context) ([]zone.Zone, error) {
	var rows []zoneRow
	if err := s.db.SelectContext(ctx, &rows, selectZones); err != nil {
		return nil, errors.Wrap(err, "select zones")
	}
	out := make([]zone.Zone, 0, len(rows))
	for _, r := range rows {
		z, err := r.toZone()
		if err != nil {
			logger.L().Warn("zone_row_skipped", "id", r.ID, "err", err)
			continue
		}
		out = append(out, z)
	}
	return out, nil
}

const upsertZone = `INSERT INTO zones (id, name, type, center_lat, center_lng, radius_km, coordinates, color, description, is_active, position, updated_at)
VALUES (:id, :name, :type, :center_lat, :center_lng, :radius_km, :coordinates, :color, :description, :is_active, :position, now())
ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, type=EXCLUDED.type, center_lat=EXCLUDED.center_lat,
center_lng=EXCLUDED.center_lng, radius_km=EXCLUDED.radius_km, coordinates=EXCLUDED.coordinates, color=EXCLUDED.color,
description=EXCLUDED.description, is_active=EXCLUDED.is_active, position=EXCLUDED.position, updated_at=now()`

// 文档注释：导入区域目录（按 id upsert）
// 背景：区域文件导入工具使用；文件中的顺序即目录顺序，写入 position。
// 约束：单事务执行，任一行失败整体回滚；prune 为真时停用文件中未出现的区域（不删除，保留历史引用）。
func (s *Store) UpsertZones(ctx context.Context, zones []zone.Zone, prune bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()
	ids := make([]int64, 0, len(zones))
	for i, z := range zones {
		r, err := rowFromZone(z, i)
		if err != nil {
			return errors.Wrapf(err, "zone %d", z.ID)
		}
		if _, err := tx.NamedExecContext(ctx, upsertZone, r); err != nil {
			return errors.Wrapf(err, "upsert zone %d", z.ID)
		}
		ids = append(ids, z.ID)
	}
	if prune && len(ids) > 0 {
		q, args, err := sqlx.In(`UPDATE zones SET is_active = FALSE, updated_at = now() WHERE id NOT IN (?)`, ids)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return errors.Wrap(err, "prune zones")
		}
	}
	// 显式 id 插入后同步序列，避免后续管理端新增时主键冲突
	if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('zones','id'), GREATEST((SELECT COALESCE(MAX(id),0) FROM zones), 1))`); err != nil {
		return errors.Wrap(err, "sync sequence")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	logger.L().Info("zone_import_ok", "zones", len(zones), "prune", prune)
	return nil
}

type doctorRow struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	FormattedAddress sql.NullString  `db:"formatted_address"`
	Ubicacion        sql.NullString  `db:"ubicacion"`
	Verified         bool            `db:"verified"`
	ZoneID           sql.NullInt64   `db:"zone_id"`
	ZoneName         sql.NullString  `db:"zone_name"`
}

func (r doctorRow) toRecord() record.Record {
	rec := record.Record{
		ID:       r.ID,
		Name:     r.Name,
		Address:  record.ResolveAddress(r.FormattedAddress.String, r.Ubicacion.String),
		Verified: r.Verified,
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		rec.Point = record.PointFrom(&r.Latitude.Float64, &r.Longitude.Float64)
	}
	if r.ZoneID.Valid {
		rec.AssignedZone = &record.ZoneRef{ID: r.ZoneID.Int64, Name: r.ZoneName.String}
	}
	return rec
}

// ListLocatableRecords: 读取医生记录；VerifiedOnly 仅返回已审核记录，BBox 非空时按经纬度区间粗筛（不含坐标缺失的行）
func (s *Store) ListLocatableRecords(ctx context.Context, f record.Filter) ([]record.Record, error) {
	query := `SELECT id, COALESCE(name, '') AS name, latitude, longitude, formatted_address, ubicacion, verified, zone_id, zone_name
FROM doctors WHERE 1=1`
	args := []any{}
	if f.VerifiedOnly {
		query += " AND verified = TRUE"
	}
	if f.BBox != nil {
		query += " AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?"
		args = append(args, f.BBox.MinLat, f.BBox.MaxLat, f.BBox.MinLng, f.BBox.MaxLng)
	}
	query += " ORDER BY id"
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	var rows []doctorRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select doctors")
	}
	out := make([]record.Record, len(rows))
	for i, r := range rows {
		out[i] = r.toRecord()
	}
	return out, nil
}

const updateAssignment = `UPDATE doctors SET zone_id = $1, zone_name = $2, zone_assigned_at = now() WHERE id = $3`

// 文档注释：原子回写分配结果
// 背景：批量分配的唯一写路径；全部变更在同一事务内执行。
// 约束：任一条失败或 ctx 超时均回滚，不保留部分状态；Zone 为空时清除分配列。
func (s *Store) CommitAssignments(ctx context.Context, updates []assign.Update) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	stmt, err := tx.PreparexContext(ctx, updateAssignment)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "prepare")
	}
	defer stmt.Close()
	for _, u := range updates {
		var id sql.NullInt64
		var name sql.NullString
		if u.Zone != nil {
			id = sql.NullInt64{Int64: u.Zone.ID, Valid: true}
			name = sql.NullString{String: u.Zone.Name, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, name, u.RecordID); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "update %s", u.RecordID)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	logger.L().Debug("assign_commit_done", "updates", len(updates))
	return nil
}
