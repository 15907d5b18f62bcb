package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/timebox/internal/storage"
)

// CommandLog 基于 pgx 的下发历史（command_log 表）
type CommandLog struct {
	Pool *pgxpool.Pool
}

var _ storage.CommandLog = (*CommandLog)(nil)

// Record 插入一条下发记录
func (r *CommandLog) Record(ctx context.Context, rec storage.CommandRecord) error {
	const q = `INSERT INTO command_log (job_id, kind, address, frames, bytes, success, error, duration_ms, created_at)
               VALUES (NULLIF($1,''), $2, NULLIF($3,''), $4, $5, $6, NULLIF($7,''), $8, COALESCE($9, NOW()))`
	var createdAt any
	if !rec.CreatedAt.IsZero() {
		createdAt = rec.CreatedAt
	}
	_, err := r.Pool.Exec(ctx, q, rec.JobID, rec.Kind, rec.Address, rec.Frames, rec.Bytes,
		rec.Success, rec.Error, rec.DurationMs, createdAt)
	return err
}

// Recent 最近 limit 条记录，新的在前
func (r *CommandLog) Recent(ctx context.Context, limit int) ([]storage.CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, COALESCE(job_id,''), kind, COALESCE(address,''), frames, bytes, success,
                      COALESCE(error,''), COALESCE(duration_ms,0), created_at
               FROM command_log ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.CommandRecord, error) {
		var rec storage.CommandRecord
		var frames, bytes, dur int32
		err := row.Scan(&rec.ID, &rec.JobID, &rec.Kind, &rec.Address, &frames, &bytes,
			&rec.Success, &rec.Error, &dur, &rec.CreatedAt)
		rec.Frames, rec.Bytes, rec.DurationMs = int(frames), int(bytes), int64(dur)
		return rec, err
	})
}
