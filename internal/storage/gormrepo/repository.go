package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/taoyao-code/timebox/internal/storage"
	"github.com/taoyao-code/timebox/internal/storage/models"
)

// Open 基于 DSN 打开 gorm 连接（postgres 驱动）
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// Repository 基于 GORM 的已知设备与下发历史存储
type Repository struct {
	db *gorm.DB
}

var (
	_ storage.KnownDeviceStore = (*Repository)(nil)
	_ storage.CommandLog       = (*Repository)(nil)
)

// New 返回一个使用给定 *gorm.DB 的存储实例
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List 按加入时间升序列出已知设备
func (r *Repository) List(ctx context.Context) ([]storage.KnownDevice, error) {
	var rows []models.KnownDevice
	if err := r.db.WithContext(ctx).Order("created_at ASC, address ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]storage.KnownDevice, 0, len(rows))
	for _, row := range rows {
		out = append(out, toKnownDevice(row))
	}
	return out, nil
}

// Add 插入设备，已存在时只更新名称
func (r *Repository) Add(ctx context.Context, d storage.KnownDevice) error {
	record := &models.KnownDevice{
		Address: d.Address,
		Name:    nullable(d.Name),
	}
	if !d.AddedAt.IsZero() {
		record.CreatedAt = d.AddedAt
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":       gorm.Expr("excluded.name"),
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(record).Error
}

// Remove 删除设备，不存在时返回 storage.ErrNotFound
func (r *Repository) Remove(ctx context.Context, address string) error {
	res := r.db.WithContext(ctx).Where("address = ?", address).Delete(&models.KnownDevice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Touch 刷新 last_seen_at
func (r *Repository) Touch(ctx context.Context, address string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.KnownDevice{}).
		Where("address = ?", address).
		Updates(map[string]interface{}{"last_seen_at": at, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Get 按地址查询
func (r *Repository) Get(ctx context.Context, address string) (*storage.KnownDevice, error) {
	var row models.KnownDevice
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d := toKnownDevice(row)
	return &d, nil
}

// Record 追加一条下发历史
func (r *Repository) Record(ctx context.Context, rec storage.CommandRecord) error {
	dur := int32(rec.DurationMs)
	row := &models.CommandLog{
		JobID:      nullable(rec.JobID),
		Kind:       rec.Kind,
		Address:    nullable(rec.Address),
		Frames:     int32(rec.Frames),
		Bytes:      int32(rec.Bytes),
		Success:    rec.Success,
		Error:      nullable(rec.Error),
		DurationMs: &dur,
		CreatedAt:  rec.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// Recent 最近 limit 条下发历史
func (r *Repository) Recent(ctx context.Context, limit int) ([]storage.CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.CommandLog
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]storage.CommandRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCommandRecord(row))
	}
	return out, nil
}

// Close 关闭底层连接池
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toKnownDevice(row models.KnownDevice) storage.KnownDevice {
	return storage.KnownDevice{
		Address:    row.Address,
		Name:       deref(row.Name),
		AddedAt:    row.CreatedAt,
		LastSeenAt: row.LastSeenAt,
	}
}

func toCommandRecord(row models.CommandLog) storage.CommandRecord {
	rec := storage.CommandRecord{
		ID:        row.ID,
		JobID:     deref(row.JobID),
		Kind:      row.Kind,
		Address:   deref(row.Address),
		Frames:    int(row.Frames),
		Bytes:     int(row.Bytes),
		Success:   row.Success,
		Error:     deref(row.Error),
		CreatedAt: row.CreatedAt,
	}
	if row.DurationMs != nil {
		rec.DurationMs = int64(*row.DurationMs)
	}
	return rec
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
