package models

import (
	"time"
)

// 注意：
// - 保持与 internal/migrate/sql 的建表脚本完全对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// KnownDevice 映射 known_devices 表
type KnownDevice struct {
	// 蓝牙地址（大写冒号格式）
	Address string `gorm:"column:address;type:text;primaryKey"`
	// 备注名，可空
	Name *string `gorm:"column:name;type:text"`
	// 最近一次连接成功
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (KnownDevice) TableName() string { return "known_devices" }

// CommandLog 映射 command_log 表
type CommandLog struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	JobID      *string   `gorm:"column:job_id;type:text"`
	Kind       string    `gorm:"column:kind;type:text;not null"`
	Address    *string   `gorm:"column:address;type:text"`
	Frames     int32     `gorm:"column:frames;not null;default:0"`
	Bytes      int32     `gorm:"column:bytes;not null;default:0"`
	Success    bool      `gorm:"column:success;not null"`
	Error      *string   `gorm:"column:error;type:text"`
	DurationMs *int32    `gorm:"column:duration_ms"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CommandLog) TableName() string { return "command_log" }
