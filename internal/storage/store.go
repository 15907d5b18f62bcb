package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("storage: not found")

// KnownDevice 已知设备（发现时按顺序尝试连接）
type KnownDevice struct {
	Address    string     `json:"address" yaml:"address"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	AddedAt    time.Time  `json:"added_at" yaml:"added_at"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty" yaml:"last_seen_at,omitempty"`
}

// KnownDeviceStore 已知设备存储。
// 约束：
// - Address 统一为大写冒号格式，由调用方归一化
// - Add 为 upsert：已存在时只更新名称，不改 AddedAt
// - List 按 AddedAt 升序返回
type KnownDeviceStore interface {
	List(ctx context.Context) ([]KnownDevice, error)
	Add(ctx context.Context, d KnownDevice) error
	// Remove 不存在时返回 ErrNotFound
	Remove(ctx context.Context, address string) error
	// Touch 刷新最近连接成功时间，不存在时返回 ErrNotFound
	Touch(ctx context.Context, address string, at time.Time) error
	Close() error
}

// CommandRecord 一次下发的结果
type CommandRecord struct {
	ID         int64     `json:"id"`
	JobID      string    `json:"job_id,omitempty"`
	Kind       string    `json:"kind"`
	Address    string    `json:"address,omitempty"`
	Frames     int       `json:"frames"`
	Bytes      int       `json:"bytes"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommandLog 下发历史
type CommandLog interface {
	Record(ctx context.Context, rec CommandRecord) error
	// Recent 按时间倒序返回最近 limit 条
	Recent(ctx context.Context, limit int) ([]CommandRecord, error)
}
