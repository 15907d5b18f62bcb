package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/timebox/internal/storage"
)

const knownDevicesBucket = "known_devices"

// KnownDevices 基于 bbolt 的本地已知设备存储，每个地址一个 YAML 值
type KnownDevices struct {
	db  *bbolt.DB
	now func() time.Time
}

var _ storage.KnownDeviceStore = (*KnownDevices)(nil)

// Open 打开（必要时创建）数据库文件
func Open(path string) (*KnownDevices, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(knownDevicesBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &KnownDevices{db: db, now: time.Now}, nil
}

func (s *KnownDevices) List(_ context.Context) ([]storage.KnownDevice, error) {
	var out []storage.KnownDevice
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(knownDevicesBucket)).ForEach(func(k, v []byte) error {
			var d storage.KnownDevice
			if err := yaml.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, d)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	storage.SortKnownDevices(out)
	return out, nil
}

func (s *KnownDevices) Add(_ context.Context, d storage.KnownDevice) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(knownDevicesBucket))
		if raw := b.Get([]byte(d.Address)); raw != nil {
			var old storage.KnownDevice
			if err := yaml.Unmarshal(raw, &old); err != nil {
				return err
			}
			old.Name = d.Name
			d = old
		} else if d.AddedAt.IsZero() {
			d.AddedAt = s.now()
		}
		return put(b, d)
	})
}

func (s *KnownDevices) Remove(_ context.Context, address string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(knownDevicesBucket))
		if b.Get([]byte(address)) == nil {
			return storage.ErrNotFound
		}
		return b.Delete([]byte(address))
	})
}

func (s *KnownDevices) Touch(_ context.Context, address string, at time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(knownDevicesBucket))
		raw := b.Get([]byte(address))
		if raw == nil {
			return storage.ErrNotFound
		}
		var d storage.KnownDevice
		if err := yaml.Unmarshal(raw, &d); err != nil {
			return err
		}
		d.LastSeenAt = &at
		return put(b, d)
	})
}

// Close 关闭数据库文件
func (s *KnownDevices) Close() error {
	return s.db.Close()
}

func put(b *bbolt.Bucket, d storage.KnownDevice) error {
	raw, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return b.Put([]byte(d.Address), raw)
}
