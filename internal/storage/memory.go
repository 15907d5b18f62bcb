package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryKnownDevices 进程内已知设备存储（测试与无持久化场景）
type MemoryKnownDevices struct {
	mu      sync.RWMutex
	devices map[string]KnownDevice
	now     func() time.Time
}

// NewMemoryKnownDevices 创建内存存储
func NewMemoryKnownDevices() *MemoryKnownDevices {
	return &MemoryKnownDevices{devices: make(map[string]KnownDevice), now: time.Now}
}

func (m *MemoryKnownDevices) List(_ context.Context) ([]KnownDevice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]KnownDevice, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	SortKnownDevices(out)
	return out, nil
}

func (m *MemoryKnownDevices) Add(_ context.Context, d KnownDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.devices[d.Address]; ok {
		old.Name = d.Name
		m.devices[d.Address] = old
		return nil
	}
	if d.AddedAt.IsZero() {
		d.AddedAt = m.now()
	}
	m.devices[d.Address] = d
	return nil
}

func (m *MemoryKnownDevices) Remove(_ context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[address]; !ok {
		return ErrNotFound
	}
	delete(m.devices, address)
	return nil
}

func (m *MemoryKnownDevices) Touch(_ context.Context, address string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[address]
	if !ok {
		return ErrNotFound
	}
	d.LastSeenAt = &at
	m.devices[address] = d
	return nil
}

func (m *MemoryKnownDevices) Close() error { return nil }

// SortKnownDevices 按加入时间升序，时间相同按地址
func SortKnownDevices(ds []KnownDevice) {
	sort.SliceStable(ds, func(i, j int) bool {
		if !ds[i].AddedAt.Equal(ds[j].AddedAt) {
			return ds[i].AddedAt.Before(ds[j].AddedAt)
		}
		return ds[i].Address < ds[j].Address
	})
}

// MemoryCommandLog 固定容量的环形下发历史
type MemoryCommandLog struct {
	mu     sync.Mutex
	buf    []CommandRecord
	next   int
	full   bool
	nextID int64
}

// NewMemoryCommandLog 创建容量为 capacity 的历史，capacity<=0 时取 100
func NewMemoryCommandLog(capacity int) *MemoryCommandLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryCommandLog{buf: make([]CommandRecord, capacity)}
}

func (l *MemoryCommandLog) Record(_ context.Context, rec CommandRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	rec.ID = l.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	l.buf[l.next] = rec
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
	return nil
}

func (l *MemoryCommandLog) Recent(_ context.Context, limit int) ([]CommandRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.next
	if l.full {
		n = len(l.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]CommandRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (l.next - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out, nil
}
