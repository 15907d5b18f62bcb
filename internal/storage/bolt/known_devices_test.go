package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/timebox/internal/storage"
)

func openTemp(t *testing.T) (*KnownDevices, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "known.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestKnownDevices(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	t.Run("增删查", func(t *testing.T) {
		s, _ := openTemp(t)
		defer s.Close()

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, s.Add(ctx, storage.KnownDevice{Address: "11:22:33:44:55:66", AddedAt: base.Add(time.Minute)}))
		require.NoError(t, s.Add(ctx, storage.KnownDevice{Address: "AA:BB:CC:DD:EE:FF", Name: "desk", AddedAt: base}))

		list, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "AA:BB:CC:DD:EE:FF", list[0].Address)
		assert.Equal(t, "desk", list[0].Name)
		assert.True(t, base.Equal(list[0].AddedAt))

		require.NoError(t, s.Remove(ctx, "AA:BB:CC:DD:EE:FF"))
		assert.ErrorIs(t, s.Remove(ctx, "AA:BB:CC:DD:EE:FF"), storage.ErrNotFound)

		list, _ = s.List(ctx)
		require.Len(t, list, 1)
		assert.Equal(t, "11:22:33:44:55:66", list[0].Address)
	})

	t.Run("重复添加保留加入时间", func(t *testing.T) {
		s, _ := openTemp(t)
		defer s.Close()

		require.NoError(t, s.Add(ctx, storage.KnownDevice{Address: "AA:BB:CC:DD:EE:FF", Name: "a", AddedAt: base}))
		require.NoError(t, s.Add(ctx, storage.KnownDevice{Address: "AA:BB:CC:DD:EE:FF", Name: "b", AddedAt: base.Add(time.Hour)}))

		list, _ := s.List(ctx)
		require.Len(t, list, 1)
		assert.Equal(t, "b", list[0].Name)
		assert.True(t, base.Equal(list[0].AddedAt))
	})

	t.Run("重新打开后数据仍在", func(t *testing.T) {
		s, path := openTemp(t)
		require.NoError(t, s.Add(ctx, storage.KnownDevice{Address: "AA:BB:CC:DD:EE:FF"}))
		require.NoError(t, s.Touch(ctx, "AA:BB:CC:DD:EE:FF", base))
		assert.ErrorIs(t, s.Touch(ctx, "00:00:00:00:00:01", base), storage.ErrNotFound)
		require.NoError(t, s.Close())

		s2, err := Open(path)
		require.NoError(t, err)
		defer s2.Close()
		list, err := s2.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].LastSeenAt)
		assert.True(t, base.Equal(*list[0].LastSeenAt))
	})
}
