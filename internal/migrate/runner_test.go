package migrate

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverUpMigrations(t *testing.T) {
	t.Run("按版本号排序并忽略 down 脚本", func(t *testing.T) {
		fsys := fstest.MapFS{
			"0010_late_up.sql":     {Data: []byte("SELECT 10")},
			"0002_second_up.sql":   {Data: []byte("SELECT 2")},
			"0002_second_down.sql": {Data: []byte("SELECT -2")},
			"0001_first_up.sql":    {Data: []byte("SELECT 1")},
			"README.md":            {Data: []byte("notes")},
			"draft_up.sql":         {Data: []byte("SELECT 0")},
		}
		files, err := discoverUpMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, files, 3)
		assert.Equal(t, int64(1), files[0].Version)
		assert.Equal(t, int64(2), files[1].Version)
		assert.Equal(t, "0002_second_up.sql", files[1].Path)
		assert.Equal(t, int64(10), files[2].Version)
	})

	t.Run("内置脚本", func(t *testing.T) {
		files, err := discoverUpMigrations(Embedded())
		require.NoError(t, err)
		require.Len(t, files, 2)

		sql, err := fs.ReadFile(Embedded(), files[0].Path)
		require.NoError(t, err)
		assert.Contains(t, string(sql), "command_log")

		sql, err = fs.ReadFile(Embedded(), files[1].Path)
		require.NoError(t, err)
		assert.Contains(t, string(sql), "known_devices")
	})
}

func TestLatest(t *testing.T) {
	t.Run("取最高版本", func(t *testing.T) {
		fsys := fstest.MapFS{
			"0003_c_up.sql":   {Data: []byte("SELECT 3")},
			"0001_a_up.sql":   {Data: []byte("SELECT 1")},
			"0004_d_down.sql": {Data: []byte("SELECT -4")},
		}
		v, err := Latest(fsys)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)
	})

	t.Run("没有脚本时为 0", func(t *testing.T) {
		v, err := Latest(fstest.MapFS{})
		require.NoError(t, err)
		assert.Zero(t, v)
	})

	t.Run("内置脚本", func(t *testing.T) {
		v, err := Latest(Embedded())
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
	})
}
