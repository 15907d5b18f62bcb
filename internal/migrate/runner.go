package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var embedded embed.FS

// Embedded 内置迁移脚本
func Embedded() fs.FS {
	sub, _ := fs.Sub(embedded, "sql")
	return sub
}

// Runner 迁移执行器
type Runner struct {
	FS fs.FS
}

// EnsureTable 保证 schema_migrations 表存在
func EnsureTable(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`)
	return err
}

// AppliedVersions 已应用版本
func AppliedVersions(ctx context.Context, db *pgxpool.Pool) (map[int64]bool, error) {
	rows, err := db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make(map[int64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		res[v] = true
	}
	return res, rows.Err()
}

type migrationFile struct {
	Version int64
	Path    string
}

// discoverUpMigrations 扫描 *_up.sql，按文件名前缀数字排序
func discoverUpMigrations(fsys fs.FS) ([]migrationFile, error) {
	var files []migrationFile
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := path.Base(p)
		if !strings.HasSuffix(name, "_up.sql") {
			return nil
		}
		prefix, _, _ := strings.Cut(name, "_")
		ver, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return nil
		}
		files = append(files, migrationFile{Version: ver, Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// Latest 脚本中的最高版本，没有脚本时为 0
func Latest(fsys fs.FS) (int64, error) {
	ups, err := discoverUpMigrations(fsys)
	if err != nil || len(ups) == 0 {
		return 0, err
	}
	return ups[len(ups)-1].Version, nil
}

// Up 执行未应用的向上迁移，每个脚本一个事务
func (r Runner) Up(ctx context.Context, db *pgxpool.Pool) error {
	fsys := r.FS
	if fsys == nil {
		fsys = Embedded()
	}
	if err := EnsureTable(ctx, db); err != nil {
		return err
	}
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return err
	}
	ups, err := discoverUpMigrations(fsys)
	if err != nil {
		return err
	}
	for _, m := range ups {
		if applied[m.Version] {
			continue
		}
		content, err := fs.ReadFile(fsys, m.Path)
		if err != nil {
			return err
		}
		tx, err := db.Begin(ctx)
		if err != nil {
			return err
		}
		_, execErr := tx.Exec(ctx, string(content))
		if execErr == nil {
			_, execErr = tx.Exec(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES($1,$2)`, m.Version, time.Now())
		}
		if execErr != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %d: %w", m.Version, execErr)
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}
