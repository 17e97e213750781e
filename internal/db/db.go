package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDatabaseURL 在未配置 DATABASE_URL 时使用。
const DefaultDatabaseURL = "sqlite:///db.sqlite3"

// Models 列出需要自动迁移的全部模型。
func Models() []any {
	return []any{
		&AdminAccount{},
		&GalleryImage{},
		&Service{},
	}
}

// Open 根据连接串打开数据库并执行自动迁移。
// postgres:// 与 postgresql:// 走 PostgreSQL 驱动，其余按 SQLite 文件路径处理。
func Open(databaseURL string, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return gdb, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "" {
		raw = DefaultDatabaseURL
	}

	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return postgres.Open(raw), nil
	}

	path := SQLitePath(raw)
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}
	return sqlite.Open(path), nil
}

// SQLitePath 将 sqlite:///path 形式的连接串转换为驱动可用的文件路径。
// sqlite:////abs/path 表示绝对路径，sqlite:///rel/path 表示相对路径。
func SQLitePath(databaseURL string) string {
	raw := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(raw, "sqlite:///"):
		return strings.TrimPrefix(raw, "sqlite:///")
	case strings.HasPrefix(raw, "sqlite://"):
		return strings.TrimPrefix(raw, "sqlite://")
	default:
		return raw
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
