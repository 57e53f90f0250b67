package store

import (
	"database/sql"
	"embed"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store SQLite 存储层（只保存运行历史，不保存指标）
type Store struct {
	db *sql.DB
}

// New 创建新的 Store 实例
func New(dbPath string) (*Store, error) {
	// 确保 data 目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, eris.Wrap(err, "failed to create data directory")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, eris.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "failed to ping database")
	}

	// SQLite 建议单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "failed to initialize schema")
	}

	return store, nil
}

// initSchema 初始化数据库结构
func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return eris.Wrap(err, "failed to read schema.sql")
	}

	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return eris.Wrap(err, "failed to execute schema")
	}

	return nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB 获取原始数据库连接
func (s *Store) DB() *sql.DB {
	return s.db
}
