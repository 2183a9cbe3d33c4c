// Package sqlite хранит корзину и токен сессии в локальном файле SQLite.
// Это хранилище по умолчанию: один файл в каталоге профиля пользователя.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	// busyTimeoutMs — сколько писатель ждёт блокировку файла, пока его держит другой процесс.
	busyTimeoutMs = 5000

	schemaDDL = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL
)`
)

// Store — KV-хранилище поверх файла SQLite.
type Store struct {
	db *sql.DB
}

// Open открывает (или создаёт) файл базы и готовит схему.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(cleanPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure kv schema: %w", err)
	}

	return &Store{db: db}, nil
}

// dsn добавляет к пути pragma-параметры в формате modernc.org/sqlite.
func dsn(path string) string {
	return fmt.Sprintf(
		"%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		path, busyTimeoutMs,
	)
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store is not initialized")
	}
	return s.db.PingContext(ctx)
}

// Close закрывает файл базы.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get возвращает значение ключа или domain.ErrKeyNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get kv entry %q: %w", key, err)
	}
	return value, nil
}

// Set перезаписывает значение ключа.
func (s *Store) Set(key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kv key is required")
	}
	if value == nil {
		value = []byte{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("set kv entry %q: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа не ошибка.
func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete kv entry %q: %w", key, err)
	}
	return nil
}

var _ domain.KVStore = (*Store)(nil)
