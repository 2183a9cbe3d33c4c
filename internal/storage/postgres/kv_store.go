package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
)

const undefinedTableCode = "42P01"

// ErrSchemaMissing возвращается, когда таблица kv_entries ещё не создана.
var ErrSchemaMissing = errors.New("kv schema is not migrated, run migrate -direction up")

type kvStore struct {
	db *sql.DB
}

// NewKVStore создаёт PostgreSQL-реализацию KVStore.
func NewKVStore(store *Store) domain.KVStore {
	return &kvStore{db: store.DB()}
}

func (s *kvStore) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get kv entry %q: %w", key, mapError(err))
	}
	return value, nil
}

func (s *kvStore) Set(key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kv key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set kv entry %q: %w", key, mapError(err))
	}
	return nil
}

func (s *kvStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete kv entry %q: %w", key, mapError(err))
	}
	return nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
	}
	return err
}

var _ domain.KVStore = (*kvStore)(nil)
