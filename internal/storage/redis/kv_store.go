// Package redis хранит корзину и токен сессии в Redis под общим префиксом ключей.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
)

const (
	opTimeout     = 5 * time.Second
	DefaultPrefix = "sweetcart:"
)

// Options — параметры подключения.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store — KV-хранилище поверх Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// New создаёт клиента. Подключение ленивое, доступность проверяет Ping.
func New(opts Options) *Store {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix: prefix,
	}
}

// Ping проверяет доступность Redis.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close закрывает клиента.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

// Get возвращает значение ключа или domain.ErrKeyNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get redis key %q: %w", key, err)
	}
	return value, nil
}

// Set перезаписывает значение ключа без срока жизни.
func (s *Store) Set(key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kv key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set redis key %q: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа не ошибка.
func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete redis key %q: %w", key, err)
	}
	return nil
}

var _ domain.KVStore = (*Store)(nil)
