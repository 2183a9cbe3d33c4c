package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
)

// kvStoreInMemory — простая in-memory реализация KVStore.
type kvStoreInMemory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewKVStore возвращает in-memory хранилище для локальной разработки и тестов.
// Значения живут до завершения процесса.
func NewKVStore() domain.KVStore {
	return &kvStoreInMemory{
		items: make(map[string][]byte),
	}
}

// Get возвращает копию значения или ErrKeyNotFound.
func (s *kvStoreInMemory) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

// Set перезаписывает значение ключа.
func (s *kvStoreInMemory) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	s.items[key] = cloneBytes(value)
	return nil
}

// Delete удаляет ключ, если он есть.
func (s *kvStoreInMemory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ domain.KVStore = (*kvStoreInMemory)(nil)
