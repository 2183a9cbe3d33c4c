// Package persistence сохраняет корзину в долговечное KV-хранилище клиента.
//
// Адаптер никогда не возвращает ошибок: битые или отсутствующие данные
// читаются как пустая корзина, неудачная запись логируется и учитывается
// в метриках. Корзина в памяти остаётся источником истины до конца сессии.
package persistence

import (
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/metrics"
)

// DefaultCartKey — фиксированный ключ корзины в хранилище.
const DefaultCartKey = "sweetShopCart"

const (
	opRead  = "read"
	opWrite = "write"
)

// Adapter читает и пишет сериализованную корзину под одним ключом.
type Adapter struct {
	kv      domain.KVStore
	key     string
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// Option настраивает Adapter.
type Option func(*Adapter)

// WithKey переопределяет ключ корзины (например, для нескольких профилей).
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithMetrics подключает метрики ошибок хранилища.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// NewAdapter создаёт адаптер поверх KV-хранилища.
func NewAdapter(kv domain.KVStore, logger *log.Entry, opts ...Option) *Adapter {
	if logger == nil {
		logger = log.WithField("component", "cart-persistence")
	}
	a := &Adapter{
		kv:     kv,
		key:    DefaultCartKey,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key возвращает ключ, под которым хранится корзина.
func (a *Adapter) Key() string {
	return a.key
}

// Read загружает корзину. Отсутствующий ключ, ошибка хранилища или
// невалидный JSON дают пустую корзину.
func (a *Adapter) Read() domain.Cart {
	raw, err := a.kv.Get(a.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			a.logger.WithError(err).WithField("key", a.key).Warn("failed to load cart, starting with empty cart")
			a.metrics.RecordPersistenceFailure(opRead)
		}
		return domain.NewCart()
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		a.logger.WithError(err).WithField("key", a.key).Warn("stored cart is corrupt, starting with empty cart")
		a.metrics.RecordPersistenceFailure(opRead)
		return domain.NewCart()
	}

	return cart.MergeDuplicates().Recalculate()
}

// Write пересчитывает итоги и перезаписывает ключ. Ошибка не возвращается.
func (a *Adapter) Write(cart domain.Cart) {
	blob, err := json.Marshal(cart.Recalculate())
	if err != nil {
		a.logger.WithError(err).WithField("key", a.key).Error("failed to encode cart")
		a.metrics.RecordPersistenceFailure(opWrite)
		return
	}

	if err := a.kv.Set(a.key, blob); err != nil {
		a.logger.WithError(err).WithField("key", a.key).Error("failed to save cart")
		a.metrics.RecordPersistenceFailure(opWrite)
	}
}
